package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// RedisNotFoundMessage describes a missing Redis key.
const RedisNotFoundMessage = "redis key not found"

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return newKind(KindStorage, err, http.StatusNotFound, RedisNotFoundMessage)
	}

	return newKind(KindStorage, err, http.StatusBadGateway, RedisErrorMessage)
}
