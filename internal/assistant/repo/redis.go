package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devs-assistent/server/internal/assistant/model"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisPreferenceRepository keeps one profile's history and theme under two
// plain string keys.
type RedisPreferenceRepository struct {
	rdb     redis.Cmdable
	closer  func() error
	profile string
	ttl     time.Duration
}

func NewRedisPreferenceRepository(rdb redis.Cmdable, profile string, ttl time.Duration) *RedisPreferenceRepository {
	r := &RedisPreferenceRepository{rdb: rdb, profile: profile, ttl: ttl}
	if c, ok := rdb.(interface{ Close() error }); ok {
		r.closer = c.Close
	}
	return r
}

func (r *RedisPreferenceRepository) historyKey() string {
	return fmt.Sprintf("devs_assistent:%s:history", r.profile)
}

func (r *RedisPreferenceRepository) themeKey() string {
	return fmt.Sprintf("devs_assistent:%s:theme", r.profile)
}

func (r *RedisPreferenceRepository) LoadHistory(ctx context.Context) ([]byte, error) {
	key := r.historyKey()
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load history from redis")
		return nil, errx.WrapRedis(err)
	}
	return b, nil
}

func (r *RedisPreferenceRepository) SaveHistory(ctx context.Context, payload []byte) error {
	key := r.historyKey()
	// zero ttl keeps the key forever
	if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save history to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisPreferenceRepository) DeleteHistory(ctx context.Context) error {
	key := r.historyKey()
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisPreferenceRepository) LoadTheme(ctx context.Context) (string, error) {
	key := r.themeKey()
	v, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load theme from redis")
		return "", errx.WrapRedis(err)
	}
	return v, nil
}

func (r *RedisPreferenceRepository) SaveTheme(ctx context.Context, theme model.Theme) error {
	key := r.themeKey()
	if err := r.rdb.Set(ctx, key, string(theme), 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save theme to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisPreferenceRepository) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

var _ model.PreferenceRepository = (*RedisPreferenceRepository)(nil)
