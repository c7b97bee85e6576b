package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		kind   Kind
		status int
	}{
		{"configuration", Configuration(errBoom), KindConfiguration, http.StatusInternalServerError},
		{"transport", Transport(errBoom), KindTransport, http.StatusBadGateway},
		{"parse", Parse(errBoom), KindParse, http.StatusBadGateway},
		{"recognition", Recognition(errBoom), KindRecognition, http.StatusServiceUnavailable},
		{"invalid", Invalid(errBoom), KindInvalid, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.True(t, IsKind(wrapped, tt.kind))
			assert.Equal(t, tt.status, StatusOf(wrapped))
			assert.ErrorIs(t, wrapped, errBoom)
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "completion request failed: boom", Transport(errBoom).Error())
	assert.Equal(t, "invalid input", Invalid(nil).Error())
}

func TestUnknownErrors(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errBoom))
	assert.False(t, IsKind(nil, KindUnknown))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errBoom))
}

func TestAs(t *testing.T) {
	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("ctx: %w", Parse(errBoom)), &appErr))
	assert.Equal(t, KindParse, appErr.Kind)
}

func TestWrapStorageAndRedis(t *testing.T) {
	assert.NoError(t, WrapStorage(nil))
	assert.NoError(t, WrapRedis(nil))

	err := WrapRedis(redis.Nil)
	assert.True(t, IsKind(err, KindStorage))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.ErrorIs(t, err, redis.Nil)

	err = WrapRedis(errBoom)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))

	err = WrapStorage(errBoom)
	assert.True(t, IsKind(err, KindStorage))
}
