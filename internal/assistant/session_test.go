package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/repo"
	"github.com/devs-assistent/server/internal/core"
	errx "github.com/devs-assistent/server/internal/core/error"
)

type completerFunc func(ctx context.Context, query string) (*model.StructuredAnswer, error)

func (f completerFunc) Complete(ctx context.Context, query string) (*model.StructuredAnswer, error) {
	return f(ctx, query)
}

// unsetForTest clears keys for the duration of the test and restores them
// afterwards.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetForTest(t, "ENVIRONMENT", "COMPLETION_MODEL", "COMPLETION_TEMPERATURE",
		"STORE_BACKEND", "STORE_PROFILE", "HISTORY_LIMIT", "VOICE_LOCALE", "REDIS_URL")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, core.Development, cfg.Env())
	assert.Equal(t, "gemini-2.5-flash", cfg.Completion.Model)
	assert.InDelta(t, 0.2, cfg.Completion.Temperature, 1e-6)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, "default", cfg.Store.Profile)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, "es-ES", cfg.Voice.Locale)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	unsetForTest(t, "COMPLETION_MODEL", "HISTORY_LIMIT", "STORE_BACKEND", "STORE_TTL")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("COMPLETION_MODEL=gemini-2.5-pro\nHISTORY_LIMIT=10\nSTORE_BACKEND=memory\nSTORE_TTL=24h\n"), 0o600))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.Completion.Model)
	assert.Equal(t, 10, cfg.History.Limit)
	assert.Equal(t, "memory", cfg.Store.Backend)
	ttl, err := cfg.StoreTTL()
	require.NoError(t, err)
	assert.Equal(t, "24h0m0s", ttl.String())
}

func TestStoreTTL_Invalid(t *testing.T) {
	_, err := Config{Store: model.StoreConfig{TTL: "forever"}}.StoreTTL()
	require.Error(t, err)
}

func TestNewRepository_Backends(t *testing.T) {
	ctx := context.Background()

	r, err := NewRepository(ctx, Config{Store: model.StoreConfig{Backend: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &repo.MemoryPreferenceRepository{}, r)

	var cfg Config
	cfg.Store = model.StoreConfig{Backend: "bolt", Profile: "default"}
	cfg.Bolt.Path = filepath.Join(t.TempDir(), "nested", "prefs.bolt")
	r, err = NewRepository(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &repo.BoltPreferenceRepository{}, r)
	require.NoError(t, r.Close())

	mr := miniredis.RunT(t)
	cfg = Config{Store: model.StoreConfig{Backend: "Redis", Profile: "default"}}
	cfg.Redis.URL = "redis://" + mr.Addr() + "/0"
	r, err = NewRepository(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &repo.RedisPreferenceRepository{}, r)
	require.NoError(t, r.Close())

	_, err = NewRepository(ctx, Config{Store: model.StoreConfig{Backend: "mongo"}})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindConfiguration))
}

func TestNewSession_LoadsPersistedHistory(t *testing.T) {
	r := repo.NewMemoryPreferenceRepository()
	r.SetRawHistory([]byte(`["b","a"]`))

	sess, err := NewSession(context.Background(), Config{}, Options{Repository: r})
	require.NoError(t, err)
	defer sess.Close()

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, []string{"b", "a"}, sess.Store.History())
	assert.False(t, sess.Capture.Supported())
	assert.False(t, sess.Orchestrator.Pending())
}

func TestNewSession_MissingCredentialBecomesErrorAnswer(t *testing.T) {
	unsetForTest(t, "GEMINI_API_KEY")

	sess, err := NewSession(context.Background(), Config{}, Options{Repository: repo.NewMemoryPreferenceRepository()})
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Orchestrator.Submit(context.Background(), "¿Qué es un goroutine?")
	require.NoError(t, err)
	require.True(t, res.Failed())
	assert.True(t, errx.IsKind(res.Err, errx.KindConfiguration))
	assert.Equal(t, 2, sess.Store.Len())
	assert.Equal(t, []string{"¿Qué es un goroutine?"}, sess.Store.History())
}

func TestNewSession_Dictation(t *testing.T) {
	sess, err := NewSession(context.Background(), Config{}, Options{
		Repository: repo.NewMemoryPreferenceRepository(),
		Completer: completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
			return nil, errors.New("unused")
		}),
		Dictation: &emptyReader{},
	})
	require.NoError(t, err)
	assert.True(t, sess.Capture.Supported())
	require.NoError(t, sess.Close())
}

type emptyReader struct{}

func (*emptyReader) Read([]byte) (int, error) { return 0, errors.New("closed") }
