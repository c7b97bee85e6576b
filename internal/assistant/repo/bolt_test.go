package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/devs-assistent/server/internal/assistant/model"
	boltcfg "github.com/devs-assistent/server/pkg/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoltRepo(t *testing.T, path, profile string) *BoltPreferenceRepository {
	t.Helper()
	cfg := boltcfg.Config{Path: path, OpenTimeout: 1}
	db, err := cfg.New()
	require.NoError(t, err)
	r, err := NewBoltPreferenceRepository(db, profile)
	require.NoError(t, err)
	return r
}

func TestBoltRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.bolt")
	ctx := context.Background()

	r := newBoltRepo(t, path, "default")
	require.NoError(t, r.SaveHistory(ctx, []byte(`["q1"]`)))
	require.NoError(t, r.SaveTheme(ctx, model.ThemeLight))
	require.NoError(t, r.Close())

	r = newBoltRepo(t, path, "default")
	defer r.Close()

	h, err := r.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["q1"]`, string(h))

	theme, err := r.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
}

func TestBoltRepository_ProfilesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bolt")
	ctx := context.Background()

	r := newBoltRepo(t, path, "alice")
	require.NoError(t, r.SaveHistory(ctx, []byte(`["mine"]`)))
	require.NoError(t, r.Close())

	r = newBoltRepo(t, path, "bob")
	defer r.Close()
	h, err := r.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestBoltRepository_DeleteHistory(t *testing.T) {
	r := newBoltRepo(t, filepath.Join(t.TempDir(), "prefs.bolt"), "default")
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.SaveHistory(ctx, []byte(`["x"]`)))
	require.NoError(t, r.DeleteHistory(ctx))

	h, err := r.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Nil(t, h)

	// deleting twice is fine
	require.NoError(t, r.DeleteHistory(ctx))
}
