package repo

import (
	"context"

	"github.com/devs-assistent/server/internal/assistant/model"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

var preferencesBucket = []byte("preferences")

// BoltPreferenceRepository stores preferences in a local BoltDB file, one
// key pair per profile inside a single bucket.
type BoltPreferenceRepository struct {
	db      *bolt.DB
	profile string
}

func NewBoltPreferenceRepository(db *bolt.DB, profile string) (*BoltPreferenceRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(preferencesBucket)
		return err
	})
	if err != nil {
		return nil, errx.WrapStorage(err)
	}
	return &BoltPreferenceRepository{db: db, profile: profile}, nil
}

func (r *BoltPreferenceRepository) key(name string) []byte {
	return []byte(r.profile + ":" + name)
}

func (r *BoltPreferenceRepository) get(name string) ([]byte, error) {
	var out []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(preferencesBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(r.key(name)); v != nil {
			// values are only valid inside the transaction
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", name).Msg("failed to read bolt preference")
		return nil, errx.WrapStorage(err)
	}
	return out, nil
}

func (r *BoltPreferenceRepository) put(name string, value []byte) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(preferencesBucket)
		if err != nil {
			return err
		}
		return b.Put(r.key(name), value)
	})
	if err != nil {
		logx.Error().Err(err).Str("key", name).Msg("failed to write bolt preference")
		return errx.WrapStorage(err)
	}
	return nil
}

func (r *BoltPreferenceRepository) LoadHistory(_ context.Context) ([]byte, error) {
	return r.get("history")
}

func (r *BoltPreferenceRepository) SaveHistory(_ context.Context, payload []byte) error {
	return r.put("history", payload)
}

func (r *BoltPreferenceRepository) DeleteHistory(_ context.Context) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(preferencesBucket)
		if b == nil {
			return nil
		}
		return b.Delete(r.key("history"))
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to delete bolt history")
		return errx.WrapStorage(err)
	}
	return nil
}

func (r *BoltPreferenceRepository) LoadTheme(_ context.Context) (string, error) {
	v, err := r.get("theme")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r *BoltPreferenceRepository) SaveTheme(_ context.Context, theme model.Theme) error {
	return r.put("theme", []byte(theme))
}

func (r *BoltPreferenceRepository) Close() error {
	return r.db.Close()
}

var _ model.PreferenceRepository = (*BoltPreferenceRepository)(nil)
