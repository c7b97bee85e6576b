package repo

import (
	"context"
	"sync"

	"github.com/devs-assistent/server/internal/assistant/model"
)

// MemoryPreferenceRepository keeps preferences in process memory. It backs
// STORE_BACKEND=memory and the package tests of its callers.
type MemoryPreferenceRepository struct {
	mu      sync.Mutex
	history []byte
	theme   string

	// SaveErr, when set, is returned by every write.
	SaveErr error
	Saves   int
}

func NewMemoryPreferenceRepository() *MemoryPreferenceRepository {
	return &MemoryPreferenceRepository{}
}

func (r *MemoryPreferenceRepository) LoadHistory(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.history == nil {
		return nil, nil
	}
	return append([]byte(nil), r.history...), nil
}

func (r *MemoryPreferenceRepository) SaveHistory(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.history = append([]byte(nil), payload...)
	return nil
}

func (r *MemoryPreferenceRepository) DeleteHistory(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.history = nil
	return nil
}

func (r *MemoryPreferenceRepository) LoadTheme(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme, nil
}

func (r *MemoryPreferenceRepository) SaveTheme(_ context.Context, theme model.Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.theme = string(theme)
	return nil
}

// SetRawHistory seeds the stored payload verbatim.
func (r *MemoryPreferenceRepository) SetRawHistory(payload []byte) {
	r.mu.Lock()
	r.history = payload
	r.mu.Unlock()
}

func (r *MemoryPreferenceRepository) Close() error { return nil }

var _ model.PreferenceRepository = (*MemoryPreferenceRepository)(nil)
