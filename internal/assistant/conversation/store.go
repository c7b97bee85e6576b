package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/devs-assistent/server/internal/assistant/model"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// DefaultHistoryLimit caps the number of distinct queries kept in history.
const DefaultHistoryLimit = 50

// Store owns the in-memory turn log and the durable query history of one
// session. The turn log is append-only; only the history and the theme reach
// the repository.
type Store struct {
	repo  model.PreferenceRepository
	limit int

	mu      sync.RWMutex
	turns   []model.Turn
	history []string
}

func NewStore(repo model.PreferenceRepository, config model.HistoryConfig) *Store {
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Store{repo: repo, limit: limit, history: []string{}}
}

// Load adopts the persisted history. Missing or corrupt data leaves the
// history empty; only repository I/O failures are returned.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.repo.LoadHistory(ctx)
	if err != nil {
		s.setHistory([]string{})
		return err
	}
	if len(raw) == 0 {
		s.setHistory([]string{})
		return nil
	}

	var saved []string
	if err := json.Unmarshal(raw, &saved); err != nil {
		logx.Warn().Err(err).Int("bytes", len(raw)).Msg("discarding unreadable query history")
		s.setHistory([]string{})
		return nil
	}
	if saved == nil {
		saved = []string{}
	}
	s.setHistory(saved)
	return nil
}

func (s *Store) setHistory(h []string) {
	s.mu.Lock()
	s.history = h
	s.mu.Unlock()
}

// AppendTurn appends a turn to the log.
func (s *Store) AppendTurn(turn model.Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
}

// Turns returns a copy of the turn log in chronological order.
func (s *Store) Turns() []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Last returns the most recent turn, if any.
func (s *Store) Last() (model.Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return model.Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// History returns a copy of the query history, most recent first.
func (s *Store) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryAt returns the history entry at the 0-based index i, most recent
// first.
func (s *Store) HistoryAt(i int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.history) {
		return "", false
	}
	return s.history[i], true
}

// RecordQuery moves q to the front of the history, drops any earlier
// occurrence, truncates to the limit and persists the result before
// returning. The in-memory history is updated even if persisting fails.
func (s *Store) RecordQuery(ctx context.Context, q string) error {
	s.mu.Lock()
	next := make([]string, 0, min(len(s.history)+1, s.limit))
	next = append(next, q)
	for _, h := range s.history {
		if len(next) == s.limit {
			break
		}
		if h != q {
			next = append(next, h)
		}
	}
	s.history = next
	payload, err := json.Marshal(next)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return s.repo.SaveHistory(ctx, payload)
}

// ClearHistory empties the history and its persisted copy. The turn log is
// left untouched.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.setHistory([]string{})
	return s.repo.DeleteHistory(ctx)
}

// Theme returns the persisted theme, DefaultTheme when absent or unknown.
func (s *Store) Theme(ctx context.Context) (model.Theme, error) {
	v, err := s.repo.LoadTheme(ctx)
	if err != nil {
		return model.DefaultTheme, err
	}
	if t, ok := model.ParseTheme(v); ok {
		return t, nil
	}
	return model.DefaultTheme, nil
}

func (s *Store) SetTheme(ctx context.Context, theme model.Theme) error {
	if _, ok := model.ParseTheme(string(theme)); !ok {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.repo.SaveTheme(ctx, theme)
}
