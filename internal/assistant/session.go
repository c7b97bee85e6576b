package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/devs-assistent/server/internal/assistant/completion"
	"github.com/devs-assistent/server/internal/assistant/conversation"
	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/orchestrator"
	"github.com/devs-assistent/server/internal/assistant/repo"
	"github.com/devs-assistent/server/internal/assistant/transcript"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// Session is the application-level owner of one conversation: its store,
// orchestrator and optional dictation capture.
type Session struct {
	ID           string
	Store        *conversation.Store
	Orchestrator *orchestrator.Orchestrator
	Capture      *transcript.Capture

	repo model.PreferenceRepository
}

// Options override collaborators, mainly for tests and the CLI.
type Options struct {
	// Repository replaces the configured storage backend.
	Repository model.PreferenceRepository
	// Completer replaces the Gemini completion client.
	Completer orchestrator.Completer
	// Dictation, when set, feeds the transcript capture line by line.
	Dictation io.Reader
}

// NewSession wires a session from cfg. The caller owns Close.
func NewSession(ctx context.Context, cfg Config, opts Options) (*Session, error) {
	r := opts.Repository
	if r == nil {
		var err error
		if r, err = NewRepository(ctx, cfg); err != nil {
			return nil, err
		}
	}

	store := conversation.NewStore(r, cfg.History)
	if err := store.Load(ctx); err != nil {
		logx.Warn().Err(err).Msg("starting with empty query history")
	}

	completer := opts.Completer
	if completer == nil {
		var creds completion.CredentialSource = completion.EnvCredential("GEMINI_API_KEY")
		if cfg.APIKey != "" {
			creds = completion.StaticCredential(cfg.APIKey)
		}
		completer = completion.NewClient(
			creds,
			completion.GeminiModelFactory(cfg.Completion, cfg.BaseURL),
			cfg.Completion.Model,
		)
	}

	var engine transcript.Recognizer
	if opts.Dictation != nil {
		engine = transcript.NewLineRecognizer(opts.Dictation)
	}

	s := &Session{
		ID:           uuid.NewString(),
		Store:        store,
		Orchestrator: orchestrator.New(store, completer),
		Capture:      transcript.NewCapture(engine, cfg.Voice),
		repo:         r,
	}
	logx.Debug().
		Str("session_id", s.ID).
		Str("store", cfg.Store.Backend).
		Int("history", len(store.History())).
		Bool("dictation", s.Capture.Supported()).
		Msg("session ready")
	return s, nil
}

// NewRepository opens the configured preference backend.
func NewRepository(ctx context.Context, cfg Config) (model.PreferenceRepository, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "bolt":
		db, err := cfg.Bolt.New()
		if err != nil {
			return nil, errx.WrapStorage(fmt.Errorf("open %s: %w", cfg.Bolt.Path, err))
		}
		r, err := repo.NewBoltPreferenceRepository(db, cfg.Store.Profile)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return r, nil
	case "redis":
		ttl, err := cfg.StoreTTL()
		if err != nil {
			return nil, errx.Configuration(err)
		}
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, errx.WrapRedis(err)
		}
		return repo.NewRedisPreferenceRepository(rdb, cfg.Store.Profile, ttl), nil
	case "memory":
		return repo.NewMemoryPreferenceRepository(), nil
	default:
		return nil, errx.Configuration(fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend))
	}
}

// Close releases the dictation engine and the storage backend.
func (s *Session) Close() error {
	return errors.Join(s.Capture.Close(), s.repo.Close())
}
