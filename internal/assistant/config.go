package assistant

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/core"
	pkgbolt "github.com/devs-assistent/server/pkg/bolt"
	pkgredis "github.com/devs-assistent/server/pkg/redis"
)

// Config defines all configurable parameters of an assistant session,
// sourced from environment variables (loaded from .env for local runs).
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// LLM provider. The key is optional here and resolved again per request.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Infrastructure
	Store model.StoreConfig
	Redis pkgredis.Config
	Bolt  pkgbolt.Config

	Completion model.CompletionModelConfig
	History    model.HistoryConfig
	Voice      model.VoiceConfig
}

// LoadConfig reads envFile when present and binds the environment.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

func (c Config) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

// StoreTTL parses STORE_TTL; zero keeps keys forever.
func (c Config) StoreTTL() (time.Duration, error) {
	if c.Store.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Store.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid STORE_TTL %q: %w", c.Store.TTL, err)
	}
	return ttl, nil
}
