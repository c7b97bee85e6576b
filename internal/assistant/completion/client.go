package completion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/observers"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

var (
	// ErrEmptyQuery is returned for queries that are blank after trimming.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrMissingCredential is returned when no API key can be resolved.
	ErrMissingCredential = errors.New("API key is not configured; set GEMINI_API_KEY")
)

// CredentialSource resolves the API key at call time.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// EnvCredential reads the API key from the named environment variable on
// every call.
type EnvCredential string

func (e EnvCredential) APIKey(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// StaticCredential is a fixed API key, typically loaded once from config.
type StaticCredential string

func (s StaticCredential) APIKey(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

type runner = compose.Runnable[map[string]any, *schema.Message]

// Client maps a free-text query to a validated StructuredAnswer with a
// single model call.
type Client struct {
	creds     CredentialSource
	factory   ModelFactory
	modelName string
	callbacks einocb.Handler

	mu        sync.Mutex
	cachedKey string
	runnable  runner
}

func NewClient(creds CredentialSource, factory ModelFactory, modelName string) *Client {
	return &Client{
		creds:     creds,
		factory:   factory,
		modelName: modelName,
		callbacks: observers.NewCompletionCallbacks(modelName),
	}
}

// Complete sends query to the model once and returns the normalised answer.
// Errors are *errx.AppError of kind invalid, configuration, transport or parse.
func (c *Client) Complete(ctx context.Context, query string) (*model.StructuredAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errx.Invalid(ErrEmptyQuery)
	}

	apiKey, err := c.creds.APIKey(ctx)
	if err != nil {
		return nil, errx.Configuration(fmt.Errorf("resolve API key: %w", err))
	}
	if apiKey == "" {
		return nil, errx.Configuration(ErrMissingCredential)
	}

	r, err := c.chainFor(ctx, apiKey)
	if err != nil {
		return nil, errx.Configuration(err)
	}

	out, err := r.Invoke(ctx, templateVars(query), compose.WithCallbacks(c.callbacks))
	if err != nil {
		logx.Warn().Err(err).Str("model", c.modelName).Msg("completion request failed")
		return nil, errx.Transport(err)
	}
	if out == nil {
		return nil, errx.Parse(errors.New("model returned no message"))
	}

	ans, err := ParseAnswer(out.Content)
	if err != nil {
		logx.Warn().Err(err).Int("reply_len", len(out.Content)).Msg("completion response rejected")
		return nil, err
	}
	return ans, nil
}

// chainFor returns the compiled template→model chain for apiKey, rebuilding it
// when the key changes.
func (c *Client) chainFor(ctx context.Context, apiKey string) (runner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runnable != nil && c.cachedKey == apiKey {
		return c.runnable, nil
	}

	cm, err := c.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(newChatTemplate()).
		AppendChatModel(cm)

	r, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile completion chain: %w", err)
	}

	c.runnable = r
	c.cachedKey = apiKey
	logx.Debug().Str("model", c.modelName).Msg("completion chain compiled")
	return r, nil
}
