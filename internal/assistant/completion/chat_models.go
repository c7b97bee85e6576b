package completion

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/devs-assistent/server/internal/assistant/model"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// ModelFactory builds a chat model for a resolved API key. It is only called
// once a credential is known, so a missing key never reaches the network.
type ModelFactory func(ctx context.Context, apiKey string) (einomodel.BaseChatModel, error)

// GeminiModelFactory returns the production factory: a genai client wrapped by
// the eino-ext Gemini chat model.
func GeminiModelFactory(cfg model.CompletionModelConfig, baseURL string) ModelFactory {
	return func(ctx context.Context, apiKey string) (einomodel.BaseChatModel, error) {
		client, err := newGenAIClient(ctx, apiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return NewGeminiChatModel(ctx, client, cfg)
	}
}

func newGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiChatModel builds the eino-ext Gemini chat model constrained to the
// answer schema; the model replies with application/json only.
func NewGeminiChatModel(ctx context.Context, client *genai.Client, cfg model.CompletionModelConfig) (*gemini.ChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:         client,
		Model:          cfg.Model,
		Temperature:    &temperature,
		MaxTokens:      &maxTokens,
		ResponseSchema: answerResponseSchema(),
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating completion model")
		return nil, fmt.Errorf("error creating completion model: %w", err)
	}
	return cm, nil
}
