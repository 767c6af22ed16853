package oracle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/doeshing/pteroai-go/internal/domain"
)

const ollamaDefaultEndpoint = "http://localhost:11434/v1"

// chatOracle talks to any OpenAI-compatible chat completion API, including Ollama.
type chatOracle struct {
	name     string
	client   *openai.Client
	settings settings
}

func newOpenAIOracle(s settings, httpClient *http.Client) (*chatOracle, error) {
	apiKey := APIKey(domain.OracleProviderOpenAI, s.AuthEnvVar)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s: %w", KeyEnvVar(domain.OracleProviderOpenAI, s.AuthEnvVar), domain.ErrOracleUnavailable)
	}
	cfg := openai.DefaultConfig(apiKey)
	if s.Endpoint != "" {
		cfg.BaseURL = s.Endpoint
	}
	cfg.HTTPClient = httpClient
	return &chatOracle{name: domain.OracleProviderOpenAI, client: openai.NewClientWithConfig(cfg), settings: s}, nil
}

func newOllamaOracle(s settings, httpClient *http.Client) *chatOracle {
	// Ollama ignores the key but the client requires a non-empty one.
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = ollamaDefaultEndpoint
	if s.Endpoint != "" {
		cfg.BaseURL = s.Endpoint
	}
	cfg.HTTPClient = httpClient
	return &chatOracle{name: domain.OracleProviderOllama, client: openai.NewClientWithConfig(cfg), settings: s}
}

func (o *chatOracle) Name() string {
	return o.name
}

func (o *chatOracle) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(o.settings.Temperature),
		MaxTokens:   o.settings.MaxTokens,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %v: %w", o.name, err, domain.ErrOracleUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices: %w", o.name, domain.ErrOracleResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
