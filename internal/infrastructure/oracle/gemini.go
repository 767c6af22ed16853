package oracle

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// geminiOracle calls the Gemini API through the genai SDK.
type geminiOracle struct {
	client   *genai.Client
	settings settings
}

func newGeminiOracle(ctx context.Context, s settings, httpClient *http.Client) (*geminiOracle, error) {
	apiKey := APIKey(domain.OracleProviderGemini, s.AuthEnvVar)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s: %w", KeyEnvVar(domain.OracleProviderGemini, s.AuthEnvVar), domain.ErrOracleUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiOracle{client: client, settings: s}, nil
}

func (o *geminiOracle) Name() string {
	return domain.OracleProviderGemini
}

func (o *geminiOracle) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(o.settings.Temperature)),
		MaxOutputTokens: int32(o.settings.MaxTokens),
	}
	resp, err := o.client.Models.GenerateContent(ctx, o.settings.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %v: %w", err, domain.ErrOracleUnavailable)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text: %w", domain.ErrOracleResponse)
	}
	return text, nil
}
