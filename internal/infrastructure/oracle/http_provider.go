package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// httpOracle speaks a provider's JSON API over plain HTTP. Used for providers
// without an SDK in the dependency set.
type httpOracle struct {
	name       string
	settings   settings
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(settings, string) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, settings) error
}

func newHTTPOracle(name string, s settings, client *http.Client, adapter providerAdapter) ports.Oracle {
	return &httpOracle{
		name:       name,
		settings:   s,
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpOracle) Name() string {
	return p.name
}

func (p *httpOracle) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody, err := p.adapter.buildRequest(p.settings, prompt)
	if err != nil {
		return "", err
	}

	endpoint := p.settings.Endpoint
	if endpoint == "" {
		endpoint = anthropicEndpoint
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.settings); err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", p.name, err, domain.ErrOracleUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s: %s: %w", p.name, resp.Status, domain.ErrOracleUnavailable)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return "", err
	}

	return p.adapter.parseResponse(responseBody.Bytes())
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildAnthropicRequest(s settings, prompt string) ([]byte, error) {
	request := map[string]interface{}{
		"model":       s.Model,
		"max_tokens":  s.MaxTokens,
		"temperature": s.Temperature,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": prompt},
				},
			},
		},
	}
	return json.Marshal(request)
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("anthropic response: %v: %w", err, domain.ErrOracleResponse)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("anthropic returned no content: %w", domain.ErrOracleResponse)
	}
	return response.Content[0].Text, nil
}

func setAnthropicHeaders(req *http.Request, s settings) error {
	apiKey := APIKey(domain.OracleProviderAnthropic, s.AuthEnvVar)
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s: %w", KeyEnvVar(domain.OracleProviderAnthropic, s.AuthEnvVar), domain.ErrOracleUnavailable)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}
