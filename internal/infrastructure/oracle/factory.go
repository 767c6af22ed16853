package oracle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Factory builds guarded oracles from configuration.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
	metrics    ports.Metrics
}

// NewFactory returns a factory sharing one HTTP client across oracles.
func NewFactory(logger ports.Logger, metrics ports.Metrics) *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// ForRole builds the oracle for a role, wrapped in a Guard. An oracle whose
// credentials are missing is replaced by the offline oracle so the pipeline
// still runs on defaults; the returned error says why.
func (f *Factory) ForRole(cfg domain.Config, role ports.OracleRole) (ports.Oracle, error) {
	s := settingsFor(cfg, role)
	inner, err := f.build(s)
	if err != nil {
		inner = offlineOracle{}
	}
	guarded := NewGuard(inner, GuardConfig{
		Role:              role,
		Timeout:           cfg.GetOracleTimeout(),
		Retries:           cfg.GetOracleRetries(),
		RequestsPerMinute: cfg.GetRequestsPerMinute(),
		Logger:            f.logger,
		Metrics:           f.metrics,
	})
	return guarded, err
}

func (f *Factory) build(s settings) (ports.Oracle, error) {
	switch s.Provider {
	case domain.OracleProviderGemini:
		return newGeminiOracle(context.Background(), s, f.httpClient)
	case domain.OracleProviderOpenAI:
		return newOpenAIOracle(s, f.httpClient)
	case domain.OracleProviderOllama:
		return newOllamaOracle(s, f.httpClient), nil
	case domain.OracleProviderAnthropic:
		return newHTTPOracle(domain.OracleProviderAnthropic, s, f.httpClient, anthropicAdapter()), nil
	case domain.OracleProviderNone:
		return offlineOracle{}, nil
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", s.Provider)
	}
}

var _ ports.OracleFactory = (*Factory)(nil)
