package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

type scriptedOracle struct {
	calls   atomic.Int32
	answers []error
	delay   time.Duration
}

func (s *scriptedOracle) Name() string { return "scripted" }

func (s *scriptedOracle) Generate(ctx context.Context, _ string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if n < len(s.answers) && s.answers[n] != nil {
		return "", s.answers[n]
	}
	return `{"ok":true}`, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveOracleCall(_, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}
func (m *recordingMetrics) IncDegradedStage(string)     {}
func (m *recordingMetrics) IncDecision(string, bool)    {}
func (m *recordingMetrics) IncKnowledgeAnalysis(string) {}

func TestGuardNoImplicitRetry(t *testing.T) {
	inner := &scriptedOracle{answers: []error{errors.New("boom")}}
	guard := NewGuard(inner, GuardConfig{Role: ports.OracleMain})

	_, err := guard.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestGuardExplicitRetries(t *testing.T) {
	inner := &scriptedOracle{answers: []error{errors.New("boom"), errors.New("boom")}}
	metrics := &recordingMetrics{}
	guard := NewGuard(inner, GuardConfig{Role: ports.OracleMain, Retries: 2, Metrics: metrics})

	text, err := guard.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, int32(3), inner.calls.Load())
	assert.Equal(t, []string{"error", "error", "ok"}, metrics.outcomes)
}

func TestGuardTimeoutEvenWhenOracleIgnoresContext(t *testing.T) {
	inner := &scriptedOracle{delay: 300 * time.Millisecond}
	metrics := &recordingMetrics{}
	guard := NewGuard(inner, GuardConfig{Role: ports.OracleValidator, Timeout: 20 * time.Millisecond, Metrics: metrics})

	start := time.Now()
	_, err := guard.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, []string{"timeout"}, metrics.outcomes)
}

func TestGuardCancelledContext(t *testing.T) {
	inner := &scriptedOracle{}
	guard := NewGuard(inner, GuardConfig{Role: ports.OracleMain})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := guard.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, inner.calls.Load())
}

func TestAnthropicOracle(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-test")
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"risks\":[]}"}]}`))
	}))
	defer server.Close()

	s := settings{Model: "claude-test", Endpoint: server.URL, AuthEnvVar: "TEST_ANTHROPIC_KEY", MaxTokens: 100, Temperature: 0.1}
	o := newHTTPOracle(domain.OracleProviderAnthropic, s, server.Client(), anthropicAdapter())

	text, err := o.Generate(context.Background(), "validate this")
	require.NoError(t, err)
	assert.Equal(t, `{"risks":[]}`, text)
	assert.Equal(t, "claude-test", body["model"])
}

func TestAnthropicOracleHTTPError(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-test")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := settings{Endpoint: server.URL, AuthEnvVar: "TEST_ANTHROPIC_KEY"}
	o := newHTTPOracle(domain.OracleProviderAnthropic, s, server.Client(), anthropicAdapter())
	_, err := o.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func TestFactoryMissingKeyFallsBackOffline(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := domain.Config{Oracle: domain.OracleSettings{Provider: domain.OracleProviderGemini}}

	o, err := NewFactory(nil, nil).ForRole(cfg, ports.OracleMain)
	require.Error(t, err)
	require.NotNil(t, o)

	_, genErr := o.Generate(context.Background(), "p")
	assert.ErrorIs(t, genErr, domain.ErrOracleUnavailable)
}

func TestFactoryNoneProvider(t *testing.T) {
	cfg := domain.Config{Oracle: domain.OracleSettings{Provider: domain.OracleProviderNone}}
	o, err := NewFactory(nil, nil).ForRole(cfg, ports.OracleValidator)
	require.NoError(t, err)
	assert.Equal(t, "none", o.Name())
}

func TestSettingsForRole(t *testing.T) {
	cfg := domain.Config{Oracle: domain.OracleSettings{
		Provider:       domain.OracleProviderOpenAI,
		Model:          "gpt-main",
		ValidatorModel: "gpt-check",
	}}

	main := settingsFor(cfg, ports.OracleMain)
	assert.Equal(t, "gpt-main", main.Model)
	assert.InDelta(t, 0.2, main.Temperature, 1e-9)

	validator := settingsFor(cfg, ports.OracleValidator)
	assert.Equal(t, "gpt-check", validator.Model)
	assert.InDelta(t, 0.1, validator.Temperature, 1e-9)
	assert.Equal(t, domain.DefaultMaxOutputTokens, validator.MaxTokens)
}
