package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Guard wraps an oracle with the call-boundary policy: a hard per-call deadline,
// an explicit retry budget (zero by default), request pacing, metrics and logging.
type Guard struct {
	inner   ports.Oracle
	role    ports.OracleRole
	timeout time.Duration
	retries int
	limiter *rate.Limiter
	logger  ports.Logger
	metrics ports.Metrics
}

// GuardConfig tunes a Guard.
type GuardConfig struct {
	Role              ports.OracleRole
	Timeout           time.Duration
	Retries           int
	RequestsPerMinute int
	Logger            ports.Logger
	Metrics           ports.Metrics
}

// NewGuard wraps inner.
func NewGuard(inner ports.Oracle, cfg GuardConfig) *Guard {
	g := &Guard{
		inner:   inner,
		role:    cfg.Role,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if g.timeout <= 0 {
		g.timeout = domain.DefaultOracleTimeout
	}
	if g.retries < 0 {
		g.retries = 0
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}
	return g
}

func (g *Guard) Name() string {
	return g.inner.Name()
}

// Generate calls the wrapped oracle at most 1+retries times.
func (g *Guard) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("oracle pacing: %w", err)
			}
		}
		text, err := g.call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		g.log("oracle call failed", err, map[string]interface{}{
			"role":    string(g.role),
			"oracle":  g.inner.Name(),
			"attempt": attempt + 1,
		})
	}
	return "", lastErr
}

type result struct {
	text string
	err  error
}

// call enforces the deadline even when the wrapped oracle ignores its context.
// A late answer is dropped.
func (g *Guard) call(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		text, err := g.inner.Generate(callCtx, prompt)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = result{err: callCtx.Err()}
	}

	outcome := "ok"
	switch {
	case res.err == nil:
	case errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		outcome = "timeout"
		res.err = fmt.Errorf("%s oracle timed out after %s: %w", g.inner.Name(), g.timeout, domain.ErrOracleUnavailable)
	case errors.Is(res.err, domain.ErrOracleResponse):
		outcome = "bad_response"
	default:
		outcome = "error"
	}
	if g.metrics != nil {
		g.metrics.ObserveOracleCall(string(g.role), outcome, time.Since(start))
	}
	return res.text, res.err
}

func (g *Guard) log(msg string, err error, fields map[string]interface{}) {
	if g.logger == nil {
		return
	}
	fields["error"] = err.Error()
	g.logger.Warn(msg, fields)
}

var _ ports.Oracle = (*Guard)(nil)
