package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// Behaviour lives on the entity; callers never re-derive defaults themselves.

// Clone returns a copy that shares no mutable state with c.
func (c *Config) Clone() Config {
	out := *c
	out.RequireConfirmation = c.RequireConfirmation.Clone()
	out.CandidateRoots = append([]string(nil), c.CandidateRoots...)
	return out
}

// ConfirmationPolicy returns the configured policy, or the default when unset.
func (c *Config) ConfirmationPolicy() ConfirmationPolicy {
	if len(c.RequireConfirmation) == 0 {
		return DefaultConfirmationPolicy()
	}
	return c.RequireConfirmation
}

// IsSafetyMode reports whether low-confidence or invalid decisions are always gated.
func (c *Config) IsSafetyMode() bool {
	return c.SafetyMode
}

// GetConfidenceThreshold returns the confidence floor used by safety mode.
func (c *Config) GetConfidenceThreshold() float64 {
	if c.AIConfidenceThreshold <= 0 || c.AIConfidenceThreshold > 1 {
		return DefaultConfidenceThreshold
	}
	return c.AIConfidenceThreshold
}

// GetPromptLineLimit returns how many leading lines of a file are sent to the oracle.
func (c *Config) GetPromptLineLimit() int {
	if c.PromptLineLimit <= 0 {
		return DefaultPromptLineLimit
	}
	return c.PromptLineLimit
}

// GetDiffLineLimit returns how many leading lines of each side of a change are sent to the oracle.
func (c *Config) GetDiffLineLimit() int {
	if c.DiffLineLimit <= 0 {
		return DefaultDiffLineLimit
	}
	return c.DiffLineLimit
}

// GetCandidateRoots returns the root-relative directories probed for target files.
func (c *Config) GetCandidateRoots() []string {
	if len(c.CandidateRoots) == 0 {
		return DefaultCandidateRoots()
	}
	return c.CandidateRoots
}

// GetMaxBackups returns the backup rotation bound handed to downstream executors.
func (c *Config) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return DefaultMaxBackups
	}
	return c.MaxBackups
}

// GetHistoryPath returns the durable history database path.
func (c *Config) GetHistoryPath() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(c.CachePath, HistoryFileName)
}

// GetOracleTimeout returns the per-call oracle deadline.
func (c *Config) GetOracleTimeout() time.Duration {
	if c.Oracle.TimeoutSeconds <= 0 {
		return DefaultOracleTimeout
	}
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// GetOracleRetries returns the number of extra attempts per oracle call. Zero means none.
func (c *Config) GetOracleRetries() int {
	if c.Oracle.Retries < 0 {
		return 0
	}
	return c.Oracle.Retries
}

// GetRequestsPerMinute returns the oracle pacing budget.
func (c *Config) GetRequestsPerMinute() int {
	if c.Oracle.RequestsPerMinute <= 0 {
		return DefaultRequestsPerMinute
	}
	return c.Oracle.RequestsPerMinute
}

// GetOracleProvider returns the configured provider name.
func (c *Config) GetOracleProvider() string {
	if c.Oracle.Provider == "" {
		return OracleProviderGemini
	}
	return c.Oracle.Provider
}

// GetValidatorModel returns the model used for validation calls, falling back to the main model.
func (c *Config) GetValidatorModel() string {
	if c.Oracle.ValidatorModel == "" {
		return c.Oracle.Model
	}
	return c.Oracle.ValidatorModel
}

// ValidateConsistency checks the internal consistency of the configuration.
func (c *Config) ValidateConsistency() error {
	if c.PteroPath == "" {
		return fmt.Errorf("pteroPath must not be empty")
	}
	if c.CachePath == "" {
		return fmt.Errorf("cachePath must not be empty")
	}
	if c.AIConfidenceThreshold < 0 || c.AIConfidenceThreshold > 1 {
		return fmt.Errorf("aiConfidenceThreshold %.2f is outside [0,1]", c.AIConfidenceThreshold)
	}
	switch c.GetOracleProvider() {
	case OracleProviderGemini, OracleProviderOpenAI, OracleProviderOllama, OracleProviderAnthropic, OracleProviderNone:
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Oracle.Retries < 0 {
		return fmt.Errorf("oracle retries must not be negative")
	}
	return nil
}
