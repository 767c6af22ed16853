package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// TestConfig_ConfirmationPolicy tests the policy fallback
func TestConfig_ConfirmationPolicy(t *testing.T) {
	tests := []struct {
		name   string
		config domain.Config
		level  domain.SecurityLevel
		want   bool
	}{
		{
			name:   "default policy gates medium",
			config: domain.Config{},
			level:  domain.SecurityMedium,
			want:   true,
		},
		{
			name:   "default policy passes low risk",
			config: domain.Config{},
			level:  domain.SecurityLowRisk,
			want:   false,
		},
		{
			name: "configured policy wins",
			config: domain.Config{
				RequireConfirmation: domain.ConfirmationPolicy{domain.SecurityMedium: false},
			},
			level: domain.SecurityMedium,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.ConfirmationPolicy()[tt.level]
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConfig_Getters tests that zero values fall back to defaults
func TestConfig_Getters(t *testing.T) {
	cfg := domain.Config{CachePath: "/tmp/cache"}

	if got := cfg.GetPromptLineLimit(); got != 200 {
		t.Errorf("prompt line limit = %d, want 200", got)
	}
	if got := cfg.GetDiffLineLimit(); got != 50 {
		t.Errorf("diff line limit = %d, want 50", got)
	}
	if got := cfg.GetOracleTimeout(); got != 60*time.Second {
		t.Errorf("oracle timeout = %v, want 60s", got)
	}
	if got := cfg.GetOracleRetries(); got != 0 {
		t.Errorf("retries = %d, want 0", got)
	}
	if got := cfg.GetHistoryPath(); got != "/tmp/cache/history.db" {
		t.Errorf("history path = %s", got)
	}
	if got := len(cfg.GetCandidateRoots()); got != 4 {
		t.Errorf("candidate roots = %d, want 4", got)
	}

	cfg.Oracle.Model = "main-model"
	if got := cfg.GetValidatorModel(); got != "main-model" {
		t.Errorf("validator model = %s, want fallback to main", got)
	}
}

// TestConfig_ValidateConsistency tests config validation
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name    string
		config  domain.Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: domain.Config{PteroPath: "/var/www/pterodactyl", CachePath: "/tmp", AIConfidenceThreshold: 0.7},
		},
		{
			name:    "missing install root",
			config:  domain.Config{CachePath: "/tmp"},
			wantErr: true,
		},
		{
			name:    "threshold out of range",
			config:  domain.Config{PteroPath: "/p", CachePath: "/tmp", AIConfidenceThreshold: 1.5},
			wantErr: true,
		},
		{
			name: "unknown provider",
			config: domain.Config{
				PteroPath: "/p", CachePath: "/tmp",
				Oracle: domain.OracleSettings{Provider: "skynet"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConsistency() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_PolicyJSONUsesLevelNames(t *testing.T) {
	cfg := domain.Config{RequireConfirmation: domain.DefaultConfirmationPolicy()}
	raw, err := json.Marshal(cfg.RequireConfirmation)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var names map[string]bool
	if err := json.Unmarshal(raw, &names); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !names["critical"] || names["low_risk"] {
		t.Errorf("unexpected policy encoding: %s", raw)
	}

	var back domain.ConfirmationPolicy
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal policy: %v", err)
	}
	if !back[domain.SecurityHigh] || back[domain.SecuritySafe] {
		t.Errorf("round trip lost values: %v", back)
	}
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	cfg := domain.Config{
		RequireConfirmation: domain.DefaultConfirmationPolicy(),
		CandidateRoots:      []string{"a"},
	}
	clone := cfg.Clone()
	clone.RequireConfirmation[domain.SecuritySafe] = true
	clone.CandidateRoots[0] = "b"

	if cfg.RequireConfirmation[domain.SecuritySafe] {
		t.Error("policy shared with clone")
	}
	if cfg.CandidateRoots[0] != "a" {
		t.Error("candidate roots shared with clone")
	}
}
