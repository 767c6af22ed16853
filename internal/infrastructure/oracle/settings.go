package oracle

import (
	"os"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// settings is the per-role view of the oracle configuration.
type settings struct {
	Provider    string
	Model       string
	Endpoint    string
	AuthEnvVar  string
	Temperature float64
	MaxTokens   int
}

func settingsFor(cfg domain.Config, role ports.OracleRole) settings {
	o := cfg.Oracle
	s := settings{
		Provider:    cfg.GetOracleProvider(),
		Model:       o.Model,
		Endpoint:    o.Endpoint,
		AuthEnvVar:  o.AuthEnvVar,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxOutputTokens,
	}
	if s.Temperature <= 0 {
		s.Temperature = domain.DefaultMainTemperature
	}
	if role == ports.OracleValidator {
		s.Model = cfg.GetValidatorModel()
		s.Temperature = o.ValidatorTemperature
		if s.Temperature <= 0 {
			s.Temperature = domain.DefaultValidatorTemperature
		}
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = domain.DefaultMaxOutputTokens
	}
	if s.Model == "" {
		s.Model = defaultModels[s.Provider]
	}
	return s
}

var defaultModels = map[string]string{
	domain.OracleProviderGemini:    "gemini-2.5-flash",
	domain.OracleProviderOpenAI:    "gpt-4o-mini",
	domain.OracleProviderOllama:    "llama3.1",
	domain.OracleProviderAnthropic: "claude-3-5-sonnet-20240620",
}

var defaultKeyEnv = map[string]string{
	domain.OracleProviderGemini:    "GEMINI_API_KEY",
	domain.OracleProviderOpenAI:    "OPENAI_API_KEY",
	domain.OracleProviderAnthropic: "ANTHROPIC_API_KEY",
}

// APIKey resolves the credential for a provider: the configured env var first,
// then the provider's conventional one.
func APIKey(provider, authEnvVar string) string {
	return getEnv(authEnvVar, defaultKeyEnv[provider])
}

// KeyEnvVar names the env var a provider's key is read from.
func KeyEnvVar(provider, authEnvVar string) string {
	if authEnvVar != "" {
		return authEnvVar
	}
	return defaultKeyEnv[provider]
}

func getEnv(primary, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback != "" {
		return os.Getenv(fallback)
	}
	return ""
}
