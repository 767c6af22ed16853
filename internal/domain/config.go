package domain

// Config mirrors ~/.pteroai/config.json.
type Config struct {
	PteroPath             string             `json:"pteroPath" mapstructure:"pteroPath"`
	BackupPath            string             `json:"backupPath" mapstructure:"backupPath"`
	CachePath             string             `json:"cachePath" mapstructure:"cachePath"`
	SafetyMode            bool               `json:"safetyMode" mapstructure:"safetyMode"`
	AutoBackup            bool               `json:"autoBackup" mapstructure:"autoBackup"`
	MaxBackups            int                `json:"maxBackups" mapstructure:"maxBackups"`
	AIConfidenceThreshold float64            `json:"aiConfidenceThreshold" mapstructure:"aiConfidenceThreshold"`
	RequireConfirmation   ConfirmationPolicy `json:"requireConfirmation" mapstructure:"requireConfirmation"`
	Oracle                OracleSettings     `json:"oracle" mapstructure:"oracle"`
	PromptLineLimit       int                `json:"promptLineLimit" mapstructure:"promptLineLimit"`
	DiffLineLimit         int                `json:"diffLineLimit" mapstructure:"diffLineLimit"`
	CandidateRoots        []string           `json:"candidateRoots" mapstructure:"candidateRoots"`
	HistoryPath           string             `json:"historyPath" mapstructure:"historyPath"`
	RulesFile             string             `json:"rulesFile" mapstructure:"rulesFile"`
}

// OracleSettings selects and tunes the reasoning backend.
type OracleSettings struct {
	Provider             string  `json:"provider" mapstructure:"provider"`
	Model                string  `json:"model" mapstructure:"model"`
	ValidatorModel       string  `json:"validatorModel" mapstructure:"validatorModel"`
	Endpoint             string  `json:"endpoint" mapstructure:"endpoint"`
	AuthEnvVar           string  `json:"authEnvVar" mapstructure:"authEnvVar"`
	TimeoutSeconds       int     `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	Retries              int     `json:"retries" mapstructure:"retries"`
	RequestsPerMinute    int     `json:"requestsPerMinute" mapstructure:"requestsPerMinute"`
	Temperature          float64 `json:"temperature" mapstructure:"temperature"`
	ValidatorTemperature float64 `json:"validatorTemperature" mapstructure:"validatorTemperature"`
	MaxOutputTokens      int     `json:"maxOutputTokens" mapstructure:"maxOutputTokens"`
}

// ConfirmationPolicy maps each security level to whether a human must confirm.
type ConfirmationPolicy map[SecurityLevel]bool

// DefaultConfirmationPolicy requires confirmation from Medium upwards.
func DefaultConfirmationPolicy() ConfirmationPolicy {
	return ConfirmationPolicy{
		SecurityCritical: true,
		SecurityHigh:     true,
		SecurityMedium:   true,
		SecurityLowRisk:  false,
		SecuritySafe:     false,
	}
}

// Clone returns an independent copy.
func (p ConfirmationPolicy) Clone() ConfirmationPolicy {
	out := make(ConfirmationPolicy, len(p))
	for level, required := range p {
		out[level] = required
	}
	return out
}

// Oracle provider names.
const (
	OracleProviderGemini    = "gemini"
	OracleProviderOpenAI    = "openai"
	OracleProviderOllama    = "ollama"
	OracleProviderAnthropic = "anthropic"
	OracleProviderNone      = "none"
)
