package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/pkg/filesystem"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// EnvPrefix prefixes every environment override, e.g. PTEROAI_SAFETYMODE or
// PTEROAI_ORACLE_PROVIDER.
const EnvPrefix = "PTEROAI"

// FileLoader loads JSON configuration from ~/.pteroai/config.json (overridable via PTEROAI_CONFIG).
type FileLoader struct {
	overridePath string
	installRoots []string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, installRoots: domain.DefaultInstallRoots()}
}

// WithInstallRoots overrides the directories probed for an installation.
func (l *FileLoader) WithInstallRoots(roots []string) *FileLoader {
	l.installRoots = roots
	return l
}

// Load implements ports.ConfigProvider. Defaults are written back when the file
// cannot be stat'd; failing to write them is fatal and wraps domain.ErrConfigWrite.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	defaults := l.Defaults()

	if _, err := os.Stat(path); err != nil {
		if err := writeConfig(path, defaults); err != nil {
			return domain.Config{}, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg domain.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return domain.Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg, defaults)
	if err := cfg.ValidateConsistency(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	for _, dir := range []string{cfg.BackupPath, cfg.CachePath} {
		if err := filesystem.EnsureDir(dir, domain.DirectoryPermissions); err != nil {
			return domain.Config{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return cfg, nil
}

// Save rewrites the config file.
func (l *FileLoader) Save(_ context.Context, cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	return writeConfig(l.Path(), cfg)
}

// Path resolves the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvPrefix + "_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".pteroai", "config.json")
}

// Defaults returns the configuration written on first run.
func (l *FileLoader) Defaults() domain.Config {
	base := filepath.Join(filesystem.UserHomeDir(), ".pteroai")
	return domain.Config{
		PteroPath:             DetectInstallRoot(l.installRoots),
		BackupPath:            filepath.Join(base, "backups"),
		CachePath:             filepath.Join(base, "cache"),
		SafetyMode:            true,
		AutoBackup:            true,
		MaxBackups:            domain.DefaultMaxBackups,
		AIConfidenceThreshold: domain.DefaultConfidenceThreshold,
		RequireConfirmation:   domain.DefaultConfirmationPolicy(),
		Oracle: domain.OracleSettings{
			Provider:             domain.OracleProviderGemini,
			Model:                "gemini-2.5-flash",
			TimeoutSeconds:       int(domain.DefaultOracleTimeout.Seconds()),
			Retries:              0,
			RequestsPerMinute:    domain.DefaultRequestsPerMinute,
			Temperature:          domain.DefaultMainTemperature,
			ValidatorTemperature: domain.DefaultValidatorTemperature,
			MaxOutputTokens:      domain.DefaultMaxOutputTokens,
		},
		PromptLineLimit: domain.DefaultPromptLineLimit,
		DiffLineLimit:   domain.DefaultDiffLineLimit,
		CandidateRoots:  domain.DefaultCandidateRoots(),
		RulesFile:       filepath.Join(base, "guardrail.yaml"),
	}
}

// DetectInstallRoot returns the first candidate containing an artisan file, or
// the first candidate when none does.
func DetectInstallRoot(candidates []string) string {
	for _, root := range candidates {
		if info, err := os.Stat(filepath.Join(root, "artisan")); err == nil && !info.IsDir() {
			return root
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return domain.DefaultInstallRoots()[0]
}

// registerDefaults makes every key known to viper so env overrides apply even
// when the file omits the key.
func registerDefaults(v *viper.Viper, defaults domain.Config) {
	raw, err := json.Marshal(defaults)
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return
	}
	var walk func(prefix string, node map[string]interface{})
	walk = func(prefix string, node map[string]interface{}) {
		for key, value := range node {
			full := key
			if prefix != "" {
				full = prefix + "." + key
			}
			if child, ok := value.(map[string]interface{}); ok && key != "requireConfirmation" {
				walk(full, child)
				continue
			}
			v.SetDefault(full, value)
		}
	}
	walk("", tree)
}

func hydrateDefaults(cfg, defaults domain.Config) domain.Config {
	cfg.PteroPath = filesystem.ExpandPath(cfg.PteroPath)
	cfg.BackupPath = filesystem.ExpandPath(cfg.BackupPath)
	cfg.CachePath = filesystem.ExpandPath(cfg.CachePath)
	cfg.RulesFile = filesystem.ExpandPath(cfg.RulesFile)
	cfg.HistoryPath = filesystem.ExpandPath(cfg.HistoryPath)

	if cfg.PteroPath == "" {
		cfg.PteroPath = defaults.PteroPath
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = defaults.BackupPath
	}
	if cfg.CachePath == "" {
		cfg.CachePath = defaults.CachePath
	}
	if len(cfg.RequireConfirmation) == 0 {
		cfg.RequireConfirmation = domain.DefaultConfirmationPolicy()
	}
	return cfg
}

func writeConfig(path string, cfg domain.Config) error {
	if err := filesystem.EnsureDir(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %v: %w", err, domain.ErrConfigWrite)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %v: %w", err, domain.ErrConfigWrite)
	}
	if err := filesystem.WriteFileAtomic(path, raw, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write config %s: %v: %w", path, err, domain.ErrConfigWrite)
	}
	return nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
