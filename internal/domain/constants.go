package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for cache and config files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// CacheFreshnessWindow is how long a context cache entry stays valid
	CacheFreshnessWindow = 24 * time.Hour
	// DefaultOracleTimeout bounds a single oracle round trip
	DefaultOracleTimeout = 60 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP oracle transports
	DefaultHTTPClientTimeout = 90 * time.Second
)

// Limit constants
const (
	DefaultPromptLineLimit     = 200
	DefaultDiffLineLimit       = 50
	DefaultMaxBackups          = 100
	DefaultRequestsPerMinute   = 60
	DefaultConfidenceThreshold = 0.7
	DefaultMaxOutputTokens     = 8192
	// MaxAlternatives caps the alternatives kept on a decision
	MaxAlternatives = 3
	// SystemScanDepth bounds the install-root walk
	SystemScanDepth = 4
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// InteractiveHistoryLimit is what the REPL `history` command shows
	InteractiveHistoryLimit = 10
)

// File names and cache keys
const (
	CacheFileName      = "context_cache.json"
	HistoryFileName    = "history.db"
	SystemAnalysisKey  = "full_system_analysis"
	RequestCachePrefix = "request_"
)

// Oracle temperatures per role.
const (
	DefaultMainTemperature      = 0.2
	DefaultValidatorTemperature = 0.1
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)

// DefaultInstallRoots are probed in order for an installation marker.
func DefaultInstallRoots() []string {
	return []string{"/var/www/pterodactyl", "/var/www/panel", "/var/www/reviactyl"}
}

// DefaultCandidateRoots are the root-relative directories probed for request targets.
func DefaultCandidateRoots() []string {
	return []string{"", "resources/scripts", "resources/scripts/components", "app/Http/Controllers"}
}

// SystemScanSkipDirs are never descended into when snapshotting the install root.
func SystemScanSkipDirs() []string {
	return []string{"vendor", "node_modules", ".git", "storage"}
}
