package commands

import "github.com/doeshing/pteroai-go/internal/domain"

// Defaults for command flags.
const (
	DefaultHistoryLimit = domain.DefaultHistoryLimit
	DefaultStatsTop     = 5
	DefaultMetricsAddr  = ""
)

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrCacheStoreUnavailable    = "cache store unavailable"
	ErrFileFlagRequired         = "--file is required"
	ErrNewFlagRequired          = "--new is required"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No history recorded yet."
	MsgNoCachedEntries    = "No cached entries."
	MsgAborted            = "Aborted. Nothing was executed."
	MsgApproved           = "Approved. The plan may now be executed."
	MsgBlocked            = "Blocked: confirmation required but no interactive terminal is attached."
)
