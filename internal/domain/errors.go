package domain

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrReadFailed        = errors.New("file read failed")
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrOracleResponse marks a response with no parseable or schema-conforming JSON object.
	ErrOracleResponse   = errors.New("oracle response not conforming")
	ErrCachePersist     = errors.New("context cache persist failed")
	ErrConfigWrite      = errors.New("config write failed")
	ErrRequestAbandoned = errors.New("request abandoned")
	// ErrPlanBlocked is returned when a gated decision is not confirmed.
	ErrPlanBlocked = errors.New("plan blocked by confirmation policy")
)
