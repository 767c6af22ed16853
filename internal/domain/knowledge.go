package domain

import (
	"fmt"
	"time"
)

// Symbol is a named structural element and the 1-based line it was found on.
type Symbol struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// FileStructure is the result of line scanning a source file.
type FileStructure struct {
	Functions  []Symbol `json:"functions"`
	Classes    []Symbol `json:"classes"`
	Imports    []Symbol `json:"imports"`
	Exports    []Symbol `json:"exports"`
	Components []Symbol `json:"components"`
	Hooks      []Symbol `json:"hooks"`
	Summary    string   `json:"summary"`
}

// DeepAnalysis is the oracle-derived understanding of a file.
type DeepAnalysis struct {
	Purpose            string   `json:"purpose"`
	MainComponents     []string `json:"mainComponents"`
	KeyFunctions       []string `json:"keyFunctions"`
	StateManagement    string   `json:"stateManagement"`
	Dependencies       []string `json:"dependencies"`
	ComplexityLevel    string   `json:"complexityLevel" validate:"omitempty,oneof=low medium high"`
	SafeEditZones      []string `json:"safeEditZones"`
	DangerZones        []string `json:"dangerZones"`
	Recommendations    []string `json:"recommendations"`
	UnderstandingScore float64  `json:"understandingScore" validate:"gte=0,lte=1"`
	Degraded           bool     `json:"degraded,omitempty"`
}

// DegradedAnalysis is recorded when the oracle cannot produce a usable analysis.
func DegradedAnalysis() DeepAnalysis {
	return DeepAnalysis{
		Purpose:            "undetermined",
		UnderstandingScore: 0.3,
		Degraded:           true,
	}
}

// KnowledgeErrorKind tags why a file could not be analyzed.
type KnowledgeErrorKind string

const (
	KnowledgeNotFound  KnowledgeErrorKind = "not_found"
	KnowledgeReadError KnowledgeErrorKind = "read_error"
)

// KnowledgeError is carried inside FileKnowledge instead of being returned.
type KnowledgeError struct {
	Kind    KnowledgeErrorKind `json:"kind"`
	Message string             `json:"message"`
}

func (e *KnowledgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap maps the kind onto the package sentinels for errors.Is.
func (e *KnowledgeError) Unwrap() error {
	if e.Kind == KnowledgeNotFound {
		return ErrFileNotFound
	}
	return ErrReadFailed
}

// FileKnowledge is everything known about a single file path.
type FileKnowledge struct {
	Path         string          `json:"path"`
	Language     string          `json:"language"`
	TotalLines   int             `json:"totalLines"`
	Structure    FileStructure   `json:"structure"`
	DeepAnalysis DeepAnalysis    `json:"deepAnalysis"`
	Timestamp    time.Time       `json:"timestamp"`
	Error        *KnowledgeError `json:"error,omitempty"`
}

// Failed reports whether the record is an error variant.
func (k FileKnowledge) Failed() bool {
	return k.Error != nil
}
