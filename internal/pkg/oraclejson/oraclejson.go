// Package oraclejson turns free-form oracle text into schema-checked values.
//
// Every structured oracle response is read the same way: take the span from
// the first '{' to the last '}', decode it as JSON, then run struct-tag
// validation. Anything that fails any of the three steps is reported as
// domain.ErrOracleResponse so callers can fall back to their defaults.
package oraclejson

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/doeshing/pteroai-go/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Extract returns the text between the first '{' and the last '}' inclusive.
func Extract(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in response: %w", domain.ErrOracleResponse)
	}
	return raw[start : end+1], nil
}

// Decode extracts, unmarshals and validates raw into a value of type T.
func Decode[T any](raw string) (T, error) {
	var out T
	span, err := Extract(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return out, fmt.Errorf("decode response: %v: %w", err, domain.ErrOracleResponse)
	}
	if err := instance().Struct(out); err != nil {
		return out, fmt.Errorf("response schema: %v: %w", err, domain.ErrOracleResponse)
	}
	return out, nil
}
