package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// ErrUnknownKey is returned when a dotted key path names no configuration field.
var ErrUnknownKey = errors.New("unknown configuration key")

const policyKey = "requireConfirmation"

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateLimits(cfg); err != nil {
		return err
	}
	return validateOracle(cfg.Oracle)
}

func validateLimits(cfg domain.Config) error {
	limits := []struct {
		name  string
		value int
	}{
		{"maxBackups", cfg.MaxBackups},
		{"promptLineLimit", cfg.PromptLineLimit},
		{"diffLineLimit", cfg.DiffLineLimit},
	}
	for _, limit := range limits {
		if limit.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", limit.name, limit.value)
		}
	}
	return nil
}

func validateOracle(oracle domain.OracleSettings) error {
	if oracle.TimeoutSeconds < 0 {
		return fmt.Errorf("oracle.timeoutSeconds must be >= 0")
	}
	if oracle.RequestsPerMinute < 0 {
		return fmt.Errorf("oracle.requestsPerMinute must be >= 0")
	}
	if oracle.MaxOutputTokens < 0 {
		return fmt.Errorf("oracle.maxOutputTokens must be >= 0")
	}
	for name, temp := range map[string]float64{
		"oracle.temperature":          oracle.Temperature,
		"oracle.validatorTemperature": oracle.ValidatorTemperature,
	} {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("%s %.2f is outside [0,2]", name, temp)
		}
	}
	return nil
}

// GetValue returns the value at a dotted key path such as "oracle.provider".
func GetValue(cfg domain.Config, key string) (interface{}, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return nil, err
	}
	var node interface{} = tree
	for _, part := range splitKey(key) {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		next, ok := m[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		node = next
	}
	return node, nil
}

// SetValue returns a copy of cfg with the dotted key set to raw. raw accepts
// YAML syntax, so "false", "0.8" and "[a, b]" decode to their typed values and
// anything unparsable is taken as a literal string. The result is validated.
func SetValue(cfg domain.Config, key, raw string) (domain.Config, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return domain.Config{}, err
	}
	path := splitKey(key)
	if len(path) == 0 {
		return domain.Config{}, fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	if err := setNested(tree, path, parseValue(raw)); err != nil {
		return domain.Config{}, err
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return domain.Config{}, fmt.Errorf("encode configuration: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var updated domain.Config
	if err := dec.Decode(&updated); err != nil {
		return domain.Config{}, fmt.Errorf("set %s: %w", key, err)
	}
	if err := Validate(updated); err != nil {
		return domain.Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return updated, nil
}

func toTree(cfg domain.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return tree, nil
}

func splitKey(key string) []string {
	key = strings.Trim(strings.TrimSpace(key), ".")
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

// setNested only replaces existing leaves, except under requireConfirmation
// where a level may be added.
func setNested(root map[string]interface{}, path []string, value interface{}) error {
	current := root
	for i, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			if part == policyKey && i == 0 {
				next = map[string]interface{}{}
				current[part] = next
			} else {
				return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(path, "."))
			}
		}
		current = next
	}
	leaf := path[len(path)-1]
	if _, ok := current[leaf]; !ok && !(len(path) == 2 && path[0] == policyKey) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(path, "."))
	}
	current[leaf] = value
	return nil
}

func parseValue(raw string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil || parsed == nil {
		return raw
	}
	return parsed
}
