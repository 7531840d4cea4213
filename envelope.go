// File: lixenwraith/overlay/envelope.go
package overlay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// encodeJSONIndent renders a value as pretty-printed JSON with two-space
// indentation, the shape settings objects are persisted in. Map keys are
// emitted sorted, so output is deterministic.
func encodeJSONIndent(value any) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return string(data), nil
}

// unwrapCodexConfig splits a persisted Codex config into its TOML payload
// and, when the config is a JSON envelope ({auth, config}), the envelope
// itself so sibling fields survive the round trip. Bare TOML text passes
// through untouched.
func unwrapCodexConfig(text string) (tomlText string, envelope map[string]any, wrapped bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return text, nil, false
	}

	obj, err := ParseObject(text)
	if err != nil {
		return text, nil, false
	}

	payload, exists := obj["config"]
	if !exists {
		// Envelope without a TOML payload yet; merge starts from empty.
		return "", obj, true
	}
	str, ok := payload.(string)
	if !ok {
		return text, nil, false
	}
	return str, obj, true
}

// wrapCodexConfig rebuilds the {auth, config} envelope around TOML text,
// keeping every sibling field the envelope carried in.
func wrapCodexConfig(envelope map[string]any, tomlText string) (string, error) {
	out := cloneTree(envelope)
	out["config"] = tomlText

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode config envelope: %w", err)
	}
	return string(data), nil
}

// wrapEnvMap renders a flat env map in its persisted {env: {...}} shape.
func wrapEnvMap(env map[string]string) (string, error) {
	data, err := json.Marshal(map[string]any{"env": env})
	if err != nil {
		return "", fmt.Errorf("failed to encode env envelope: %w", err)
	}
	return string(data), nil
}

// unwrapEnvMap reads a persisted Gemini config back into a flat string
// map. Both the {env: {...}} envelope and a bare object are accepted;
// non-string values are dropped rather than propagated, since the
// consuming format only carries strings. Blank text is an empty map.
func unwrapEnvMap(text string) (map[string]string, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]string{}, nil
	}

	obj, err := ParseObject(text)
	if err != nil {
		return nil, err
	}

	if inner, exists := obj["env"]; exists {
		innerObj, ok := inner.(map[string]any)
		if !ok {
			return nil, &FormatError{
				Format: FormatEnv,
				Err:    fmt.Errorf("env field is %s, not an object", jsonTypeName(inner)),
			}
		}
		return stringValues(innerObj), nil
	}
	return stringValues(obj), nil
}

// stringValues keeps only the string-valued entries of an object.
func stringValues(obj map[string]any) map[string]string {
	env := make(map[string]string, len(obj))
	for key, value := range obj {
		if str, ok := value.(string); ok {
			env[key] = str
		}
	}
	return env
}
