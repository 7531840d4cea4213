package overlay

import (
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DetectFormat guesses the grammar of free-form text by parse probing and
// returns "json", "yaml", "toml", or "" when nothing parses. The probe
// order matters: YAML is a superset of JSON, and its plain scalars accept
// almost any text, so it sits between the strict and lenient grammars.
func DetectFormat(text string) string {
	data := []byte(text)

	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try YAML (superset of JSON, so check after JSON)
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	// Try TOML last
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}

// SnippetFormatHint reports the detected grammar of snippet text when it
// clearly disagrees with what the app's editor expects, so the UI can warn
// about a wrong-editor paste. "" means no usable hint: blank input, a
// matching grammar, or an inconclusive result. A YAML match is treated as
// inconclusive because YAML scalars swallow nearly anything.
func SnippetFormatHint(app App, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	detected := DetectFormat(text)
	if detected == "" || detected == "yaml" {
		return ""
	}

	// Env snippets are JSON-expressed, so only Codex expects TOML.
	expected := "json"
	if app.Format() == FormatTOML {
		expected = "toml"
	}

	if detected == expected {
		return ""
	}
	return detected
}
