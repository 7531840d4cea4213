package overlay

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by engine operations.
var (
	// ErrUnknownApp is returned when an adapter is requested for an app
	// outside the fixed {Claude, Codex, Gemini} set.
	ErrUnknownApp = errors.New("unknown app")

	// ErrEmptyOverlay signals that a snippet is syntactically fine but
	// carries nothing to apply (blank, comments-only, or an empty object).
	// Transitions that receive it are no-ops, not failures; callers may
	// test for it with errors.Is and proceed.
	ErrEmptyOverlay = errors.New("common config snippet has no content")
)

// errNotAnObject distinguishes a shape failure (valid JSON, wrong root type)
// from a syntax failure inside a FormatError chain.
var errNotAnObject = errors.New("root must be a JSON object")

// ForbiddenKeysCodePrefix prefixes the machine-readable code carried by a
// ValidationError for forbidden-key violations. The key list follows the
// colon, comma-separated.
const ForbiddenKeysCodePrefix = "FORBIDDEN_KEYS:"

// Message keys handed to the injected TranslateFunc. The engine emits only
// these codes; rendering them into user-facing text belongs to the caller.
const (
	MsgSnippetEmpty   = "common_config.snippet_empty"
	MsgInvalidJSON    = "common_config.invalid_json"
	MsgInvalidTOML    = "common_config.invalid_toml"
	MsgInvalidEnv     = "common_config.invalid_env"
	MsgNotAnObject    = "common_config.not_an_object"
	MsgNonStringValue = "common_config.non_string_value"
	MsgForbiddenKeys  = "common_config.forbidden_keys"
)

// TranslateFunc renders a message key and its parameters into user-facing
// text. It is injected by the caller; the engine never hardcodes messages.
type TranslateFunc func(key string, params map[string]string) string

// defaultTranslate is used when no translator is configured. It renders the
// key and, deterministically, any parameters, so tests and logs stay stable.
func defaultTranslate(key string, params map[string]string) string {
	if len(params) == 0 {
		return key
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(key)
	b.WriteString(" (")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(params[name])
	}
	b.WriteString(")")
	return b.String()
}

// FormatError reports that a snippet or config is not valid in its format:
// not parseable JSON or TOML, or a JSON root that is not an object. It is
// always produced before any merge, so the custom config is never touched.
type FormatError struct {
	// Format is the grammar the text failed to satisfy.
	Format Format
	// Err is the underlying parser error, if any.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s document", e.Format)
	}
	return fmt.Sprintf("invalid %s document: %v", e.Format, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// ValidationError reports env snippet violations: keys on the forbidden
// list, or values that are not strings. The snippet is rejected wholesale;
// all offenders are listed, none are partially admitted.
type ValidationError struct {
	// ForbiddenKeys lists snippet keys on the deny list, sorted.
	ForbiddenKeys []string
	// NonStringKeys lists snippet keys whose values are not strings, sorted.
	NonStringKeys []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.ForbiddenKeys) > 0 {
		parts = append(parts, "forbidden env keys: "+strings.Join(e.ForbiddenKeys, ", "))
	}
	if len(e.NonStringKeys) > 0 {
		parts = append(parts, "non-string env values: "+strings.Join(e.NonStringKeys, ", "))
	}
	if len(parts) == 0 {
		return "invalid env snippet"
	}
	return strings.Join(parts, "; ")
}

// Code returns the machine-readable code for forbidden-key violations
// ("FORBIDDEN_KEYS:" followed by the comma-separated key list), or an empty
// string when no forbidden keys were hit.
func (e *ValidationError) Code() string {
	if len(e.ForbiddenKeys) == 0 {
		return ""
	}
	return ForbiddenKeysCodePrefix + strings.Join(e.ForbiddenKeys, ", ")
}
