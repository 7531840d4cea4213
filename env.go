// File: lixenwraith/overlay/env.go
package overlay

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// DefaultForbiddenEnvKeys returns the standard deny list for env snippets:
// the active API key and base-URL variables the provider-switching layer
// manages itself. A snippet must not smuggle these in behind its back.
func DefaultForbiddenEnvKeys() []string {
	return []string{
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_AUTH_TOKEN",
		"ANTHROPIC_BASE_URL",
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_BASE_URL",
	}
}

// forbiddenKeySet builds the lookup set for a deny list.
func forbiddenKeySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		set[key] = true
	}
	return set
}

// ParseEnvSnippet parses an env overlay snippet, expressed as a JSON object
// whose values must all be strings, into a flat string map. Validation is
// wholesale: a single forbidden key or non-string value rejects the entire
// snippet with a ValidationError listing every offender; the valid subset
// is never partially admitted. Blank text is a valid, empty map.
func ParseEnvSnippet(text string, forbidden map[string]bool) (map[string]string, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]string{}, nil
	}

	obj, err := ParseObject(text)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			return nil, &FormatError{Format: FormatEnv, Err: fe.Err}
		}
		return nil, err
	}

	var forbiddenHits, nonStringKeys []string
	env := make(map[string]string, len(obj))

	for key, value := range obj {
		if forbidden[key] {
			forbiddenHits = append(forbiddenHits, key)
			continue
		}
		str, ok := value.(string)
		if !ok {
			nonStringKeys = append(nonStringKeys, key)
			continue
		}
		env[key] = str
	}

	if len(forbiddenHits) > 0 || len(nonStringKeys) > 0 {
		sort.Strings(forbiddenHits)
		sort.Strings(nonStringKeys)
		return nil, &ValidationError{ForbiddenKeys: forbiddenHits, NonStringKeys: nonStringKeys}
	}

	return env, nil
}

// envAdapter binds the string-map merge primitives to Gemini configs. The
// persisted shape is a JSON {env: {...}} envelope; snippet validation
// enforces the forbidden-key deny list and string-only values.
type envAdapter struct {
	defaultSnippet string
	legacyKey      string
	forbidden      map[string]bool
}

func (a *envAdapter) App() App { return AppGemini }

func (a *envAdapter) Format() Format { return FormatEnv }

func (a *envAdapter) DefaultSnippet() string { return a.defaultSnippet }

func (a *envAdapter) LegacyStorageKey() string { return a.legacyKey }

// ParseSnippet parses and validates an env snippet all-or-nothing.
func (a *envAdapter) ParseSnippet(text string) (*Snippet, error) {
	env, err := ParseEnvSnippet(text, a.forbidden)
	if err != nil {
		return nil, err
	}

	tree := make(map[string]any, len(env))
	for key, value := range env {
		tree[key] = value
	}
	return newSnippet(AppGemini, text, tree), nil
}

// HasContent reports whether text parses, validates, and carries at least
// one variable.
func (a *envAdapter) HasContent(text string) bool {
	snippet, err := a.ParseSnippet(text)
	return err == nil && !snippet.IsEmpty()
}

// ApplyError returns a translated message when the snippet cannot be
// applied, or an empty string when it is safe.
func (a *envAdapter) ApplyError(text string, translate TranslateFunc) string {
	if translate == nil {
		translate = defaultTranslate
	}

	snippet, err := a.ParseSnippet(text)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			if len(ve.ForbiddenKeys) > 0 {
				return translate(MsgForbiddenKeys, map[string]string{
					"keys": strings.Join(ve.ForbiddenKeys, ", "),
					"code": ve.Code(),
				})
			}
			return translate(MsgNonStringValue, map[string]string{
				"keys": strings.Join(ve.NonStringKeys, ", "),
			})
		}
		if errors.Is(err, errNotAnObject) {
			return translate(MsgNotAnObject, nil)
		}
		return translate(MsgInvalidEnv, nil)
	}
	if snippet.IsEmpty() {
		return translate(MsgSnippetEmpty, nil)
	}
	return ""
}

// ComputeFinal merges the snippet's variables into the custom env map,
// custom winning per key, and re-wraps the {env} envelope. Disabled, blank,
// or empty overlays leave custom untouched; so does any parse or
// validation failure, which is returned alongside the original.
func (a *envAdapter) ComputeFinal(custom, common string, enabled bool) (string, error) {
	if !enabled {
		return custom, nil
	}
	if strings.TrimSpace(common) == "" {
		return custom, nil
	}

	commonEnv, err := ParseEnvSnippet(common, a.forbidden)
	if err != nil {
		return custom, err
	}
	if len(commonEnv) == 0 {
		return custom, nil
	}

	customEnv, err := unwrapEnvMap(custom)
	if err != nil {
		return custom, err
	}

	out, err := wrapEnvMap(mergeStringMaps(customEnv, commonEnv))
	if err != nil {
		return custom, err
	}
	return out, nil
}

// ExtractDiff removes the snippet's variables from a final env config,
// dropping a key only when its value matches the snippet's exactly.
func (a *envAdapter) ExtractDiff(custom, common string) (Extraction, error) {
	unchanged := Extraction{Custom: custom, HasCommonKeys: false}

	if strings.TrimSpace(common) == "" {
		return unchanged, nil
	}

	commonEnv, err := ParseEnvSnippet(common, a.forbidden)
	if err != nil {
		return unchanged, err
	}
	if len(commonEnv) == 0 {
		return unchanged, nil
	}

	customEnv, err := unwrapEnvMap(custom)
	if err != nil {
		return unchanged, err
	}

	remainder, removed := extractStringMapDiff(customEnv, commonEnv)
	if !removed {
		return unchanged, nil
	}

	out, err := wrapEnvMap(remainder)
	if err != nil {
		return unchanged, err
	}
	return Extraction{Custom: out, HasCommonKeys: true}, nil
}

// ParseEnvFile reads a line-based KEY=VALUE env file into a string map.
// Blank lines, comments, and lines without '=' are skipped; an optional
// "export " prefix is tolerated; surrounding double quotes are stripped.
func ParseEnvFile(text string) map[string]string {
	env := make(map[string]string)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "export ")

		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		env[key] = unquoteEnvValue(strings.TrimSpace(value))
	}

	return env
}

// FormatEnvFile renders a string map as line-based KEY=VALUE text with
// keys sorted, so the same map always serializes identically. Values that
// would break the line grammar are quoted.
func FormatEnvFile(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(quoteEnvValue(env[key]))
		b.WriteString("\n")
	}
	return b.String()
}

// quoteEnvValue quotes a value when it contains characters the line
// grammar cannot carry verbatim.
func quoteEnvValue(value string) string {
	if strings.ContainsAny(value, " \t\n#\"") {
		return strconv.Quote(value)
	}
	return value
}

// unquoteEnvValue reverses quoteEnvValue; a malformed quoted value falls
// back to stripping the outer quotes.
func unquoteEnvValue(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
		return value[1 : len(value)-1]
	}
	return value
}
