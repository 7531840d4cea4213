// FILE: lixenwraith/overlay/toml.go
package overlay

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
)

// ParseTOML parses TOML text into a nested map. It never panics; invalid
// syntax yields a nil map and a FormatError carrying the parser's error.
func ParseTOML(text string) (map[string]any, error) {
	tree := make(map[string]any)
	if err := toml.Unmarshal([]byte(text), &tree); err != nil {
		return nil, &FormatError{Format: FormatTOML, Err: err}
	}
	return tree, nil
}

// HasTOMLContent reports whether text has at least one line that is neither
// blank nor a comment. The check is line-based and runs before any parse,
// so it distinguishes "nothing to apply" from "syntax error": invalid TOML
// with real lines still counts as content.
func HasTOMLContent(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return true
	}
	return false
}

// EncodeTOML serializes a nested map to TOML text. Scalar keys are emitted
// before tables, sorted, so output is deterministic for a given tree.
func EncodeTOML(tree map[string]any) (string, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(tree); err != nil {
		return "", &FormatError{Format: FormatTOML, Err: err}
	}
	return buf.String(), nil
}

// ComputeFinalTOML merges the common TOML document into the custom one at
// top-level-key granularity, custom winning per key. When disabled, or when
// common has no content, custom is returned verbatim. If either side fails
// to parse, the original custom comes back together with the error, never
// an empty or partially merged document.
func ComputeFinalTOML(custom, common string, enabled bool) (string, error) {
	if !enabled || !HasTOMLContent(common) {
		return custom, nil
	}

	commonTree, err := ParseTOML(common)
	if err != nil {
		return custom, err
	}

	customTree, err := parseTOMLOrEmpty(custom)
	if err != nil {
		return custom, err
	}

	final, err := EncodeTOML(MergeObjects(customTree, commonTree))
	if err != nil {
		return custom, err
	}
	return final, nil
}

// ExtractTOMLDiff removes from custom every top-level key whose value
// deep-equals the one in common, returning the remaining TOML text and
// whether anything was removed. Same fail-soft rule as ComputeFinalTOML:
// on parse failure the original custom text is returned with the error.
func ExtractTOMLDiff(custom, common string) (string, bool, error) {
	if !HasTOMLContent(common) {
		return custom, false, nil
	}

	commonTree, err := ParseTOML(common)
	if err != nil {
		return custom, false, err
	}

	customTree, err := parseTOMLOrEmpty(custom)
	if err != nil {
		return custom, false, err
	}

	remainder, removed := ExtractObjectDiff(customTree, commonTree)
	if !removed {
		return custom, false, nil
	}

	out, err := EncodeTOML(remainder)
	if err != nil {
		return custom, false, err
	}
	return out, true, nil
}

// parseTOMLOrEmpty treats blank or comment-only text as an empty document.
func parseTOMLOrEmpty(text string) (map[string]any, error) {
	if !HasTOMLContent(text) {
		return map[string]any{}, nil
	}
	return ParseTOML(text)
}

// tomlAdapter binds the TOML merge primitives to Codex configs. A custom
// config arrives either as bare TOML text or wrapped in a JSON envelope
// with a sibling auth field; the envelope is unwrapped before merging and
// rebuilt, auth preserved, on the way out.
type tomlAdapter struct {
	defaultSnippet string
	legacyKey      string
}

func (a *tomlAdapter) App() App { return AppCodex }

func (a *tomlAdapter) Format() Format { return FormatTOML }

func (a *tomlAdapter) DefaultSnippet() string { return a.defaultSnippet }

func (a *tomlAdapter) LegacyStorageKey() string { return a.legacyKey }

// ParseSnippet parses a TOML snippet all-or-nothing. Blank or comment-only
// text is a valid, empty snippet.
func (a *tomlAdapter) ParseSnippet(text string) (*Snippet, error) {
	if !HasTOMLContent(text) {
		return newSnippet(AppCodex, text, nil), nil
	}

	tree, err := ParseTOML(text)
	if err != nil {
		return nil, err
	}
	return newSnippet(AppCodex, text, tree), nil
}

// HasContent is the pre-parse line check: true for any non-blank,
// non-comment line, even when the document does not parse.
func (a *tomlAdapter) HasContent(text string) bool {
	return HasTOMLContent(text)
}

// ApplyError returns a translated message when the snippet cannot be
// applied, or an empty string when it is safe.
func (a *tomlAdapter) ApplyError(text string, translate TranslateFunc) string {
	if translate == nil {
		translate = defaultTranslate
	}

	snippet, err := a.ParseSnippet(text)
	if err != nil {
		return translate(MsgInvalidTOML, nil)
	}
	if snippet.IsEmpty() {
		return translate(MsgSnippetEmpty, nil)
	}
	return ""
}

// ComputeFinal merges the common snippet into the custom Codex config,
// unwrapping and rebuilding the JSON envelope when present.
func (a *tomlAdapter) ComputeFinal(custom, common string, enabled bool) (string, error) {
	if !enabled || !HasTOMLContent(common) {
		return custom, nil
	}

	tomlText, envelope, wrapped := unwrapCodexConfig(custom)

	final, err := ComputeFinalTOML(tomlText, common, true)
	if err != nil {
		return custom, err
	}
	if !wrapped {
		return final, nil
	}

	out, err := wrapCodexConfig(envelope, final)
	if err != nil {
		return custom, err
	}
	return out, nil
}

// ExtractDiff removes the snippet's contribution from a final Codex config,
// preserving the envelope and its auth field when present.
func (a *tomlAdapter) ExtractDiff(custom, common string) (Extraction, error) {
	unchanged := Extraction{Custom: custom, HasCommonKeys: false}

	tomlText, envelope, wrapped := unwrapCodexConfig(custom)

	remainder, removed, err := ExtractTOMLDiff(tomlText, common)
	if err != nil {
		return unchanged, err
	}
	if !removed {
		return unchanged, nil
	}
	if !wrapped {
		return Extraction{Custom: remainder, HasCommonKeys: true}, nil
	}

	out, err := wrapCodexConfig(envelope, remainder)
	if err != nil {
		return unchanged, err
	}
	return Extraction{Custom: out, HasCommonKeys: true}, nil
}
