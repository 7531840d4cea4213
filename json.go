package overlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseObject parses text as a single JSON object literal. The root must be
// an object: arrays, null, and primitives are rejected with a FormatError,
// as is trailing content after the first value. Numbers are decoded as
// json.Number so numeric literals survive a parse/serialize round trip
// without precision loss.
func ParseObject(text string) (map[string]any, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber() // Preserve number precision

	var root any
	if err := decoder.Decode(&root); err != nil {
		return nil, &FormatError{Format: FormatJSON, Err: err}
	}
	if decoder.More() {
		return nil, &FormatError{Format: FormatJSON, Err: errors.New("trailing content after JSON value")}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &FormatError{
			Format: FormatJSON,
			Err:    fmt.Errorf("%w, got %s", errNotAnObject, jsonTypeName(root)),
		}
	}
	return obj, nil
}

// IsPlainObject reports whether a decoded JSON value is an object literal.
func IsPlainObject(value any) bool {
	_, ok := value.(map[string]any)
	return ok
}

// jsonTypeName names a decoded JSON value's type for error messages.
func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// jsonAdapter binds the plain-object merge primitives to JSON settings
// documents. Custom and final configs are pretty-printed JSON objects.
type jsonAdapter struct {
	defaultSnippet string
	legacyKey      string
}

func (a *jsonAdapter) App() App { return AppClaude }

func (a *jsonAdapter) Format() Format { return FormatJSON }

func (a *jsonAdapter) DefaultSnippet() string { return a.defaultSnippet }

func (a *jsonAdapter) LegacyStorageKey() string { return a.legacyKey }

// ParseSnippet parses a JSON snippet all-or-nothing. Blank text is a valid,
// empty snippet; anything else must be a JSON object literal.
func (a *jsonAdapter) ParseSnippet(text string) (*Snippet, error) {
	if strings.TrimSpace(text) == "" {
		return newSnippet(AppClaude, text, nil), nil
	}

	obj, err := ParseObject(text)
	if err != nil {
		return nil, err
	}
	return newSnippet(AppClaude, text, obj), nil
}

// HasContent reports whether text is a parseable, non-empty JSON object.
func (a *jsonAdapter) HasContent(text string) bool {
	snippet, err := a.ParseSnippet(text)
	return err == nil && !snippet.IsEmpty()
}

// ApplyError returns a translated message when the snippet cannot be
// applied, or an empty string when it is safe.
func (a *jsonAdapter) ApplyError(text string, translate TranslateFunc) string {
	if translate == nil {
		translate = defaultTranslate
	}

	snippet, err := a.ParseSnippet(text)
	if err != nil {
		if errors.Is(err, errNotAnObject) {
			return translate(MsgNotAnObject, nil)
		}
		return translate(MsgInvalidJSON, nil)
	}
	if snippet.IsEmpty() {
		return translate(MsgSnippetEmpty, nil)
	}
	return ""
}

// ComputeFinal merges the common snippet into the custom JSON config. When
// disabled, or when common is blank or empty, custom is returned verbatim.
// On any parse failure the original custom is returned together with the
// error, never a partial or empty document.
func (a *jsonAdapter) ComputeFinal(custom, common string, enabled bool) (string, error) {
	if !enabled {
		return custom, nil
	}
	if strings.TrimSpace(common) == "" {
		return custom, nil
	}

	commonObj, err := ParseObject(common)
	if err != nil {
		return custom, err
	}
	if len(commonObj) == 0 {
		return custom, nil
	}

	customObj, err := parseObjectOrEmpty(custom)
	if err != nil {
		return custom, err
	}

	final, err := encodeJSONIndent(MergeObjects(customObj, commonObj))
	if err != nil {
		return custom, err
	}
	return final, nil
}

// ExtractDiff removes the snippet's contribution from a final JSON config.
// Keys are dropped only when their values deep-equal the snippet's; when
// nothing matches, the input text is returned untouched.
func (a *jsonAdapter) ExtractDiff(custom, common string) (Extraction, error) {
	unchanged := Extraction{Custom: custom, HasCommonKeys: false}

	if strings.TrimSpace(common) == "" {
		return unchanged, nil
	}

	commonObj, err := ParseObject(common)
	if err != nil {
		return unchanged, err
	}
	if len(commonObj) == 0 {
		return unchanged, nil
	}

	customObj, err := parseObjectOrEmpty(custom)
	if err != nil {
		return unchanged, err
	}

	remainder, removed := ExtractObjectDiff(customObj, commonObj)
	if !removed {
		return unchanged, nil
	}

	out, err := encodeJSONIndent(remainder)
	if err != nil {
		return unchanged, err
	}
	return Extraction{Custom: out, HasCommonKeys: true}, nil
}

// parseObjectOrEmpty treats blank text as an empty object, so a provider
// with no config yet can still receive an overlay.
func parseObjectOrEmpty(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}
	return ParseObject(text)
}
