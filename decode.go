// FILE: lixenwraith/overlay/decode.go
package overlay

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodeTree is the single authoritative function for decoding a parsed
// config tree into target structures. All public decoding methods delegate
// to this.
func decodeTree(tree map[string]any, basePath string, target any) error {
	// Validate target
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be non-nil pointer, got %T", target)
	}

	sectionData := navigateToPath(tree, basePath)

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			sectionMap = make(map[string]any) // Empty section
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, sectionData)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
		Metadata:         nil,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}

	return nil
}

// decodeHook returns the composite decode hook for all type conversions
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		jsonNumberToStringHookFunc(),
		stringToURLHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// jsonNumberToStringHookFunc converts numeric literals to plain strings for
// the string-based hooks below. ParseObject keeps numbers as json.Number,
// whose kind is string but whose type is not.
func jsonNumberToStringHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != reflect.TypeOf(json.Number("")) {
			return data, nil
		}
		switch {
		case t == reflect.TypeOf(time.Duration(0)),
			t == reflect.TypeOf(time.Time{}),
			t.Kind() == reflect.Slice:
			return string(data.(json.Number)), nil
		}
		return data, nil
	}
}

// stringToURLHookFunc handles url.URL conversion, so base-URL style values
// land in typed fields directly
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str, ok := data.(string)
		if !ok {
			return data, nil // json.Number also has string kind
		}
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}

// Decode unmarshals the snippet's tree into the provided struct pointer.
func (s *Snippet) Decode(target any) error {
	return decodeTree(s.tree, "", target)
}

// DecodeSection unmarshals one dotted section of the snippet's tree into
// the provided struct pointer. Missing sections decode as empty.
func (s *Snippet) DecodeSection(basePath string, target any) error {
	return decodeTree(s.tree, basePath, target)
}

// DecodeConfig parses a persisted config in the app's shape and unmarshals
// it into the provided struct pointer. For Codex the TOML payload is
// unwrapped from its envelope first; for Gemini the env map is decoded.
func DecodeConfig(app App, config string, target any) error {
	tree, err := configTree(app, config)
	if err != nil {
		return err
	}
	return decodeTree(tree, "", target)
}

// configTree parses a persisted config into a plain tree per app.
func configTree(app App, config string) (map[string]any, error) {
	switch app {
	case AppClaude:
		return parseObjectOrEmpty(config)
	case AppCodex:
		tomlText, _, _ := unwrapCodexConfig(config)
		return parseTOMLOrEmpty(tomlText)
	case AppGemini:
		env, err := unwrapEnvMap(config)
		if err != nil {
			return nil, err
		}
		tree := make(map[string]any, len(env))
		for key, value := range env {
			tree[key] = value
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
}

// navigateToPath traverses a nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	if path == "" {
		return nested
	}

	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	segments := strings.Split(path, ".")
	current := any(nested)

	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}
