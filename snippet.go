package overlay

import "sort"

// Snippet is the parsed form of a common-config snippet. It is produced by
// an adapter's ParseSnippet and is immutable: accessors return fresh copies,
// never internal state.
type Snippet struct {
	app  App
	raw  string
	tree map[string]any
}

// newSnippet builds a snippet over an already-validated tree.
func newSnippet(app App, raw string, tree map[string]any) *Snippet {
	if tree == nil {
		tree = map[string]any{}
	}
	return &Snippet{app: app, raw: raw, tree: tree}
}

// App returns the app this snippet was parsed for.
func (s *Snippet) App() App {
	return s.app
}

// Format returns the serialization format of the snippet.
func (s *Snippet) Format() Format {
	return s.app.Format()
}

// Raw returns the original snippet text as given to ParseSnippet.
func (s *Snippet) Raw() string {
	return s.raw
}

// Len returns the number of top-level keys the snippet contributes.
func (s *Snippet) Len() int {
	return len(s.tree)
}

// IsEmpty reports whether the snippet carries nothing to apply.
func (s *Snippet) IsEmpty() bool {
	return len(s.tree) == 0
}

// Get looks up a top-level key.
func (s *Snippet) Get(key string) (any, bool) {
	value, exists := s.tree[key]
	return value, exists
}

// Keys returns the snippet's top-level keys, sorted.
func (s *Snippet) Keys() []string {
	keys := make([]string, 0, len(s.tree))
	for key := range s.tree {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Object returns a deep copy of the snippet as a nested map.
func (s *Snippet) Object() map[string]any {
	return cloneTree(s.tree)
}

// Env returns the snippet as a flat string map. Keys whose values are not
// strings are omitted; for snippets parsed by the env adapter every value is
// a string, so nothing is lost there.
func (s *Snippet) Env() map[string]string {
	env := make(map[string]string, len(s.tree))
	for key, value := range s.tree {
		if str, ok := value.(string); ok {
			env[key] = str
		}
	}
	return env
}

// Extraction is the result of removing the common overlay from a final
// config. Custom holds the custom-only config serialized in the adapter's
// persisted shape; HasCommonKeys is true iff removing the overlay actually
// changed anything.
type Extraction struct {
	Custom        string
	HasCommonKeys bool
}

// ApplyResult is the result of an apply transition. Config holds the final
// config in the adapter's persisted shape; Applied is true iff the overlay
// contributed content, false when the transition was a no-op and Config is
// the custom input unchanged.
type ApplyResult struct {
	Config  string
	Applied bool
}
