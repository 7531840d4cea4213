package overlay

import "fmt"

// App identifies one of the three tools a common config can target.
type App string

const (
	// AppClaude targets the JSON settings object.
	AppClaude App = "claude"
	// AppCodex targets the TOML config document.
	AppCodex App = "codex"
	// AppGemini targets the flat environment-variable map.
	AppGemini App = "gemini"
)

// Format identifies the serialization grammar an adapter operates on.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatEnv  Format = "env"
)

// Format returns the grammar the app's config is written in.
func (a App) Format() Format {
	switch a {
	case AppClaude:
		return FormatJSON
	case AppCodex:
		return FormatTOML
	case AppGemini:
		return FormatEnv
	default:
		return ""
	}
}

// Apps returns the closed set of supported apps.
func Apps() []App {
	return []App{AppClaude, AppCodex, AppGemini}
}

// Adapter binds one format's parse, merge, diff, and serialize primitives
// behind the contract shared by all three apps. Implementations are pure:
// no I/O, no shared mutable state, fresh allocations on every call, so a
// single adapter value is safe for concurrent use.
type Adapter interface {
	// App returns the app this adapter serves.
	App() App
	// Format returns the grammar this adapter operates on.
	Format() Format
	// DefaultSnippet returns the snippet template offered to new users.
	DefaultSnippet() string
	// LegacyStorageKey returns the storage key older releases persisted
	// the snippet under. Migration code reads it; nothing else does.
	LegacyStorageKey() string

	// ParseSnippet parses snippet text all-or-nothing: a *Snippet on
	// success, nil plus a FormatError or ValidationError on failure.
	// Blank (or comment-only, for TOML) text is a valid empty snippet.
	ParseSnippet(text string) (*Snippet, error)
	// HasContent reports whether text carries anything to apply; used to
	// short-circuit transitions when there is nothing to do.
	HasContent(text string) bool
	// ApplyError renders the reason text cannot be applied through the
	// given translator, or returns "" when applying is safe.
	ApplyError(text string, translate TranslateFunc) string
	// ComputeFinal merges common into custom when enabled. It fails soft:
	// whenever the overlay is disabled, empty, or broken, custom comes
	// back unchanged (with the error when there is one), never a partial
	// or empty document.
	ComputeFinal(custom, common string, enabled bool) (string, error)
	// ExtractDiff removes common's contribution from custom, reporting
	// whether anything was removed. Same fail-soft rule as ComputeFinal.
	ExtractDiff(custom, common string) (Extraction, error)
}

// Default snippet templates. Each parses cleanly and contributes nothing,
// so a freshly enabled overlay stays a no-op until the user edits it.
const (
	defaultJSONSnippet = "{}"
	defaultTOMLSnippet = `# Common Codex settings applied to every provider.
# model = "gpt-5"
# approval_policy = "on-request"
`
	defaultEnvSnippet = "{}"
)

// Storage keys earlier releases kept per-app snippets under.
const (
	legacyKeyClaude = "claude-common-config"
	legacyKeyCodex  = "codex-common-config"
	legacyKeyGemini = "gemini-common-config"
)

// AdapterFor returns the stock adapter for an app. The adapter set is
// closed: three formats, fixed at compile time, no runtime registration.
func AdapterFor(app App) (Adapter, error) {
	switch app {
	case AppClaude:
		return newJSONAdapter(), nil
	case AppCodex:
		return newTOMLAdapter(), nil
	case AppGemini:
		return newEnvAdapter(DefaultForbiddenEnvKeys()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
}

func newJSONAdapter() *jsonAdapter {
	return &jsonAdapter{
		defaultSnippet: defaultJSONSnippet,
		legacyKey:      legacyKeyClaude,
	}
}

func newTOMLAdapter() *tomlAdapter {
	return &tomlAdapter{
		defaultSnippet: defaultTOMLSnippet,
		legacyKey:      legacyKeyCodex,
	}
}

func newEnvAdapter(forbidden []string) *envAdapter {
	return &envAdapter{
		defaultSnippet: defaultEnvSnippet,
		legacyKey:      legacyKeyGemini,
		forbidden:      forbiddenKeySet(forbidden),
	}
}
