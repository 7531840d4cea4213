package overlay

import "fmt"

// Controller orchestrates overlay transitions across the three apps. It
// holds one adapter per app plus the injected translator, is immutable
// after construction, and is safe for concurrent use: every operation is
// pure and allocates fresh output. The caller owns serialization of
// read-modify-write per provider; two overlapping transitions for the same
// provider must not interleave at the store.
type Controller struct {
	adapters  map[App]Adapter
	translate TranslateFunc
}

// New creates a Controller with stock adapters and the default translator.
func New() *Controller {
	return &Controller{
		adapters: map[App]Adapter{
			AppClaude: newJSONAdapter(),
			AppCodex:  newTOMLAdapter(),
			AppGemini: newEnvAdapter(DefaultForbiddenEnvKeys()),
		},
		translate: defaultTranslate,
	}
}

// Adapter returns the adapter serving an app.
func (c *Controller) Adapter(app App) (Adapter, error) {
	adapter, exists := c.adapters[app]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, app)
	}
	return adapter, nil
}

// Apply runs the disabled-to-enabled transition: validate the snippet,
// merge it into the custom config, and return the final config to write.
// The transition is all-or-nothing: on any validation or merge failure
// the result carries the custom config unchanged alongside the error. An
// empty snippet is a no-op reported as ErrEmptyOverlay, which callers may
// treat as informational.
func (c *Controller) Apply(app App, custom, snippet string) (ApplyResult, error) {
	unchanged := ApplyResult{Config: custom, Applied: false}

	adapter, err := c.Adapter(app)
	if err != nil {
		return unchanged, err
	}

	if _, err := adapter.ParseSnippet(snippet); err != nil {
		return unchanged, err
	}
	if !adapter.HasContent(snippet) {
		return unchanged, ErrEmptyOverlay
	}

	final, err := adapter.ComputeFinal(custom, snippet, true)
	if err != nil {
		return unchanged, err
	}
	return ApplyResult{Config: final, Applied: true}, nil
}

// Detach runs the enabled-to-disabled transition: subtract the snippet's
// contribution from the final config so the provider reverts to exactly
// what the user authored. Same all-or-nothing rule as Apply; an empty
// snippet is a no-op reported as ErrEmptyOverlay.
func (c *Controller) Detach(app App, final, snippet string) (Extraction, error) {
	unchanged := Extraction{Custom: final, HasCommonKeys: false}

	adapter, err := c.Adapter(app)
	if err != nil {
		return unchanged, err
	}

	if _, err := adapter.ParseSnippet(snippet); err != nil {
		return unchanged, err
	}
	if !adapter.HasContent(snippet) {
		return unchanged, ErrEmptyOverlay
	}

	return adapter.ExtractDiff(final, snippet)
}

// ComputeFinal exposes the per-app merge directly, including the enabled
// flag, for callers that recompute the final config on demand.
func (c *Controller) ComputeFinal(app App, custom, common string, enabled bool) (string, error) {
	adapter, err := c.Adapter(app)
	if err != nil {
		return custom, err
	}
	return adapter.ComputeFinal(custom, common, enabled)
}

// Extract exposes the per-app diff directly.
func (c *Controller) Extract(app App, custom, common string) (Extraction, error) {
	adapter, err := c.Adapter(app)
	if err != nil {
		return Extraction{Custom: custom, HasCommonKeys: false}, err
	}
	return adapter.ExtractDiff(custom, common)
}

// ParseSnippet parses snippet text with the app's adapter.
func (c *Controller) ParseSnippet(app App, text string) (*Snippet, error) {
	adapter, err := c.Adapter(app)
	if err != nil {
		return nil, err
	}
	return adapter.ParseSnippet(text)
}

// HasContent reports whether the snippet carries anything to apply for the
// app; false for unknown apps.
func (c *Controller) HasContent(app App, text string) bool {
	adapter, err := c.Adapter(app)
	if err != nil {
		return false
	}
	return adapter.HasContent(text)
}

// ApplyError renders the reason a snippet cannot be applied through the
// controller's translator, or "" when applying is safe.
func (c *Controller) ApplyError(app App, text string) string {
	adapter, err := c.Adapter(app)
	if err != nil {
		return ErrUnknownApp.Error()
	}
	return adapter.ApplyError(text, c.translate)
}

// DefaultSnippet returns the app's snippet template; "" for unknown apps.
func (c *Controller) DefaultSnippet(app App) string {
	adapter, err := c.Adapter(app)
	if err != nil {
		return ""
	}
	return adapter.DefaultSnippet()
}

// LegacyStorageKey returns the app's pre-migration storage key; "" for
// unknown apps.
func (c *Controller) LegacyStorageKey(app App) string {
	adapter, err := c.Adapter(app)
	if err != nil {
		return ""
	}
	return adapter.LegacyStorageKey()
}
