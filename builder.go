// File: lixenwraith/overlay/builder.go
package overlay

import (
	"fmt"
)

// ValidatorFunc defines the signature for a function that can validate a
// Controller instance. It receives the fully built *Controller and should
// return an error if validation fails.
type ValidatorFunc func(c *Controller) error

// Builder provides a fluent interface for building controllers
type Builder struct {
	translate       TranslateFunc
	forbidden       []string
	defaultSnippets map[App]string
	legacyKeys      map[App]string
	validators      []ValidatorFunc
	err             error
}

// NewBuilder creates a new controller builder
func NewBuilder() *Builder {
	return &Builder{
		forbidden:       DefaultForbiddenEnvKeys(),
		defaultSnippets: make(map[App]string),
		legacyKeys:      make(map[App]string),
		validators:      make([]ValidatorFunc, 0),
	}
}

// WithTranslator sets the message translator the controller renders apply
// errors through
func (b *Builder) WithTranslator(fn TranslateFunc) *Builder {
	b.translate = fn
	return b
}

// WithForbiddenEnvKeys adds keys to the env adapter's deny list on top of
// the defaults
func (b *Builder) WithForbiddenEnvKeys(keys ...string) *Builder {
	b.forbidden = append(b.forbidden, keys...)
	return b
}

// WithDefaultSnippet overrides the snippet template offered for an app
func (b *Builder) WithDefaultSnippet(app App, snippet string) *Builder {
	if app.Format() == "" {
		b.err = fmt.Errorf("%w: %q", ErrUnknownApp, app)
		return b
	}
	b.defaultSnippets[app] = snippet
	return b
}

// WithLegacyStorageKey overrides the pre-migration storage key for an app
func (b *Builder) WithLegacyStorageKey(app App, key string) *Builder {
	if app.Format() == "" {
		b.err = fmt.Errorf("%w: %q", ErrUnknownApp, app)
		return b
	}
	b.legacyKeys[app] = key
	return b
}

// WithValidator adds a validation function that runs at the end of the
// build process. Multiple validators can be added and are executed in the
// order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Controller instance with all specified options. Every
// configured default snippet must parse with its app's adapter; a template
// that cannot be applied is a build error, not a runtime surprise.
func (b *Builder) Build() (*Controller, error) {
	if b.err != nil {
		return nil, b.err
	}

	jsonA := newJSONAdapter()
	tomlA := newTOMLAdapter()
	envA := newEnvAdapter(b.forbidden)

	if snippet, ok := b.defaultSnippets[AppClaude]; ok {
		jsonA.defaultSnippet = snippet
	}
	if snippet, ok := b.defaultSnippets[AppCodex]; ok {
		tomlA.defaultSnippet = snippet
	}
	if snippet, ok := b.defaultSnippets[AppGemini]; ok {
		envA.defaultSnippet = snippet
	}

	if key, ok := b.legacyKeys[AppClaude]; ok {
		jsonA.legacyKey = key
	}
	if key, ok := b.legacyKeys[AppCodex]; ok {
		tomlA.legacyKey = key
	}
	if key, ok := b.legacyKeys[AppGemini]; ok {
		envA.legacyKey = key
	}

	adapters := map[App]Adapter{
		AppClaude: jsonA,
		AppCodex:  tomlA,
		AppGemini: envA,
	}

	for app, adapter := range adapters {
		if _, err := adapter.ParseSnippet(adapter.DefaultSnippet()); err != nil {
			return nil, fmt.Errorf("invalid default snippet for %s: %w", app, err)
		}
	}

	translate := b.translate
	if translate == nil {
		translate = defaultTranslate
	}

	ctrl := &Controller{
		adapters:  adapters,
		translate: translate,
	}

	// Run validators
	for _, validator := range b.validators {
		if err := validator(ctrl); err != nil {
			return nil, fmt.Errorf("controller validation failed: %w", err)
		}
	}

	return ctrl, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Controller {
	ctrl, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("controller build failed: %v", err))
	}
	return ctrl
}
