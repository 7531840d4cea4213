// File: lixenwraith/overlay/doc.go

// Package overlay applies one reusable "common" configuration snippet as a
// non-destructive overlay on top of independently maintained per-provider
// configs in three grammars: a JSON settings object (Claude), a TOML
// document (Codex), and a flat environment-variable map (Gemini). The
// overlay can be toggled off at any time, subtracting exactly the keys it
// contributed while leaving the provider's own customizations intact.
//
// Features:
//   - One shared adapter contract over three fixed formats (JSON, TOML, env)
//   - One-level merge with custom-wins precedence per top-level key
//   - Deep-equality diff that removes only what the overlay contributed
//   - Fail-soft everywhere: parse or merge failure returns the original
//     config unchanged together with the error, never a partial document
//   - Wholesale env snippet validation with a forbidden-key deny list
//   - Envelope handling ({auth, config} for Codex, {env} for Gemini)
//   - Injected translation for every user-facing message
//   - Builder pattern for controller customization
//   - Pure functions only: no I/O, no shared mutable state, safe for
//     concurrent use
//
// Quick Start:
//
//	ctrl := overlay.New()
//
//	custom := `{
//	  "model": "opus"
//	}`
//	snippet := `{"theme": "dark"}`
//
//	result, err := ctrl.Apply(overlay.AppClaude, custom, snippet)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// result.Config now holds both keys; write it to the provider store.
//
//	ext, err := ctrl.Detach(overlay.AppClaude, result.Config, snippet)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ext.Custom == custom: the overlay's keys are gone, nothing else moved.
//
// Transitions:
// Apply (disabled -> enabled) merges the snippet into the custom config and
// returns the final config to persist. Detach (enabled -> disabled) removes
// the snippet's contribution so the stored config reverts to exactly what
// the user authored. Both either fully succeed or leave the original
// untouched; an empty snippet makes either one a no-op reported as
// ErrEmptyOverlay.
//
// Concurrency:
// Every operation reads only its arguments and allocates fresh output, so
// controllers and adapters are safe to share across goroutines. Callers
// must still serialize read-modify-write cycles per provider at the store.
package overlay
