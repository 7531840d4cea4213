// FILE: lixenwraith/overlay/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/overlay"
)

// ClaudeSettings shows typed decoding of a final Claude config.
type ClaudeSettings struct {
	Model  string            `json:"model"`
	Theme  string            `json:"theme"`
	Env    map[string]string `json:"env"`
	Tokens int               `json:"max_tokens"`
}

func main() {
	// =========================================================================
	// PART 1: CONTROLLER SETUP
	// Build a controller with a custom translator and an extra forbidden key.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Building the controller...")

	ctrl, err := overlay.NewBuilder().
		WithTranslator(func(key string, params map[string]string) string {
			if keys, ok := params["keys"]; ok {
				return fmt.Sprintf("[%s] offending keys: %s", key, keys)
			}
			return "[" + key + "]"
		}).
		WithForbiddenEnvKeys("GOOGLE_CLOUD_PROJECT").
		Build()
	if err != nil {
		log.Fatalf("❌ Controller build failed: %v", err)
	}
	log.Println("✅ Controller ready.")

	// =========================================================================
	// PART 2: CLAUDE JSON ROUND TRIP
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: JSON overlay round trip...")

	claudeCustom := `{
  "model": "opus",
  "max_tokens": 4096
}`
	claudeSnippet := `{"theme": "dark", "env": {"HTTP_PROXY": "http://proxy:8080"}}`

	applied, err := ctrl.Apply(overlay.AppClaude, claudeCustom, claudeSnippet)
	if err != nil {
		log.Fatalf("❌ Apply failed: %v", err)
	}
	log.Printf("✅ Final Claude config:\n%s", applied.Config)

	var settings ClaudeSettings
	if err := overlay.DecodeConfig(overlay.AppClaude, applied.Config, &settings); err != nil {
		log.Fatalf("❌ Decode failed: %v", err)
	}
	log.Printf("✅ Decoded: model=%s theme=%s proxy=%s tokens=%d",
		settings.Model, settings.Theme, settings.Env["HTTP_PROXY"], settings.Tokens)

	detached, err := ctrl.Detach(overlay.AppClaude, applied.Config, claudeSnippet)
	if err != nil {
		log.Fatalf("❌ Detach failed: %v", err)
	}
	log.Printf("✅ Detached (hasCommonKeys=%v):\n%s", detached.HasCommonKeys, detached.Custom)

	// =========================================================================
	// PART 3: CODEX TOML ENVELOPE AND FAIL-SOFT
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: TOML overlay with auth envelope...")

	codexCustom := `{"auth":"sk-keep-me","config":"model = \"o3\"\n"}`
	codexSnippet := "approval_policy = \"on-request\"\n\n[sandbox_workspace_write]\nnetwork_access = false\n"

	applied, err = ctrl.Apply(overlay.AppCodex, codexCustom, codexSnippet)
	if err != nil {
		log.Fatalf("❌ Apply failed: %v", err)
	}
	log.Printf("✅ Final Codex envelope: %s", applied.Config)

	// A broken snippet never touches the stored config.
	broken := "not [ valid toml"
	if msg := ctrl.ApplyError(overlay.AppCodex, broken); msg != "" {
		log.Printf("✅ Broken snippet blocked with message: %s", msg)
	}
	same, err := ctrl.ComputeFinal(overlay.AppCodex, codexCustom, broken, true)
	log.Printf("✅ Fail-soft: config unchanged=%v, err=%v", same == codexCustom, err)

	// Wrong-editor paste detection.
	if hint := overlay.SnippetFormatHint(overlay.AppCodex, `{"model": "o3"}`); hint != "" {
		log.Printf("✅ Paste warning: snippet looks like %s, editor expects toml", hint)
	}

	// =========================================================================
	// PART 4: GEMINI ENV VALIDATION AND THE DENY LIST
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Env overlay validation...")

	geminiCustom := `{"env":{"GOOGLE_GENAI_USE_VERTEXAI":"false"}}`
	geminiSnippet := `{"HTTPS_PROXY": "http://proxy:8080", "NO_COLOR": "1"}`

	applied, err = ctrl.Apply(overlay.AppGemini, geminiCustom, geminiSnippet)
	if err != nil {
		log.Fatalf("❌ Apply failed: %v", err)
	}
	log.Printf("✅ Final Gemini env: %s", applied.Config)

	// Forbidden keys reject the snippet wholesale.
	bad := `{"GEMINI_API_KEY": "sneaky", "NO_COLOR": "1"}`
	if msg := ctrl.ApplyError(overlay.AppGemini, bad); msg != "" {
		log.Printf("✅ Deny list held: %s", msg)
	}
	if _, err := ctrl.ParseSnippet(overlay.AppGemini, bad); err != nil {
		var ve *overlay.ValidationError
		if errors.As(err, &ve) {
			log.Printf("✅ Machine-readable code: %s", ve.Code())
		}
	}

	// Line-based env file rendering for the on-disk shape.
	snippet, err := ctrl.ParseSnippet(overlay.AppGemini, geminiSnippet)
	if err != nil {
		log.Fatalf("❌ Parse failed: %v", err)
	}
	log.Printf("✅ As .env lines:\n%s", overlay.FormatEnvFile(snippet.Env()))

	// =========================================================================
	// PART 5: EMPTY OVERLAY IS A NO-OP, NOT A FAILURE
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 5: Empty overlay handling...")

	result, err := ctrl.Apply(overlay.AppClaude, claudeCustom, ctrl.DefaultSnippet(overlay.AppClaude))
	if errors.Is(err, overlay.ErrEmptyOverlay) {
		log.Printf("✅ Default template applies nothing: applied=%v, config unchanged=%v",
			result.Applied, result.Config == claudeCustom)
	}

	log.Println("---")
	log.Println("🎉 Done.")
}
