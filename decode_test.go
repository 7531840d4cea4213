// FILE: lixenwraith/overlay/decode_test.go
package overlay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeWithComplexTypes tests decoding into various complex types
func TestDecodeWithComplexTypes(t *testing.T) {
	type ServerConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}

	type AppSettings struct {
		Endpoint  *url.URL          `json:"endpoint"`
		Timeout   time.Duration     `json:"timeout"`
		CreatedAt time.Time         `json:"created_at"`
		Tags      []string          `json:"tags"`
		Retries   int               `json:"retries"`
		Server    ServerConfig      `json:"server"`
		Labels    map[string]string `json:"labels"`
	}

	adapter, err := AdapterFor(AppClaude)
	require.NoError(t, err)

	snippet, err := adapter.ParseSnippet(`{
		"endpoint": "https://api.example.com/v1",
		"timeout": "30s",
		"created_at": "2026-01-02T15:04:05Z",
		"tags": "alpha,beta,gamma",
		"retries": 3,
		"server": {"host": "localhost", "port": 8080},
		"labels": {"env": "dev"}
	}`)
	require.NoError(t, err)

	var settings AppSettings
	require.NoError(t, snippet.Decode(&settings))

	require.NotNil(t, settings.Endpoint)
	assert.Equal(t, "api.example.com", settings.Endpoint.Host)
	assert.Equal(t, "/v1", settings.Endpoint.Path)

	assert.Equal(t, 30*time.Second, settings.Timeout)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), settings.CreatedAt)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, settings.Tags)
	assert.Equal(t, 3, settings.Retries, "numeric literals decode into int fields")
	assert.Equal(t, ServerConfig{Host: "localhost", Port: 8080}, settings.Server)
	assert.Equal(t, map[string]string{"env": "dev"}, settings.Labels)
}

// TestDecodeSection tests decoding one dotted section of a snippet
func TestDecodeSection(t *testing.T) {
	type ServerConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}

	adapter, err := AdapterFor(AppClaude)
	require.NoError(t, err)

	snippet, err := adapter.ParseSnippet(`{
		"server": {"host": "localhost", "port": 9090},
		"nested": {"inner": {"value": "deep"}}
	}`)
	require.NoError(t, err)

	t.Run("TopLevelSection", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, snippet.DecodeSection("server", &server))
		assert.Equal(t, ServerConfig{Host: "localhost", Port: 9090}, server)
	})

	t.Run("DeepSection", func(t *testing.T) {
		var inner struct {
			Value string `json:"value"`
		}
		require.NoError(t, snippet.DecodeSection("nested.inner", &inner))
		assert.Equal(t, "deep", inner.Value)
	})

	t.Run("TrailingDotTolerated", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, snippet.DecodeSection("server.", &server))
		assert.Equal(t, 9090, server.Port)
	})

	t.Run("MissingSectionDecodesEmpty", func(t *testing.T) {
		var server ServerConfig
		require.NoError(t, snippet.DecodeSection("absent", &server))
		assert.Equal(t, ServerConfig{}, server)
	})

	t.Run("ScalarPathIsAnError", func(t *testing.T) {
		var server ServerConfig
		err := snippet.DecodeSection("server.host", &server)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-map value")
	})
}

// TestDecodeTargetValidation tests decode target guards
func TestDecodeTargetValidation(t *testing.T) {
	adapter, err := AdapterFor(AppClaude)
	require.NoError(t, err)

	snippet, err := adapter.ParseSnippet(`{"a": "1"}`)
	require.NoError(t, err)

	t.Run("NonPointerTarget", func(t *testing.T) {
		var target struct{}
		err := snippet.Decode(target)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-nil pointer")
	})

	t.Run("NilPointerTarget", func(t *testing.T) {
		err := snippet.Decode((*struct{})(nil))
		require.Error(t, err)
	})

	t.Run("OversizedURLRejected", func(t *testing.T) {
		long, err := adapter.ParseSnippet(`{"endpoint": "https://example.com/` + strings.Repeat("x", 2048) + `"}`)
		require.NoError(t, err)

		var target struct {
			Endpoint *url.URL `json:"endpoint"`
		}
		err = long.Decode(&target)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "URL too long")
	})
}

// TestDecodeNumericLiterals tests numeric JSON values aimed at the fields
// the string-based hooks serve. None of these may panic.
func TestDecodeNumericLiterals(t *testing.T) {
	adapter, err := AdapterFor(AppClaude)
	require.NoError(t, err)

	t.Run("NumberIntoURLIsAnError", func(t *testing.T) {
		snippet, err := adapter.ParseSnippet(`{"endpoint": 123}`)
		require.NoError(t, err)

		var target struct {
			Endpoint *url.URL `json:"endpoint"`
		}
		assert.NotPanics(t, func() {
			require.Error(t, snippet.Decode(&target))
		})
	})

	t.Run("NumberIntoDurationIsAnError", func(t *testing.T) {
		snippet, err := adapter.ParseSnippet(`{"timeout": 30}`)
		require.NoError(t, err)

		var target struct {
			Timeout time.Duration `json:"timeout"`
		}
		assert.NotPanics(t, func() {
			// 30 arrives as "30", which lacks a duration unit.
			require.Error(t, snippet.Decode(&target))
		})
	})

	t.Run("NumberIntoTimeIsAnError", func(t *testing.T) {
		snippet, err := adapter.ParseSnippet(`{"created_at": 20260102}`)
		require.NoError(t, err)

		var target struct {
			CreatedAt time.Time `json:"created_at"`
		}
		assert.NotPanics(t, func() {
			require.Error(t, snippet.Decode(&target))
		})
	})

	t.Run("NumberIntoSliceCoerces", func(t *testing.T) {
		snippet, err := adapter.ParseSnippet(`{"tags": 7}`)
		require.NoError(t, err)

		var target struct {
			Tags []string `json:"tags"`
		}
		require.NoError(t, snippet.Decode(&target))
		assert.Equal(t, []string{"7"}, target.Tags)
	})
}

// TestDecodeZeroFields verifies maps are replaced, not merged, on decode.
func TestDecodeZeroFields(t *testing.T) {
	adapter, err := AdapterFor(AppClaude)
	require.NoError(t, err)

	snippet, err := adapter.ParseSnippet(`{"labels": {"env": "prod"}}`)
	require.NoError(t, err)

	target := struct {
		Labels map[string]string `json:"labels"`
	}{
		Labels: map[string]string{"stale": "entry"},
	}

	require.NoError(t, snippet.Decode(&target))
	assert.Equal(t, map[string]string{"env": "prod"}, target.Labels)
}

// TestDecodeConfig tests decoding persisted configs in each app's shape
func TestDecodeConfig(t *testing.T) {
	t.Run("ClaudeSettings", func(t *testing.T) {
		var settings struct {
			Model string            `json:"model"`
			Env   map[string]string `json:"env"`
		}
		err := DecodeConfig(AppClaude, `{"model": "opus", "env": {"HTTP_PROXY": "http://p:1"}}`, &settings)
		require.NoError(t, err)
		assert.Equal(t, "opus", settings.Model)
		assert.Equal(t, map[string]string{"HTTP_PROXY": "http://p:1"}, settings.Env)
	})

	t.Run("CodexEnvelope", func(t *testing.T) {
		var cfg struct {
			Model  string `json:"model"`
			Server struct {
				Port int `json:"port"`
			} `json:"server"`
		}
		config := `{"auth":"sk-x","config":"model = \"o3\"\n[server]\nport = 8080\n"}`
		require.NoError(t, DecodeConfig(AppCodex, config, &cfg))
		assert.Equal(t, "o3", cfg.Model)
		assert.Equal(t, 8080, cfg.Server.Port)
	})

	t.Run("CodexBareTOML", func(t *testing.T) {
		var cfg struct {
			Model string `json:"model"`
		}
		require.NoError(t, DecodeConfig(AppCodex, "model = \"o3\"\n", &cfg))
		assert.Equal(t, "o3", cfg.Model)
	})

	t.Run("GeminiEnv", func(t *testing.T) {
		var env struct {
			Editor string `json:"EDITOR"`
			Pager  string `json:"PAGER"`
		}
		require.NoError(t, DecodeConfig(AppGemini, `{"env": {"EDITOR": "vim", "PAGER": "less"}}`, &env))
		assert.Equal(t, "vim", env.Editor)
		assert.Equal(t, "less", env.Pager)
	})

	t.Run("BlankConfigDecodesEmpty", func(t *testing.T) {
		for _, app := range Apps() {
			var target struct {
				Model string `json:"model"`
			}
			require.NoError(t, DecodeConfig(app, "", &target), "app %s", app)
			assert.Equal(t, "", target.Model)
		}
	})

	t.Run("GeminiEnvFieldMustBeObject", func(t *testing.T) {
		var target struct{}
		err := DecodeConfig(AppGemini, `{"env": 1}`, &target)
		require.Error(t, err)
	})

	t.Run("UnknownApp", func(t *testing.T) {
		var target struct{}
		err := DecodeConfig(App("vscode"), "{}", &target)
		require.ErrorIs(t, err, ErrUnknownApp)
	})
}

// TestNavigateToPath tests dotted-path traversal
func TestNavigateToPath(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": "leaf",
			},
		},
		"scalar": 42,
	}

	assert.Equal(t, tree, navigateToPath(tree, ""))
	assert.Equal(t, "leaf", navigateToPath(tree, "a.b.c"))
	assert.Equal(t, tree["a"], navigateToPath(tree, "a."))
	assert.Nil(t, navigateToPath(tree, "a.missing"))
	assert.Nil(t, navigateToPath(tree, "scalar.below"))
}
