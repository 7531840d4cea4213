package overlay

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestMergeObjects tests one-level merge precedence and copying behavior
func TestMergeObjects(t *testing.T) {
	tests := []struct {
		name     string
		custom   map[string]any
		common   map[string]any
		expected map[string]any
	}{
		{
			"DisjointKeys",
			map[string]any{"a": int64(1)},
			map[string]any{"b": int64(2)},
			map[string]any{"a": int64(1), "b": int64(2)},
		},
		{
			"CustomWinsOnCollision",
			map[string]any{"model": "opus"},
			map[string]any{"model": "sonnet", "theme": "dark"},
			map[string]any{"model": "opus", "theme": "dark"},
		},
		{
			"EmptyCommonReturnsCustomCopy",
			map[string]any{"a": int64(1), "b": "x"},
			map[string]any{},
			map[string]any{"a": int64(1), "b": "x"},
		},
		{
			"EmptyCustomTakesAllOfCommon",
			map[string]any{},
			map[string]any{"a": int64(1)},
			map[string]any{"a": int64(1)},
		},
		{
			"NilMapsBehaveAsEmpty",
			nil,
			nil,
			map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeObjects(tt.custom, tt.common))
		})
	}
}

// TestMergeObjectsOneLevelDeep pins the merge depth: nested objects are
// replaced wholesale by the custom side, never merged recursively.
func TestMergeObjectsOneLevelDeep(t *testing.T) {
	custom := map[string]any{
		"server": map[string]any{"host": "localhost"},
	}
	common := map[string]any{
		"server": map[string]any{"host": "example.com", "port": int64(443)},
		"theme":  "dark",
	}

	final := MergeObjects(custom, common)

	// The custom nested object survives untouched; common's "port" does
	// not leak into it.
	assert.Equal(t, map[string]any{"host": "localhost"}, final["server"])
	assert.Equal(t, "dark", final["theme"])
}

// TestExtractObjectDiff tests structural removal and the hasCommonKeys flag
func TestExtractObjectDiff(t *testing.T) {
	tests := []struct {
		name        string
		custom      map[string]any
		common      map[string]any
		expected    map[string]any
		expectFound bool
	}{
		{
			"RemovesIdenticalValue",
			map[string]any{"a": int64(1), "b": int64(2)},
			map[string]any{"b": int64(2)},
			map[string]any{"a": int64(1)},
			true,
		},
		{
			"KeepsDifferingValue",
			map[string]any{"a": int64(1), "b": int64(3)},
			map[string]any{"b": int64(2)},
			map[string]any{"a": int64(1), "b": int64(3)},
			false,
		},
		{
			"EmptyCommonRemovesNothing",
			map[string]any{"a": int64(1)},
			map[string]any{},
			map[string]any{"a": int64(1)},
			false,
		},
		{
			"RemovesEverything",
			map[string]any{"a": int64(1)},
			map[string]any{"a": int64(1)},
			map[string]any{},
			true,
		},
		{
			"DeepEqualityReachesNestedStructures",
			map[string]any{
				"server": map[string]any{"host": "x", "port": int64(1)},
				"keep":   "me",
			},
			map[string]any{
				"server": map[string]any{"host": "x", "port": int64(1)},
			},
			map[string]any{"keep": "me"},
			true,
		},
		{
			"NestedMismatchKept",
			map[string]any{
				"server": map[string]any{"host": "x", "port": int64(2)},
			},
			map[string]any{
				"server": map[string]any{"host": "x", "port": int64(1)},
			},
			map[string]any{
				"server": map[string]any{"host": "x", "port": int64(2)},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractObjectDiff(tt.custom, tt.common)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expectFound, found)
		})
	}
}

// TestExtractObjectDiff_CollisionAmbiguity pins the documented policy: a
// key the user authored with the same value the overlay carries cannot be
// told apart from an inherited one. It is stripped, and the removal is
// reported.
func TestExtractObjectDiff_CollisionAmbiguity(t *testing.T) {
	custom := map[string]any{"a": int64(1)}
	common := map[string]any{"a": int64(1)}

	got, found := ExtractObjectDiff(custom, common)

	assert.Empty(t, got)
	assert.True(t, found)
}

// TestCloneFreshness verifies outputs never alias inputs
func TestCloneFreshness(t *testing.T) {
	t.Run("MergeResultIsIndependent", func(t *testing.T) {
		custom := map[string]any{"nested": map[string]any{"k": "v"}}
		common := map[string]any{"list": []any{int64(1), int64(2)}}

		final := MergeObjects(custom, common)
		final["nested"].(map[string]any)["k"] = "changed"
		final["list"].([]any)[0] = int64(99)

		assert.Equal(t, "v", custom["nested"].(map[string]any)["k"])
		assert.Equal(t, int64(1), common["list"].([]any)[0])
	})

	t.Run("CloneTreeCopiesNestedLevels", func(t *testing.T) {
		original := map[string]any{
			"a": map[string]any{"b": []any{map[string]any{"c": int64(1)}}},
		}

		clone := cloneTree(original)
		clone["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"] = int64(2)

		assert.Equal(t, int64(1),
			original["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"])
	})

	t.Run("ArrayOfTablesIsCopied", func(t *testing.T) {
		// The shape TOML arrays of tables parse into.
		custom := map[string]any{
			"peers": []map[string]any{{"name": "a"}, {"name": "b"}},
		}

		final := MergeObjects(custom, map[string]any{})
		final["peers"].([]map[string]any)[0]["name"] = "changed"

		assert.Equal(t, "a", custom["peers"].([]map[string]any)[0]["name"])
	})

	t.Run("CloneTreeNilGivesEmpty", func(t *testing.T) {
		clone := cloneTree(nil)
		require.NotNil(t, clone)
		assert.Empty(t, clone)
	})
}

// drawTree generates a small map with prefixed keys so custom and common
// key sets can be kept disjoint.
func drawTree(t *rapid.T, prefix string) map[string]any {
	size := rapid.IntRange(0, 5).Draw(t, prefix+"Size")
	tree := make(map[string]any, size)
	for i := 0; i < size; i++ {
		key := prefix + rapid.StringMatching(`[a-z]{1,6}`).Draw(t, fmt.Sprintf("%sKey%d", prefix, i))
		tree[key] = drawValue(t, fmt.Sprintf("%sVal%d", prefix, i))
	}
	return tree
}

func drawValue(t *rapid.T, label string) any {
	switch rapid.IntRange(0, 3).Draw(t, label+"Kind") {
	case 0:
		return rapid.StringMatching(`[a-z0-9]{0,8}`).Draw(t, label+"Str")
	case 1:
		return int64(rapid.IntRange(-1000, 1000).Draw(t, label+"Int"))
	case 2:
		return rapid.Bool().Draw(t, label+"Bool")
	default:
		return map[string]any{
			"inner": rapid.StringMatching(`[a-z]{0,5}`).Draw(t, label+"Inner"),
		}
	}
}

// TestMerge_PropertyBased_RoundTrip: with disjoint key sets, extracting
// the common overlay from a merge returns exactly the custom input.
func TestMerge_PropertyBased_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		custom := drawTree(t, "c_")
		common := drawTree(t, "s_")

		final := MergeObjects(custom, common)
		got, found := ExtractObjectDiff(final, common)

		assert.Equal(t, custom, got, "round trip must restore custom exactly")
		assert.Equal(t, len(common) > 0, found, "removal reported iff common contributed keys")
	})
}

// TestMerge_PropertyBased_Precedence: every custom key survives a merge
// byte-for-byte, every common-only key is adopted, nothing else appears.
func TestMerge_PropertyBased_Precedence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		custom := drawTree(t, "c_")
		common := drawTree(t, "s_")
		// Force at least one collision when both sides have keys.
		for key := range custom {
			common[key] = drawValue(t, "collide")
			break
		}

		final := MergeObjects(custom, common)

		for key, value := range custom {
			assert.Equal(t, value, final[key], "custom must win for key %q", key)
		}
		for key, value := range common {
			if _, collides := custom[key]; !collides {
				assert.Equal(t, value, final[key], "common-only key %q must be adopted", key)
			}
		}
		for key := range final {
			_, fromCustom := custom[key]
			_, fromCommon := common[key]
			assert.True(t, fromCustom || fromCommon, "key %q appeared from nowhere", key)
		}
	})
}

// TestMerge_PropertyBased_InputsUntouched: merge and extract never mutate
// their arguments.
func TestMerge_PropertyBased_InputsUntouched(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		custom := drawTree(t, "c_")
		common := drawTree(t, "s_")
		customBefore := cloneTree(custom)
		commonBefore := cloneTree(common)

		final := MergeObjects(custom, common)
		_, _ = ExtractObjectDiff(final, common)

		assert.Equal(t, customBefore, custom)
		assert.Equal(t, commonBefore, common)
	})
}

// TestStringMapHelpers tests the string-map specializations used by the
// env adapter
func TestStringMapHelpers(t *testing.T) {
	t.Run("MergePrecedence", func(t *testing.T) {
		final := mergeStringMaps(
			map[string]string{"A": "custom"},
			map[string]string{"A": "common", "B": "only"},
		)
		assert.Equal(t, map[string]string{"A": "custom", "B": "only"}, final)
	})

	t.Run("ExtractMatchesExactValue", func(t *testing.T) {
		remainder, found := extractStringMapDiff(
			map[string]string{"A": "1", "B": "2"},
			map[string]string{"A": "1", "B": "other"},
		)
		assert.Equal(t, map[string]string{"B": "2"}, remainder)
		assert.True(t, found)
	})

	t.Run("ExtractWithoutMatches", func(t *testing.T) {
		remainder, found := extractStringMapDiff(
			map[string]string{"A": "1"},
			map[string]string{"B": "1"},
		)
		assert.Equal(t, map[string]string{"A": "1"}, remainder)
		assert.False(t, found)
	})
}
