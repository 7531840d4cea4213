// File: lixenwraith/overlay/merge.go
package overlay

import "reflect"

// MergeObjects returns a new map containing every top-level key of common,
// then overwritten by every top-level key of custom. The merge is one level
// deep: a top-level key of common is used only when custom lacks that key,
// and nested objects are replaced wholesale, never merged recursively.
// If common is empty the result is a copy of custom unchanged.
func MergeObjects(custom, common map[string]any) map[string]any {
	final := make(map[string]any, len(custom)+len(common))

	for key, value := range common {
		final[key] = cloneValue(value)
	}
	for key, value := range custom {
		final[key] = cloneValue(value)
	}

	return final
}

// ExtractObjectDiff removes from custom every top-level key whose value is
// structurally identical to the value common holds for the same key. The
// returned bool reports whether at least one key was removed. Values are
// compared with deep equality, so removal reaches into nested structures
// even though MergeObjects itself only merges one level deep.
func ExtractObjectDiff(custom, common map[string]any) (map[string]any, bool) {
	remainder := make(map[string]any, len(custom))
	removed := false

	for key, value := range custom {
		if commonValue, exists := common[key]; exists && reflect.DeepEqual(value, commonValue) {
			removed = true
			continue
		}
		remainder[key] = cloneValue(value)
	}

	return remainder, removed
}

// cloneTree creates a deep copy of a nested map so results never alias
// their inputs.
func cloneTree(tree map[string]any) map[string]any {
	if tree == nil {
		return map[string]any{}
	}

	clone := make(map[string]any, len(tree))
	for key, value := range tree {
		clone[key] = cloneValue(value)
	}
	return clone
}

// cloneValue deep-copies maps and slices; scalars are returned as-is.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneTree(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = cloneValue(item)
		}
		return items
	case []map[string]any:
		// TOML arrays of tables decode to this shape.
		tables := make([]map[string]any, len(v))
		for i, table := range v {
			tables[i] = cloneTree(table)
		}
		return tables
	default:
		return value
	}
}

// mergeStringMaps is MergeObjects specialized to string-valued maps: every
// key of common, overwritten by every key of custom.
func mergeStringMaps(custom, common map[string]string) map[string]string {
	final := make(map[string]string, len(custom)+len(common))

	for key, value := range common {
		final[key] = value
	}
	for key, value := range custom {
		final[key] = value
	}

	return final
}

// extractStringMapDiff is ExtractObjectDiff specialized to string-valued
// maps. String equality is already structural.
func extractStringMapDiff(custom, common map[string]string) (map[string]string, bool) {
	remainder := make(map[string]string, len(custom))
	removed := false

	for key, value := range custom {
		if commonValue, exists := common[key]; exists && commonValue == value {
			removed = true
			continue
		}
		remainder[key] = value
	}

	return remainder, removed
}
