package state

// Payload field accessors. Event data arrives as map[string]any decoded
// from JSON; every reader here degrades to a zero value on a missing or
// mistyped field so malformed events become no-ops, never panics.

// asMap returns v as an object payload, if it is one.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// getMap reads a nested object field.
func getMap(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	return asMap(m[key])
}

// getString reads a string field, returning "" when absent or not a
// string.
func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// getBool reads a bool field; ok is false when absent or mistyped.
func getBool(m map[string]any, key string) (bool, bool) {
	if m == nil {
		return false, false
	}
	b, ok := m[key].(bool)
	return b, ok
}

// toInt coerces the numeric shapes JSON decoding and hand-built test
// events produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// getInt reads a numeric field as an int.
func getInt(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	return toInt(m[key])
}

// getNumber reads a numeric field without truncation.
func getNumber(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch n := m[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// getStringSlice reads a sequence of strings; both []string (tests) and
// []any (JSON decoding) shapes are accepted. Non-string elements are
// skipped. ok reports whether the field was present as a sequence at
// all, so callers can distinguish "absent" from "present but empty".
func getStringSlice(m map[string]any, key string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	switch v := m[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// getStringMap reads a string-to-string object, e.g. room exits.
func getStringMap(m map[string]any, key string) map[string]string {
	obj, ok := getMap(m, key)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// mergeStats deep-merges patch into base: new fields overwrite, fields
// absent from the patch are preserved, and nested objects merge
// recursively. Both inputs are left untouched.
func mergeStats(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if pm, ok := asMap(v); ok {
			if bm, ok := asMap(out[k]); ok {
				out[k] = mergeStats(bm, pm)
				continue
			}
		}
		out[k] = v
	}
	return out
}
