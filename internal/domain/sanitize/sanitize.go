// Package sanitize prepares arbitrary result trees for JSON encoding.
// encoding/json rejects NaN and infinite floats, so every numeric leaf is
// checked and the three special values become nil (null on the wire). The
// walk is pure and total: it never fails and alters nothing else.
package sanitize

import "math"

// Value recursively sanitizes v. Maps and slices are rebuilt with sanitized
// children; NaN and ±Inf floats become nil; all other values pass through
// untouched, structure preserved.
func Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Value(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Value(child)
		}
		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return t
	case map[string]float64:
		out := make(map[string]any, len(t))
		for k, f := range t {
			out[k] = Value(f)
		}
		return out
	default:
		return v
	}
}
