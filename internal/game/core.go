package game

import (
	"math"
	"strconv"
	"strings"
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// finite replaces NaN and infinities with fallback.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// floatFromParam reads a numeric objective parameter. YAML decodes integers as int,
// JSON as float64, so both are accepted along with numeric strings.
func floatFromParam(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringFromParam(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func copyParams(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// zoneMatches reports whether an actual zone satisfies a target. An empty target
// and "any" match everything; "any_marked" matches any named zone.
func zoneMatches(target, actual string) bool {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "any":
		return true
	case "any_marked":
		return strings.TrimSpace(actual) != ""
	}
	return strings.EqualFold(strings.TrimSpace(target), strings.TrimSpace(actual))
}
