package ai

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizeScore canonicalizes the safety score into an integer percentage in
// [0,100]. The service has been observed returning 85, 0.85, 8500 and "72%"
// for the same meaning, so: fractions in (0,1) scale up, values over 100 scale
// down. Best-effort heuristic, not a unit converter: 150 normalizes to 2,
// which is odd but kept for compatibility with previously persisted recipes.
func NormalizeScore(v any) int {
	f, ok := scoreValue(v)
	if !ok {
		return 0
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	if f > 100 {
		f /= 100
	}
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func scoreValue(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseLeadingNumber(t)
	default:
		return 0, false
	}
}

// parseLeadingNumber reads the numeric prefix of a string, tolerating a
// trailing "%" or other junk ("85.5% safe" -> 85.5).
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if r == '-' || r == '+' {
			if i != 0 {
				break
			}
			end = i + 1
			continue
		}
		if r == '.' || (r >= '0' && r <= '9') {
			end = i + 1
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
