// Package normalize converts untrusted raw catalog records into canonical
// models. Heuristics here favor tolerating upstream junk over failing a fetch.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var currencyGlyphs = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	"₹", "",
	",", "",
)

// ParsePrice turns whatever the upstream API put in a price field into a
// number. It is total: nil, empty strings, unparseable strings, and unknown
// types all yield 0; it never panics and never returns NaN. Negative inputs
// pass through unchanged — callers clamp where sign matters.
func ParsePrice(v any) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(p)
	case float32:
		return sanitize(float64(p))
	case int:
		return float64(p)
	case int64:
		return float64(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0
		}
		return sanitize(f)
	case string:
		s := strings.TrimSpace(currencyGlyphs.Replace(p))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	default:
		return 0
	}
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
