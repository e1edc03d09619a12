package legacy

import (
	"strconv"
	"strings"
)

// Record is one untyped row from a legacy export. Field names are the
// original French column names; values are whatever the JSON line carried.
// Accessors return explicit "absent" results instead of failing, matching
// the looseness of the source data.
type Record map[string]any

// Has reports whether the field is present and non-nil.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Str returns the field as a string. Numbers are formatted without a decimal
// point when whole, so a numeric project number round-trips as "7011".
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// TrimStr returns the field as a whitespace-trimmed string.
func (r Record) TrimStr(key string) string {
	return strings.TrimSpace(r.Str(key))
}

// Int returns the field as an integer, reporting absence or non-numeric
// content via ok=false.
func (r Record) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float returns the field as a float64; strings are parsed, anything else
// reports ok=false.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// FloatOr returns the field as a float64, or def when absent or unparseable.
func (r Record) FloatOr(key string, def float64) float64 {
	if v, ok := r.Float(key); ok {
		return v
	}
	return def
}
