// Package sanitize strips NUL characters from JSON-like documents before
// they reach text columns, which reject them on Postgres.
package sanitize

import "strings"

// String removes every NUL character from s
func String(s string) string {
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// Value walks a decoded JSON document and strips NUL characters from every
// string leaf. Object keys, array order and non-string leaves are kept as is.
// The input is not modified.
func Value(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return String(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = Value(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = Value(item)
		}
		return out
	default:
		return v
	}
}

// Ptr strips NUL characters from an optional string
func Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := String(*s)
	return &clean
}
