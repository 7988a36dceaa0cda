// Package attrs reads values back out of slog-style key/value attribute slices.
package attrs

import "fmt"

// ExtractString extracts a string value from a key-value attribute slice.
// The slice should be formatted as [key1, value1, key2, value2, ...].
// Returns empty string if the key is not found or the value is not a string.
func ExtractString(attrs []any, key string) string {
	v, ok := lookup(attrs, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ExtractText renders the value under key with fmt, so typed ids and
// principals can be read back as strings.
func ExtractText(attrs []any, key string) string {
	v, ok := lookup(attrs, key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func lookup(attrs []any, key string) (any, bool) {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if ok && k == key {
			return attrs[i+1], true
		}
	}
	return nil, false
}
