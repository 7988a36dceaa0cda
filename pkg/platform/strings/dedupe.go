// Package strings holds small helpers for string-like values arriving from
// query strings and request bodies.
package strings

import "strings"

// DedupeAndTrim trims each value, drops blanks and keeps the first
// occurrence of each remaining value in input order.
func DedupeAndTrim[S ~string](values []S) []S {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[S]struct{}, len(values))
	out := make([]S, 0, len(values))
	for _, v := range values {
		v = S(strings.TrimSpace(string(v)))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
