// Package util provides shared utility functions used across the codebase.
package util

import (
	"fmt"
	"strings"
)

// SplitCSV splits a comma-separated string into a slice, trimming whitespace.
// Returns nil for empty strings.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// SplitPairs parses a comma-separated list of colon-joined pairs, e.g.
// "country_code:country_name,dept_code:dept_name". Whitespace around
// either side is trimmed.
func SplitPairs(s string) ([][2]string, error) {
	var result [][2]string
	for _, part := range SplitCSV(s) {
		left, right, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q: expected left:right", part)
		}
		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("invalid pair %q: empty side", part)
		}
		result = append(result, [2]string{left, right})
	}
	return result, nil
}

// Truncate shortens s to at most n runes, appending "..." when it cuts.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
