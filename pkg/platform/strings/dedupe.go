// Package strings holds small helpers for claim and query-string lists.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims, lowercases and drops empty or repeated entries,
// keeping first-seen order. UUIDs and codes arrive in mixed case from
// tokens and query strings; comparing them lowercased avoids duplicates.
//
//	DedupeAndTrimLower([]string{"  ABC ", "abc", "", "def"})
//	// []string{"abc", "def"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
