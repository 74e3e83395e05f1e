// Package text holds small string helpers shared by the completion clients
// and the reply orchestrator.
package text

import "strings"

// CountRunes counts Unicode characters rather than bytes.
//
//	CountRunes("hello")      // 5
//	CountRunes("hello世界")   // 7
//	CountRunes("")           // 0
func CountRunes(s string) int {
	return len([]rune(s))
}

// Preview returns at most max runes of s on a single line, for debug logs.
// Newlines become spaces and a truncated preview ends with "...".
func Preview(s string, max int) string {
	if max <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
