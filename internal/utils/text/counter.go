// Package text provides rune-aware helpers for measuring and cutting text.
// All lengths in the pipeline are Unicode code points, never bytes.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
// Examples:
//
//	CountRunes("hello")      // returns 5
//	CountRunes("héllo")      // returns 5
//	CountRunes("")           // returns 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes returns the first n runes of s. A non-positive n, or an s of at most
// n runes, returns s unchanged.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Ellipsize truncates s to n runes and appends "..." when anything was cut.
func Ellipsize(s string, n int) string {
	t := TruncateRunes(s, n)
	if len(t) < len(s) {
		return t + "..."
	}
	return s
}
