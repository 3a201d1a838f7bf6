// File: internal/textmatch/matcher.go
// Description: Occurrence-addressed, case-insensitive literal matching and
// replacement. The merge engine relies on the guarantee that replacing the
// n-th occurrence leaves every other occurrence byte-for-byte untouched.

package textmatch

import (
	"errors"
	"strings"
)

// ErrEmptyPattern is returned when a caller supplies a degenerate (empty)
// search pattern. Callers are responsible for never scheduling such fixes.
var ErrEmptyPattern = errors.New("textmatch: empty pattern")

// indexFold returns the byte offset of the first case-insensitive match of
// pattern in text at or after from, or -1. The match is constrained to spans
// of exactly len(pattern) bytes, so a returned offset always addresses a span
// that can be substituted in place. Lowercasing both strings up front would be
// faster but breaks offset arithmetic for case mappings that change byte
// length.
func indexFold(text, pattern string, from int) int {
	if pattern == "" || from < 0 {
		return -1
	}
	for i := from; i+len(pattern) <= len(text); i++ {
		if strings.EqualFold(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

// FindNthOccurrence locates the 0-indexed n-th case-insensitive occurrence of
// pattern in text, scanning left to right. It returns the byte offset of the
// occurrence and whether it was found. Occurrences are counted
// non-overlapping, the same way a sequential find-and-advance scan would
// count them.
func FindNthOccurrence(text, pattern string, n int) (int, bool) {
	if pattern == "" || n < 0 {
		return 0, false
	}

	offset := 0
	for i := 0; ; i++ {
		idx := indexFold(text, pattern, offset)
		if idx < 0 {
			return 0, false
		}
		if i == n {
			return idx, true
		}
		offset = idx + len(pattern)
	}
}

// OccurrenceCount returns the number of non-overlapping case-insensitive
// occurrences of pattern in text. An empty pattern counts as zero.
func OccurrenceCount(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	count := 0
	offset := 0
	for {
		idx := indexFold(text, pattern, offset)
		if idx < 0 {
			return count
		}
		count++
		offset = idx + len(pattern)
	}
}

// ReplaceNthOccurrence substitutes replacement for the n-th case-insensitive
// occurrence of pattern in text. Every other occurrence is preserved exactly.
// When n is out of range the input is returned unchanged with replaced ==
// false; that is a no-op, not a failure. An empty pattern is rejected with
// ErrEmptyPattern.
func ReplaceNthOccurrence(text, pattern, replacement string, n int) (string, bool, error) {
	if pattern == "" {
		return text, false, ErrEmptyPattern
	}

	offset, found := FindNthOccurrence(text, pattern, n)
	if !found {
		return text, false, nil
	}

	var b strings.Builder
	b.Grow(len(text) - len(pattern) + len(replacement))
	b.WriteString(text[:offset])
	b.WriteString(replacement)
	b.WriteString(text[offset+len(pattern):])
	return b.String(), true, nil
}

// ReplaceAllOccurrences substitutes replacement for every case-insensitive
// occurrence of pattern in text and reports how many spans were replaced.
// Replacement text is never rescanned, so a replacement containing the
// pattern cannot loop.
func ReplaceAllOccurrences(text, pattern, replacement string) (string, int, error) {
	if pattern == "" {
		return text, 0, ErrEmptyPattern
	}

	var b strings.Builder
	replaced := 0
	offset := 0
	for {
		idx := indexFold(text, pattern, offset)
		if idx < 0 {
			b.WriteString(text[offset:])
			return b.String(), replaced, nil
		}
		b.WriteString(text[offset:idx])
		b.WriteString(replacement)
		offset = idx + len(pattern)
		replaced++
	}
}
