// File: internal/snippet/extractor.go
// Description: Builds the bounded context window around a targeted pattern
// occurrence. The window is the sole payload sent to the generation
// collaborator as surrounding context.

package snippet

import (
	"strings"

	"github.com/xkilldash9x/docmend/internal/textmatch"
)

const (
	// windowRadius is the number of characters kept on each side of the
	// targeted occurrence.
	windowRadius = 150
	// fallbackLength is the size of the default context returned when the
	// pattern cannot be located at all.
	fallbackLength = 300
	// ellipsis marks a window edge that was clipped by the radius rather than
	// by the text running out.
	ellipsis = "..."
)

// Extract produces the context window around the given occurrence of pattern
// in plainText. The fallback chain never fails: if the targeted occurrence is
// missing the first occurrence is used; if the pattern is absent entirely the
// head of the text is returned. The result never exceeds
// len(pattern) + 2*windowRadius characters plus ellipsis markers.
func Extract(plainText, pattern string, occurrence *int) string {
	offset, found := -1, false
	if pattern != "" {
		if occurrence != nil {
			offset, found = textmatch.FindNthOccurrence(plainText, pattern, *occurrence)
		}
		if !found {
			offset, found = textmatch.FindNthOccurrence(plainText, pattern, 0)
		}
	}

	if !found {
		if len(plainText) <= fallbackLength {
			return plainText
		}
		return plainText[:fallbackLength] + ellipsis
	}

	start := offset - windowRadius
	clippedStart := start > 0
	if !clippedStart {
		start = 0
	}

	end := offset + len(pattern) + windowRadius
	clippedEnd := end < len(plainText)
	if !clippedEnd {
		end = len(plainText)
	}

	var b strings.Builder
	if clippedStart {
		b.WriteString(ellipsis)
	}
	b.WriteString(plainText[start:end])
	if clippedEnd {
		b.WriteString(ellipsis)
	}
	return b.String()
}
