package search

import (
	"sort"
	"strings"

	"github.com/openhadith/hadith-go/pkg/types"
)

// Highlighting limits.
const (
	maxHighlightWords = 5  // query words considered
	maxMatchesPerWord = 3  // occurrences collected per word
	maxHighlightSpans = 10 // spans returned after merging
)

// highlightSpans finds query-word matches in the English body text and
// returns non-overlapping spans, each extended to full word boundaries.
// Offsets are byte offsets into text; the search lowercases ASCII only, so
// they stay aligned even when the body contains non-ASCII characters.
func highlightSpans(text, query string) []types.Highlight {
	words := Tokenize(query)
	if len(words) > maxHighlightWords {
		words = words[:maxHighlightWords]
	}
	if len(words) == 0 {
		return nil
	}

	lower := asciiLower(text)

	var spans []types.Highlight
	for _, word := range words {
		start := 0
		for count := 0; count < maxMatchesPerWord; count++ {
			pos := strings.Index(lower[start:], word)
			if pos < 0 {
				break
			}
			pos += start

			// Extend to word boundaries so "run" highlights all of "running"
			wordStart := pos
			for wordStart > 0 && isASCIILetter(lower[wordStart-1]) {
				wordStart--
			}
			wordEnd := pos + len(word)
			for wordEnd < len(lower) && isASCIILetter(lower[wordEnd]) {
				wordEnd++
			}

			spans = append(spans, types.Highlight{
				Start: wordStart,
				End:   wordEnd,
				Text:  text[wordStart:wordEnd],
			})
			start = pos + 1
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})

	// Merge overlapping spans
	var merged []types.Highlight
	for _, h := range spans {
		if n := len(merged); n > 0 && h.Start <= merged[n-1].End {
			if h.End > merged[n-1].End {
				merged[n-1].End = h.End
			}
			merged[n-1].Text = text[merged[n-1].Start:merged[n-1].End]
			continue
		}
		merged = append(merged, h)
	}

	if len(merged) > maxHighlightSpans {
		merged = merged[:maxHighlightSpans]
	}
	return merged
}
