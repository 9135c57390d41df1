// Package search implements the ranked retrieval engine: an in-memory
// inverted index over the hadith corpus with BM25 scoring, result caching,
// and match highlighting.
package search

import (
	"sort"
	"strings"
)

// Tokenize lowercases text with ASCII case folding and extracts every
// maximal run of ASCII letters. Digits, punctuation, whitespace and
// non-ASCII characters act as separators and are discarded.
func Tokenize(text string) []string {
	var tokens []string
	start := -1

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, asciiLower(text[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, asciiLower(text[start:]))
	}

	return tokens
}

// NormalizeQuery reduces a query to its cache key: the distinct tokens,
// sorted, joined with single spaces. Queries that differ only in token
// order, case or repetition share a cache entry. Order does not change the
// summed scores; repetition can, because scoring adds a repeated term's
// contribution again, so such queries get whichever list was cached first.
func NormalizeQuery(query string) string {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(tokens))
	distinct := tokens[:0]
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		distinct = append(distinct, tok)
	}

	sort.Strings(distinct)
	return strings.Join(distinct, " ")
}

// asciiLower lowercases only the bytes 'A'..'Z'. Unlike strings.ToLower it
// never changes the byte length, which keeps highlight offsets aligned with
// the original text.
func asciiLower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}

	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// isASCIILetter reports whether c is an ASCII letter in either case.
func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
