// Package types defines the core data types for the hadith search service.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Scalar holds a corpus field that may arrive as a JSON string or number,
// such as a hadith number or a book reference. The raw encoding is kept so
// the value round-trips unchanged.
type Scalar struct {
	raw json.RawMessage
}

// ScalarFromString builds a Scalar carrying a JSON string.
func ScalarFromString(s string) Scalar {
	b, _ := json.Marshal(s)
	return Scalar{raw: b}
}

// ScalarFromInt builds a Scalar carrying a JSON number.
func ScalarFromInt(n int) Scalar {
	return Scalar{raw: json.RawMessage(strconv.Itoa(n))}
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	s.raw = append(s.raw[:0], b...)
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// IsZero reports whether the scalar was never set or holds JSON null.
func (s Scalar) IsZero() bool {
	return len(s.raw) == 0 || bytes.Equal(s.raw, []byte("null"))
}

// String returns the scalar without JSON quoting, so the number 7 and the
// string "7" compare equal.
func (s Scalar) String() string {
	raw := bytes.TrimSpace(s.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

// Collection is one entry of the collections manifest.
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Hadith is a single stored record inside a book.
type Hadith struct {
	HadithNumber    Scalar `json:"hadithNumber"`
	EnglishNarrated string `json:"englishNarrated"`
	EnglishText     string `json:"englishText"`
	ArabicText      string `json:"arabicText"`
	BookReference   Scalar `json:"bookReference"`
	SearchableText  string `json:"searchableText"`
}

// Book groups an ordered sequence of hadiths under a display name.
type Book struct {
	BookName string   `json:"bookName"`
	Hadiths  []Hadith `json:"hadiths"`
}

// Highlight is a half-open byte span into the English body text.
type Highlight struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// SearchResult is the record returned to callers. Highlights is only
// populated by the advanced search variant.
type SearchResult struct {
	CollectionID string      `json:"collection_id"`
	Collection   string      `json:"collection"`
	HadithNo     Scalar      `json:"hadith_no"`
	BookNo       int         `json:"book_no"`
	BookEn       string      `json:"book_en"`
	NarratorEn   string      `json:"narrator_en"`
	BodyEn       string      `json:"body_en"`
	BodyAr       string      `json:"body_ar"`
	BookRefNo    Scalar      `json:"book_ref_no"`
	Score        float64     `json:"score,omitempty"`
	Highlights   []Highlight `json:"highlights,omitempty"`
}

// IndexStats describes a built index.
type IndexStats struct {
	TotalDocs    int     `json:"total_docs"`
	AvgDocLength float64 `json:"avg_doc_length"`
	VocabSize    int     `json:"vocab_size"`
}

// CacheStats reports hit/miss counters for a result cache.
type CacheStats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}
