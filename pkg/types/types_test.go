package types

import (
	"encoding/json"
	"testing"
)

func TestScalar_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // re-encoded form
	}{
		{"number", `7`, `7`},
		{"string", `"7b"`, `"7b"`},
		{"quoted number", `"7"`, `"7"`},
		{"null", `null`, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scalar
			if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("round trip %s -> %s, want %s", tt.in, out, tt.want)
			}
		})
	}
}

func TestScalar_String(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`7`, "7"},
		{`"7"`, "7"},
		{`"12b"`, "12b"},
		{`null`, ""},
	}

	for _, tt := range tests {
		var s Scalar
		if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if got := s.String(); got != tt.want {
			t.Errorf("Scalar(%s).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScalar_StringifiedEquality(t *testing.T) {
	// The number 7 and the string "7" must compare equal when stringified;
	// reference lookup depends on it.
	var num, str Scalar
	if err := json.Unmarshal([]byte(`7`), &num); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`"7"`), &str); err != nil {
		t.Fatal(err)
	}
	if num.String() != str.String() {
		t.Errorf("%q != %q", num.String(), str.String())
	}
}

func TestScalar_Constructors(t *testing.T) {
	if got := ScalarFromInt(42).String(); got != "42" {
		t.Errorf("ScalarFromInt(42).String() = %q", got)
	}
	if got := ScalarFromString("12b").String(); got != "12b" {
		t.Errorf("ScalarFromString(12b).String() = %q", got)
	}

	out, err := json.Marshal(ScalarFromInt(42))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "42" {
		t.Errorf("ScalarFromInt(42) marshals to %s, want 42", out)
	}
}

func TestScalar_IsZero(t *testing.T) {
	var empty Scalar
	if !empty.IsZero() {
		t.Error("zero Scalar not IsZero")
	}
	if ScalarFromInt(0).IsZero() {
		t.Error("ScalarFromInt(0) reported IsZero")
	}
}

func TestSearchResult_JSONShape(t *testing.T) {
	r := SearchResult{
		CollectionID: "bukhari",
		Collection:   "Sahih al-Bukhari",
		HadithNo:     ScalarFromInt(1),
		BookNo:       1,
		BookEn:       "Revelation",
		BodyEn:       "body",
		BookRefNo:    ScalarFromInt(1),
		Score:        1.5,
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"collection_id", "collection", "hadith_no", "book_no", "book_en", "narrator_en", "body_en", "body_ar", "book_ref_no", "score"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("serialized result missing %q", key)
		}
	}
	if _, ok := decoded["highlights"]; ok {
		t.Error("highlights present on a basic result")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Search.CacheSize != 2048 {
		t.Errorf("CacheSize = %d, want 2048", cfg.Search.CacheSize)
	}
	if cfg.Search.DefaultLimit != 50 {
		t.Errorf("DefaultLimit = %d, want 50", cfg.Search.DefaultLimit)
	}
	if !cfg.Corpus.LazyLoad {
		t.Error("LazyLoad = false, want true")
	}
}
