package search

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/openhadith/hadith-go/pkg/types"
)

// newTestEngine writes the given corpus files into a temp data directory
// and builds a lazy engine over it. Empty strings skip the file, exercising
// the missing-file-is-empty behavior.
func newTestEngine(t *testing.T, collectionsJSON, indexJSON string) *Engine {
	t.Helper()
	dir := t.TempDir()

	if collectionsJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "collections.json"), []byte(collectionsJSON), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if indexJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "search-index.json"), []byte(indexJSON), 0644); err != nil {
			t.Fatal(err)
		}
	}

	e, err := New(
		types.CorpusConfig{DataDir: dir, LazyLoad: true},
		types.SearchConfig{DefaultLimit: 50, CacheSize: 2048},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

const singletonCollections = `{"collections": [{"id": "c1", "name": "Collection One"}]}`

const singletonIndex = `{
	"collections": {
		"c1": {
			"books": {
				"1": {
					"bookName": "Book One",
					"hadiths": [
						{
							"hadithNumber": 1,
							"englishNarrated": "Narrated Someone:",
							"englishText": "The prophet said X",
							"arabicText": "قال النبي",
							"bookReference": 7,
							"searchableText": "the prophet said x"
						}
					]
				}
			}
		}
	}
}`

func TestSearch_SingletonCorpus(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	results, err := e.Search("prophet", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	if r.CollectionID != "c1" {
		t.Errorf("CollectionID = %q, want %q", r.CollectionID, "c1")
	}
	if r.Collection != "Collection One" {
		t.Errorf("Collection = %q, want manifest display name", r.Collection)
	}
	if r.BookNo != 1 {
		t.Errorf("BookNo = %d, want 1", r.BookNo)
	}
	if r.BookEn != "Book One" {
		t.Errorf("BookEn = %q, want %q", r.BookEn, "Book One")
	}
	if r.BodyEn != "The prophet said X" {
		t.Errorf("BodyEn = %q", r.BodyEn)
	}
	if r.Score <= 0 {
		t.Errorf("Score = %v, want > 0", r.Score)
	}

	none, err := e.Search("nothere", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Search(nothere) = %+v, want empty", none)
	}
}

func TestGetByReference(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	r, err := e.GetByReference("c1", "1", "7")
	if err != nil {
		t.Fatalf("GetByReference() error: %v", err)
	}
	if r == nil {
		t.Fatal("GetByReference(c1, 1, 7) = nil, want the hadith")
	}
	if r.BodyEn != "The prophet said X" {
		t.Errorf("BodyEn = %q", r.BodyEn)
	}
	if r.BookRefNo.String() != "7" {
		t.Errorf("BookRefNo = %q, want 7", r.BookRefNo.String())
	}
	if r.Score != 0 {
		t.Errorf("Score = %v, want 0 for reference lookup", r.Score)
	}

	tests := []struct {
		name                  string
		collection, book, ref string
	}{
		{"unknown reference", "c1", "1", "8"},
		{"unknown book", "c1", "9", "7"},
		{"unknown collection", "nope", "1", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.GetByReference(tt.collection, tt.book, tt.ref)
			if err != nil {
				t.Fatalf("GetByReference() error: %v", err)
			}
			if r != nil {
				t.Errorf("got %+v, want nil", r)
			}
		})
	}
}

func TestGetByReference_RoundTrip(t *testing.T) {
	// Every hadith is reachable via its own reference triple.
	e := newTestEngine(t, smallCollectionsDoc, smallIndexDoc)

	triples := []struct {
		collection, book, ref, body string
	}{
		{"c1", "1", "1", "A"},
		{"c1", "1", "2", "B"},
		{"c1", "2", "1", "C"},
		{"c2", "1", "5", "D"},
	}
	for _, tt := range triples {
		r, err := e.GetByReference(tt.collection, tt.book, tt.ref)
		if err != nil {
			t.Fatalf("GetByReference(%s/%s/%s) error: %v", tt.collection, tt.book, tt.ref, err)
		}
		if r == nil {
			t.Fatalf("GetByReference(%s/%s/%s) = nil", tt.collection, tt.book, tt.ref)
		}
		if r.BodyEn != tt.body {
			t.Errorf("GetByReference(%s/%s/%s).BodyEn = %q, want %q", tt.collection, tt.book, tt.ref, r.BodyEn, tt.body)
		}
	}
}

const smallCollectionsDoc = `{"collections": [{"id": "c1", "name": "Collection One"}, {"id": "c2", "name": "Collection Two"}]}`

func TestSearch_EmptyQueries(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	for _, q := range []string{"", "   ", "42 !? ...", "،؟"} {
		results, err := e.Search(q, 50)
		if err != nil {
			t.Fatalf("Search(%q) error: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", q, len(results))
		}
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	e := newTestEngine(t, "", "")

	results, err := e.Search("anything", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an empty corpus, want 0", len(results))
	}
}

func TestSearch_MalformedCorpus(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "search-index.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := New(
		types.CorpusConfig{DataDir: dir, LazyLoad: true},
		types.SearchConfig{},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// The build failure surfaces on the first query and the engine stays
	// un-ready so the next call retries.
	if _, err := e.Search("anything", 50); err == nil {
		t.Fatal("Search() on malformed corpus succeeded, want error")
	}
	if e.Ready() {
		t.Error("engine became ready after a failed build")
	}
	if _, err := e.Search("anything", 50); err == nil {
		t.Fatal("retry after failed build succeeded, want error")
	}
}

func TestSearch_RankingByTermFrequency(t *testing.T) {
	// Two hadiths of equal length; A mentions mercy twice, B once.
	index := `{
		"collections": {
			"c1": {
				"books": {
					"1": {
						"bookName": "Book One",
						"hadiths": [
							{"hadithNumber": 1, "bookReference": 1, "englishText": "B", "searchableText": "mercy shown to people today"},
							{"hadithNumber": 2, "bookReference": 2, "englishText": "A", "searchableText": "mercy upon mercy for people"}
						]
					}
				}
			}
		}
	}`
	e := newTestEngine(t, singletonCollections, index)

	results, err := e.Search("mercy", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].BodyEn != "A" || results[1].BodyEn != "B" {
		t.Errorf("order = [%s %s], want [A B]", results[0].BodyEn, results[1].BodyEn)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not strictly decreasing: %v, %v", results[0].Score, results[1].Score)
	}
}

func TestSearch_IDFEffectAndTieBreak(t *testing.T) {
	index := `{
		"collections": {
			"c1": {
				"books": {
					"1": {
						"bookName": "Book One",
						"hadiths": [
							{"hadithNumber": 1, "bookReference": 1, "englishText": "A", "searchableText": "the prayer"},
							{"hadithNumber": 2, "bookReference": 2, "englishText": "B", "searchableText": "the fasting"},
							{"hadithNumber": 3, "bookReference": 3, "englishText": "C", "searchableText": "the charity"}
						]
					}
				}
			}
		}
	}`
	e := newTestEngine(t, singletonCollections, index)

	results, err := e.Search("the prayer", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].BodyEn != "A" {
		t.Errorf("first result = %s, want A (matches the rare term)", results[0].BodyEn)
	}
	// B and C tie on the common term alone; doc-id ascending breaks it.
	if results[1].BodyEn != "B" || results[2].BodyEn != "C" {
		t.Errorf("tie order = [%s %s], want [B C]", results[1].BodyEn, results[2].BodyEn)
	}
	if results[1].Score != results[2].Score {
		t.Errorf("B and C scores differ: %v vs %v", results[1].Score, results[2].Score)
	}
}

func TestSearch_NormalizedCacheHit(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	first, err := e.Search("Prophet Said", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	missesAfterFirst := e.basic.Stats().Misses

	second, err := e.Search("  said   PROPHET  ", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("equivalent queries returned different result lists")
	}

	stats := e.basic.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1 (second query should hit)", stats.Hits)
	}
	if stats.Misses != missesAfterFirst {
		t.Errorf("Misses grew to %d, second query re-entered scoring", stats.Misses)
	}
}

func TestSearch_Stability(t *testing.T) {
	e := newTestEngine(t, smallCollectionsDoc, smallIndexDoc)

	first, err := e.Search("the mercy prayer", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	second, err := e.Search("the mercy prayer", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated identical calls returned different results")
	}
}

func TestSearch_LimitApplied(t *testing.T) {
	var hadiths []string
	for i := 0; i < 20; i++ {
		hadiths = append(hadiths, fmt.Sprintf(
			`{"hadithNumber": %d, "bookReference": %d, "englishText": "h%d", "searchableText": "mercy and kindness number %s"}`,
			i, i, i, numberWord(i)))
	}
	index := fmt.Sprintf(`{"collections": {"c1": {"books": {"1": {"bookName": "Book One", "hadiths": [%s]}}}}}`,
		strings.Join(hadiths, ","))
	e := newTestEngine(t, singletonCollections, index)

	results, err := e.Search("mercy", 5)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("got %d results, want 5", len(results))
	}
}

// numberWord spells i so every searchableText stays letters-only.
func numberWord(i int) string {
	words := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	if i < 10 {
		return words[i]
	}
	return words[i/10] + " " + words[i%10]
}

func TestSearch_CommonWordCapping(t *testing.T) {
	// 1500 hadiths all containing "the"; only doc 1234 also contains
	// "zenith". The common-term walk caps at the first 1000 postings, but
	// the rare term still reaches doc 1234.
	var hadiths []string
	for i := 0; i < 1500; i++ {
		text := "the"
		if i == 1234 {
			text = "the zenith"
		}
		hadiths = append(hadiths, fmt.Sprintf(
			`{"hadithNumber": %d, "bookReference": %d, "englishText": "doc%d", "searchableText": "%s"}`,
			i, i, i, text))
	}
	index := fmt.Sprintf(`{"collections": {"c1": {"books": {"1": {"bookName": "Book One", "hadiths": [%s]}}}}}`,
		strings.Join(hadiths, ","))
	e := newTestEngine(t, singletonCollections, index)

	results, err := e.Search("the zenith", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	var hit *types.SearchResult
	for i := range results {
		if results[i].BodyEn == "doc1234" {
			hit = &results[i]
			break
		}
	}
	if hit == nil {
		t.Fatal("doc 1234 missing from results")
	}

	// Its score is at least the zenith contribution on its own.
	zenith := e.idx.score(1, 2, 1)
	if hit.Score < zenith {
		t.Errorf("doc 1234 score = %v, want >= %v", hit.Score, zenith)
	}
	if results[0].BodyEn != "doc1234" {
		t.Errorf("top result = %s, want doc1234 (rare term dominates)", results[0].BodyEn)
	}
}

func TestSearchAdvanced_Highlights(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	results, err := e.SearchAdvanced("prophet", 50)
	if err != nil {
		t.Fatalf("SearchAdvanced() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	hs := results[0].Highlights
	if len(hs) != 1 {
		t.Fatalf("got %d highlights, want 1: %+v", len(hs), hs)
	}
	if hs[0].Text != "prophet" {
		t.Errorf("highlight = %q, want %q", hs[0].Text, "prophet")
	}
	if results[0].BodyEn[hs[0].Start:hs[0].End] != hs[0].Text {
		t.Error("highlight offsets do not slice to the highlight text")
	}
}

func TestSearchAdvanced_DoesNotMutateBasicCache(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	if _, err := e.SearchAdvanced("prophet", 50); err != nil {
		t.Fatalf("SearchAdvanced() error: %v", err)
	}

	basic, err := e.Search("prophet", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(basic) == 1 && basic[0].Highlights != nil {
		t.Error("advanced search leaked highlights into the basic cache")
	}
}

func TestSearchAdvanced_SeparateCache(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	if _, err := e.Search("prophet", 50); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SearchAdvanced("prophet", 50); err != nil {
		t.Fatal(err)
	}

	if e.basic.Len() != 1 {
		t.Errorf("basic cache Len = %d, want 1", e.basic.Len())
	}
	if e.advanced.Len() != 1 {
		t.Errorf("advanced cache Len = %d, want 1", e.advanced.Len())
	}
}

func TestEngine_ConcurrentFirstCalls(t *testing.T) {
	e := newTestEngine(t, singletonCollections, singletonIndex)

	builds := 0
	e.OnIndexBuilt = func(types.IndexStats) { builds++ }

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Search("prophet", 50); err != nil {
				t.Errorf("Search() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("index built %d times, want 1", builds)
	}
}

func TestEngine_EagerLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "collections.json"), []byte(singletonCollections), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "search-index.json"), []byte(singletonIndex), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := New(
		types.CorpusConfig{DataDir: dir, LazyLoad: false},
		types.SearchConfig{},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !e.Ready() {
		t.Error("eager engine not ready after New()")
	}
	if e.Stats().TotalDocs != 1 {
		t.Errorf("TotalDocs = %d, want 1", e.Stats().TotalDocs)
	}
}

func TestEngine_CollectionNameFallsBackToID(t *testing.T) {
	// No manifest entry for the collection; the ID stands in for the name.
	e := newTestEngine(t, `{"collections": []}`, singletonIndex)

	results, err := e.Search("prophet", 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Collection != "c1" {
		t.Errorf("Collection = %q, want fallback to ID", results[0].Collection)
	}
}
