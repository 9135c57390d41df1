package search

import (
	"math"

	"github.com/openhadith/hadith-go/internal/corpus"
	"github.com/openhadith/hadith-go/pkg/types"
)

// BM25 parameters.
const (
	BM25K1 = 1.2  // Term saturation parameter
	BM25B  = 0.75 // Length normalization parameter
)

// posting records one occurrence list entry: which document a term appears
// in and how often.
type posting struct {
	doc int32
	tf  int32
}

// docMeta is the lightweight per-document record consulted during scoring
// and used to locate the stored hadith at materialization time.
type docMeta struct {
	collectionID string
	bookID       string
	hadithIdx    int32
	docLength    int32
}

// invertedIndex is the immutable index built once from the loaded corpus.
// Posting lists are append-only during the build, so within each list the
// doc-ids ascend in build-traversal order.
type invertedIndex struct {
	postings  map[string][]posting
	docs      []docMeta
	totalDocs int
	avgDocLen float64
}

// buildIndex walks the corpus in document order: collections and books in
// key order of the loaded file, hadiths in array order. Each hadith gets
// the next dense doc-id.
func buildIndex(idx *corpus.Index) *invertedIndex {
	ii := &invertedIndex{
		postings: make(map[string][]posting),
	}

	totalLen := 0
	for _, collectionID := range idx.Collections.IDs() {
		collection, _ := idx.Collections.Get(collectionID)
		for _, bookID := range collection.Books.IDs() {
			book, _ := collection.Books.Get(bookID)
			for hadithIdx := range book.Hadiths {
				tokens := Tokenize(book.Hadiths[hadithIdx].SearchableText)
				docID := int32(len(ii.docs))

				ii.docs = append(ii.docs, docMeta{
					collectionID: collectionID,
					bookID:       bookID,
					hadithIdx:    int32(hadithIdx),
					docLength:    int32(len(tokens)),
				})
				totalLen += len(tokens)

				counts := make(map[string]int32, len(tokens))
				for _, tok := range tokens {
					counts[tok]++
				}
				for tok, tf := range counts {
					ii.postings[tok] = append(ii.postings[tok], posting{doc: docID, tf: tf})
				}
			}
		}
	}

	ii.totalDocs = len(ii.docs)
	if ii.totalDocs > 0 {
		ii.avgDocLen = float64(totalLen) / float64(ii.totalDocs)
	}

	return ii
}

// score computes the BM25 contribution of one term occurrence.
//
// idf = ln((N - df + 0.5) / (df + 0.5) + 1), non-negative for df in [1, N].
func (ii *invertedIndex) score(tf, docLen int32, df int) float64 {
	n := float64(ii.totalDocs)
	idf := math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)

	tfF := float64(tf)
	norm := (tfF * (BM25K1 + 1)) /
		(tfF + BM25K1*(1-BM25B+BM25B*float64(docLen)/ii.avgDocLen))

	return idf * norm
}

// Stats returns the corpus statistics of the built index.
func (ii *invertedIndex) Stats() types.IndexStats {
	return types.IndexStats{
		TotalDocs:    ii.totalDocs,
		AvgDocLength: ii.avgDocLen,
		VocabSize:    len(ii.postings),
	}
}
