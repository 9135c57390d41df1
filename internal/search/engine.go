package search

import (
	"container/heap"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/openhadith/hadith-go/internal/corpus"
	"github.com/openhadith/hadith-go/pkg/types"
)

// Posting-walk and early-termination thresholds.
const (
	rareTermCutoff = 100  // df below this walks the whole posting list
	commonTermCap  = 1000 // postings scored for common terms
	earlyExitScore = 2.0  // limit-th score that allows skipping the final sort
)

// Engine is the ranked retrieval engine. The collections manifest loads at
// construction; the inverted index builds on the first query (or inside New
// when lazy loading is off) and is immutable afterwards. Only the result caches mutate after that, and they
// synchronize internally.
type Engine struct {
	corpusCfg types.CorpusConfig
	searchCfg types.SearchConfig

	loader      *corpus.Loader
	collections map[string]types.Collection

	// Index state, published by ensureReady
	corpus *corpus.Index
	idx    *invertedIndex
	ready  atomic.Bool
	initMu sync.Mutex

	basic    *resultCache
	advanced *resultCache

	// OnIndexBuilt, when set before the index is built, is called once with
	// the stats of the freshly built index. An eager engine builds inside
	// New, before the hook can be set, so it is not called for that build.
	OnIndexBuilt func(types.IndexStats)
}

// New creates an engine over the given data directory. A build failure on
// eager load is returned immediately; with lazy load it surfaces on the
// first query instead.
func New(corpusCfg types.CorpusConfig, searchCfg types.SearchConfig) (*Engine, error) {
	if searchCfg.DefaultLimit <= 0 {
		searchCfg.DefaultLimit = 50
	}
	if searchCfg.CacheSize <= 0 {
		searchCfg.CacheSize = 2048
	}

	e := &Engine{
		corpusCfg: corpusCfg,
		searchCfg: searchCfg,
		loader:    corpus.NewLoader(corpusCfg.DataDir),
		basic:     newResultCache(searchCfg.CacheSize),
		advanced:  newResultCache(searchCfg.CacheSize),
	}

	collections, err := e.loader.LoadCollections()
	if err != nil {
		return nil, err
	}
	e.collections = collections

	if !corpusCfg.LazyLoad {
		if err := e.ensureReady(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ensureReady builds the index on first use. Two concurrent first calls
// build exactly once; a failed build leaves the engine un-ready so the next
// call retries.
func (e *Engine) ensureReady() error {
	if e.ready.Load() {
		return nil
	}

	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.ready.Load() {
		return nil
	}

	loaded, err := e.loader.LoadIndex()
	if err != nil {
		return err
	}

	built := buildIndex(loaded)
	e.corpus = loaded
	e.idx = built
	e.ready.Store(true)

	if e.OnIndexBuilt != nil {
		e.OnIndexBuilt(built.Stats())
	}
	return nil
}

// Ready reports whether the index has been built.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// Stats returns the index statistics; zero until the index is built.
func (e *Engine) Stats() types.IndexStats {
	if !e.ready.Load() {
		return types.IndexStats{}
	}
	return e.idx.Stats()
}

// CacheStats returns counters for the basic and advanced result caches.
func (e *Engine) CacheStats() (basic, advanced types.CacheStats) {
	return e.basic.Stats(), e.advanced.Stats()
}

// Search runs a ranked query and returns up to limit results, best first.
// An empty or tokenless query yields an empty result. limit <= 0 selects
// the configured default.
func (e *Engine) Search(query string, limit int) ([]types.SearchResult, error) {
	limit = e.clampLimit(limit)
	if query == "" {
		return []types.SearchResult{}, nil
	}

	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	queryWords := Tokenize(query)
	if len(queryWords) == 0 {
		return []types.SearchResult{}, nil
	}

	key := cacheKey(NormalizeQuery(query), limit)
	if cached, ok := e.basic.Get(key); ok {
		return cached, nil
	}

	ranked := e.rank(queryWords, limit)

	results := make([]types.SearchResult, 0, len(ranked))
	for _, d := range ranked {
		results = append(results, e.materialize(d.doc, d.score))
	}

	e.basic.Put(key, results)
	return results, nil
}

// SearchAdvanced runs Search and enriches each result with highlight spans
// over the English body. Cached separately from the basic variant; records
// are copied before highlights attach, so cached basic results stay clean.
func (e *Engine) SearchAdvanced(query string, limit int) ([]types.SearchResult, error) {
	limit = e.clampLimit(limit)
	if query == "" {
		return []types.SearchResult{}, nil
	}

	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	if len(Tokenize(query)) == 0 {
		return []types.SearchResult{}, nil
	}

	key := cacheKey(NormalizeQuery(query), limit)
	if cached, ok := e.advanced.Get(key); ok {
		return cached, nil
	}

	base, err := e.Search(query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, len(base))
	for i, r := range base {
		r.Highlights = highlightSpans(r.BodyEn, query)
		results[i] = r
	}

	e.advanced.Put(key, results)
	return results, nil
}

// GetByReference returns the hadith identified by (collection, book, book
// reference), or nil when any of the three is unknown. References compare
// stringified, so the number 7 matches "7".
func (e *Engine) GetByReference(collectionID, bookID, ref string) (*types.SearchResult, error) {
	if err := e.ensureReady(); err != nil {
		return nil, err
	}

	collection, ok := e.corpus.Collections.Get(collectionID)
	if !ok {
		return nil, nil
	}
	book, ok := collection.Books.Get(bookID)
	if !ok {
		return nil, nil
	}

	for i := range book.Hadiths {
		if book.Hadiths[i].BookReference.String() != ref {
			continue
		}
		result := e.assemble(collectionID, bookID, book, int32(i), 0)
		return &result, nil
	}
	return nil, nil
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		limit = e.searchCfg.DefaultLimit
	}
	if e.searchCfg.MaxLimit > 0 && limit > e.searchCfg.MaxLimit {
		limit = e.searchCfg.MaxLimit
	}
	return limit
}

// scoredDoc pairs a doc-id with its accumulated BM25 score.
type scoredDoc struct {
	doc   int32
	score float64
}

// rank accumulates per-document scores over the query terms and selects the
// top limit documents.
func (e *Engine) rank(queryWords []string, limit int) []scoredDoc {
	docScores := make(map[int32]float64)

	for _, word := range queryWords {
		plist, ok := e.idx.postings[word]
		if !ok {
			continue
		}
		df := len(plist)

		// Rare terms walk the whole list; common terms score only a
		// posting-list prefix (the smallest doc-ids).
		walk := plist
		if df >= rareTermCutoff && len(walk) > commonTermCap {
			walk = walk[:commonTermCap]
		}

		for _, p := range walk {
			docScores[p.doc] += e.idx.score(p.tf, e.idx.docs[p.doc].docLength, df)
		}
	}

	if len(docScores) == 0 {
		return nil
	}

	// Early termination: with many candidates, a heap pass over the top
	// 2*limit can settle the ranking without sorting everything.
	if len(docScores) > 3*limit {
		top := topLargest(docScores, 2*limit)
		if len(top) >= limit && top[limit-1].score > earlyExitScore {
			return top[:limit]
		}
	}

	ranked := make([]scoredDoc, 0, len(docScores))
	for doc, score := range docScores {
		ranked = append(ranked, scoredDoc{doc: doc, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].doc < ranked[j].doc
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// materialize is phase two: locate the stored hadith through the metadata
// table and assemble the exposed record.
func (e *Engine) materialize(doc int32, score float64) types.SearchResult {
	meta := e.idx.docs[doc]
	collection, _ := e.corpus.Collections.Get(meta.collectionID)
	book, _ := collection.Books.Get(meta.bookID)
	return e.assemble(meta.collectionID, meta.bookID, book, meta.hadithIdx, score)
}

func (e *Engine) assemble(collectionID, bookID string, book *types.Book, hadithIdx int32, score float64) types.SearchResult {
	h := &book.Hadiths[hadithIdx]

	name := collectionID
	if c, ok := e.collections[collectionID]; ok && c.Name != "" {
		name = c.Name
	}
	bookNo, _ := strconv.Atoi(bookID)

	return types.SearchResult{
		CollectionID: collectionID,
		Collection:   name,
		HadithNo:     h.HadithNumber,
		BookNo:       bookNo,
		BookEn:       book.BookName,
		NarratorEn:   h.EnglishNarrated,
		BodyEn:       h.EnglishText,
		BodyAr:       h.ArabicText,
		BookRefNo:    h.BookReference,
		Score:        score,
	}
}

// docHeap is a min-heap over scoredDoc ordered worst-first: lower score
// first, and for equal scores the larger doc-id, so ties resolve toward
// the smaller doc-id in the final ranking.
type docHeap []scoredDoc

func (h docHeap) Len() int { return len(h) }
func (h docHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].doc > h[j].doc
}
func (h docHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *docHeap) Push(x any)        { *h = append(*h, x.(scoredDoc)) }
func (h *docHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topLargest selects the k highest-scoring candidates without sorting the
// whole set, returned in score-descending order (doc-id ascending on ties).
func topLargest(docScores map[int32]float64, k int) []scoredDoc {
	h := make(docHeap, 0, k)
	heap.Init(&h)

	for doc, score := range docScores {
		cand := scoredDoc{doc: doc, score: score}
		if len(h) < k {
			heap.Push(&h, cand)
			continue
		}
		worst := h[0]
		if worst.score < cand.score || (worst.score == cand.score && worst.doc > cand.doc) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	out := make([]scoredDoc, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(scoredDoc)
	}
	return out
}
