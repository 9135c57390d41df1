// Package main provides a CLI tool to query a running hadith search server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func main() {
	serverURL := flag.String("url", "http://localhost:8000", "Hadith server URL")
	flag.StringVar(serverURL, "u", "http://localhost:8000", "Hadith server URL (shorthand)")

	// Commands
	query := flag.String("query", "", "Run a ranked search")
	ref := flag.String("ref", "", "Look up a hadith by collection/book/reference")
	stats := flag.Bool("stats", false, "Show index and cache statistics")

	// Options
	limit := flag.Int("limit", 0, "Result limit for --query")
	highlights := flag.Bool("highlights", false, "Use the advanced search variant")
	jsonOutput := flag.Bool("json", false, "Output as JSON")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Hadith Inspector - Query a running hadith search server

Usage: hadith-inspect [OPTIONS] COMMAND

Commands:
  --query "text"          Run a ranked search
  --ref c/b/r             Look up one hadith, e.g. --ref bukhari/2/13
  --stats                 Show index and cache statistics

Options:
  -u, --url URL           Server URL (default: http://localhost:8000)
  --limit N               Result limit for --query
  --highlights            Use the advanced search variant
  --json                  Output as JSON

Examples:
  hadith-inspect --query "mercy"
  hadith-inspect --query "mercy" --highlights --limit 5
  hadith-inspect --ref bukhari/2/13
  hadith-inspect --stats
`)
	}

	flag.Parse()

	if *query == "" && *ref == "" && !*stats {
		flag.Usage()
		os.Exit(1)
	}

	client := &apiClient{baseURL: *serverURL}

	if *query != "" {
		client.search(*query, *limit, *highlights, *jsonOutput)
	}
	if *ref != "" {
		client.lookup(*ref, *jsonOutput)
	}
	if *stats {
		client.stats(*jsonOutput)
	}
}

type apiClient struct {
	baseURL string
}

func (c *apiClient) get(endpoint string) ([]byte, int) {
	resp, err := httpClient.Get(c.baseURL + endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read response: %v\n", err)
		os.Exit(1)
	}
	return data, resp.StatusCode
}

type searchResult struct {
	CollectionID string  `json:"collection_id"`
	Collection   string  `json:"collection"`
	BookNo       int     `json:"book_no"`
	BookEn       string  `json:"book_en"`
	NarratorEn   string  `json:"narrator_en"`
	BodyEn       string  `json:"body_en"`
	BookRefNo    any     `json:"book_ref_no"`
	Score        float64 `json:"score"`
}

func (c *apiClient) search(query string, limit int, highlights, jsonOutput bool) {
	endpoint := "/api/search"
	if highlights {
		endpoint = "/api/v2/search"
	}
	q := url.Values{}
	q.Set("search", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	data, _ := c.get(endpoint + "?" + q.Encode())
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var results []searchResult
	if err := json.Unmarshal(data, &results); err != nil {
		fmt.Fprintf(os.Stderr, "parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d results for %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Printf("%2d. [%.3f] %s %v (%s, book %d)\n", i+1, r.Score, r.CollectionID, r.BookRefNo, r.BookEn, r.BookNo)
		fmt.Printf("    %s\n", truncate(r.BodyEn, 160))
	}
}

func (c *apiClient) lookup(ref string, jsonOutput bool) {
	parts := strings.SplitN(ref, "/", 3)
	if len(parts) != 3 {
		fmt.Fprintln(os.Stderr, "--ref wants collection/book/reference, e.g. bukhari/2/13")
		os.Exit(1)
	}

	endpoint := "/api/" + url.PathEscape(parts[0]) + "/" + url.PathEscape(parts[1]) + "/" + url.PathEscape(parts[2])
	data, status := c.get(endpoint)

	if status == http.StatusNotFound {
		fmt.Printf("no hadith at %s\n", ref)
		return
	}
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var r searchResult
	if err := json.Unmarshal(data, &r); err != nil {
		fmt.Fprintf(os.Stderr, "parse response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s %v — %s (book %d)\n", r.Collection, r.BookRefNo, r.BookEn, r.BookNo)
	if r.NarratorEn != "" {
		fmt.Printf("%s\n", r.NarratorEn)
	}
	fmt.Printf("%s\n", r.BodyEn)
}

func (c *apiClient) stats(jsonOutput bool) {
	data, _ := c.get("/metrics")
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	type cacheCounters struct {
		Size   int    `json:"size"`
		Hits   uint64 `json:"hits"`
		Misses uint64 `json:"misses"`
	}
	var m struct {
		UptimeSeconds int64 `json:"uptime_seconds"`
		RequestCount  int64 `json:"request_count"`
		Index         struct {
			TotalDocs    int     `json:"total_docs"`
			AvgDocLength float64 `json:"avg_doc_length"`
			VocabSize    int     `json:"vocab_size"`
		} `json:"index"`
		CacheBasic    cacheCounters `json:"cache_basic"`
		CacheAdvanced cacheCounters `json:"cache_advanced"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		fmt.Fprintf(os.Stderr, "parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("uptime:      %ds\n", m.UptimeSeconds)
	fmt.Printf("requests:    %d\n", m.RequestCount)
	fmt.Printf("documents:   %d\n", m.Index.TotalDocs)
	fmt.Printf("avg length:  %.1f tokens\n", m.Index.AvgDocLength)
	fmt.Printf("vocabulary:  %d words\n", m.Index.VocabSize)
	fmt.Printf("cache basic: %d entries, %d hits, %d misses\n", m.CacheBasic.Size, m.CacheBasic.Hits, m.CacheBasic.Misses)
	fmt.Printf("cache adv:   %d entries, %d hits, %d misses\n", m.CacheAdvanced.Size, m.CacheAdvanced.Hits, m.CacheAdvanced.Misses)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
