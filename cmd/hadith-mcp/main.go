// Package main provides an MCP server that wraps the hadith search HTTP
// service. This is a thin client that proxies requests to the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "0.1.0"

var httpClient = &http.Client{Timeout: 30 * time.Second}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Hadith service HTTP URL")
	flag.StringVar(baseURL, "u", "http://localhost:8000", "Hadith service HTTP URL (shorthand)")

	help := flag.Bool("help", false, "Show help")
	flag.BoolVar(help, "h", false, "Show help (shorthand)")

	flag.Parse()

	if *help {
		fmt.Fprintf(os.Stderr, `Hadith Search MCP Client v%s

MCP server that proxies requests to the hadith search HTTP service.
Requires hadith-server to be running.

Usage: hadith-mcp [OPTIONS]

Options:
  -u, --url URL    Hadith service URL (default: http://localhost:8000)
  -h, --help       Show this help

The HTTP server must be running:
  hadith-server -d ./data -p 8000
`, version)
		os.Exit(0)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hadith-mcp",
		Version: version,
	}, nil)

	proxy := &proxyClient{baseURL: *baseURL}
	registerTools(server, proxy)

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Run MCP server over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}

type proxyClient struct {
	baseURL string
}

func (p *proxyClient) get(endpoint string) ([]byte, int, error) {
	resp, err := httpClient.Get(p.baseURL + endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	return data, resp.StatusCode, nil
}

// Tool argument types

type SearchArgs struct {
	Query string `json:"query" jsonschema:"Search query text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 50)"`
}

type ReferenceArgs struct {
	Collection string `json:"collection" jsonschema:"Collection ID, e.g. bukhari"`
	Book       string `json:"book" jsonschema:"Book number within the collection"`
	Reference  string `json:"reference" jsonschema:"Book reference number of the hadith"`
}

func registerTools(server *mcp.Server, proxy *proxyClient) {
	// hadith_search - ranked full-text search
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hadith_search",
		Description: "Full-text BM25 search over the hadith corpus. Returns ranked hadiths with bibliographic fields.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
		return proxy.search("/api/search", args)
	})

	// hadith_search_advanced - search with highlight spans
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hadith_search_advanced",
		Description: "Like hadith_search, but each result carries highlight spans over the English text.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
		return proxy.search("/api/v2/search", args)
	})

	// hadith_get_by_reference - exact lookup
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hadith_get_by_reference",
		Description: "Fetch a single hadith by collection, book number and book reference.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ReferenceArgs) (*mcp.CallToolResult, any, error) {
		endpoint := "/api/" + url.PathEscape(args.Collection) +
			"/" + url.PathEscape(args.Book) +
			"/" + url.PathEscape(args.Reference)
		data, status, err := proxy.get(endpoint)
		if err != nil {
			return nil, nil, err
		}
		if status == http.StatusNotFound {
			return textResult("No hadith found for " + args.Collection + "/" + args.Book + "/" + args.Reference), nil, nil
		}
		if status >= 400 {
			return nil, nil, fmt.Errorf("HTTP %d: %s", status, string(data))
		}
		return textResult(string(data)), nil, nil
	})
}

func (p *proxyClient) search(endpoint string, args SearchArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("search", args.Query)
	if args.Limit > 0 {
		q.Set("limit", strconv.Itoa(args.Limit))
	}

	data, status, err := p.get(endpoint + "?" + q.Encode())
	if err != nil {
		return nil, nil, err
	}
	if status >= 400 {
		return nil, nil, fmt.Errorf("HTTP %d: %s", status, string(data))
	}

	// Surface the result count ahead of the raw JSON payload.
	var results []json.RawMessage
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, nil, fmt.Errorf("parse response: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d results\n", len(results))
	sb.Write(data)
	return textResult(sb.String()), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
