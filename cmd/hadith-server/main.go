// Package main provides the entry point for the hadith search service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openhadith/hadith-go/internal/api"
	"github.com/openhadith/hadith-go/internal/events"
	"github.com/openhadith/hadith-go/internal/search"
	"github.com/openhadith/hadith-go/pkg/types"
)

func main() {
	config := parseFlags()

	emitter, err := events.NewEmitter(config.Events.Dir)
	if err != nil {
		log.Fatalf("Failed to create event emitter: %v", err)
	}
	defer emitter.Close()

	start := time.Now()
	engine, err := search.New(config.Corpus, config.Search)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	engine.OnIndexBuilt = func(stats types.IndexStats) {
		log.Printf("Indexed %d hadiths (vocabulary %d words)", stats.TotalDocs, stats.VocabSize)
		emitter.Emit(events.IndexBuiltEvent(stats))
	}
	if engine.Ready() {
		// Eager load built the index inside New, before the hook was set.
		engine.OnIndexBuilt(engine.Stats())
	}
	if config.Corpus.LazyLoad {
		log.Printf("Lazy initialization complete in %s; index builds on first search", time.Since(start))
	} else {
		log.Printf("Full initialization complete in %s", time.Since(start))
	}

	server := api.NewServer(config.Server, engine, emitter)

	// Handle shutdown gracefully
	shutdownDone := make(chan struct{})
	go handleShutdown(server, config.Server.ShutdownTimeout, shutdownDone)

	log.Printf("Starting hadith search service on port %d", config.Server.Port)
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-shutdownDone
	log.Println("Hadith search service stopped")
}

func parseFlags() *types.Config {
	config := types.DefaultConfig()

	// Server flags
	flag.IntVar(&config.Server.Port, "port", config.Server.Port, "HTTP port")
	flag.IntVar(&config.Server.Port, "p", config.Server.Port, "HTTP port (shorthand)")
	flag.StringVar(&config.Server.StaticDir, "static-dir", config.Server.StaticDir, "Frontend build directory (empty disables static serving)")
	flag.BoolVar(&config.Server.EnableCORS, "cors", config.Server.EnableCORS, "Enable CORS headers")

	// Corpus flags
	flag.StringVar(&config.Corpus.DataDir, "data-dir", config.Corpus.DataDir, "Corpus data directory")
	flag.StringVar(&config.Corpus.DataDir, "d", config.Corpus.DataDir, "Corpus data directory (shorthand)")
	flag.BoolVar(&config.Corpus.LazyLoad, "lazy", config.Corpus.LazyLoad, "Defer index build to the first search")

	// Search flags
	flag.IntVar(&config.Search.DefaultLimit, "limit", config.Search.DefaultLimit, "Default result limit")
	flag.IntVar(&config.Search.CacheSize, "cache-size", config.Search.CacheSize, "Result cache capacity per variant")

	// Events flags
	flag.StringVar(&config.Events.Dir, "events-dir", config.Events.Dir, "Events JSONL directory (empty disables)")

	// Logging flags
	flag.StringVar(&config.Log.Level, "log-level", config.Log.Level, "Log level (debug, info, warn, error); stored in the config, log output is not filtered by it")

	help := flag.Bool("help", false, "Show help")
	flag.BoolVar(help, "h", false, "Show help (shorthand)")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	return config
}

func printUsage() {
	fmt.Print(`Hadith Search Service - BM25 full-text search over a JSON hadith corpus

Usage:
  hadith-server [options]

Options:
  -p, --port PORT          HTTP port (default: 8000)
  -d, --data-dir DIR       Corpus data directory (default: ./data)
  --static-dir DIR         Frontend build directory (default: disabled)
  --lazy                   Defer index build to the first search (default: true)
  --limit N                Default result limit (default: 50)
  --cache-size N           Result cache capacity per variant (default: 2048)
  --cors                   Enable CORS headers (default: true)
  --events-dir DIR         Events JSONL directory (default: disabled)
  --log-level LEVEL        Log level: debug, info, warn, error (default: info);
                           stored in the config, log output is not filtered by it
  -h, --help               Show this help

Examples:
  # Start with default settings
  hadith-server

  # Build the index eagerly at startup
  hadith-server -d ./data --lazy=false
`)
}

func handleShutdown(server *api.Server, timeout time.Duration, done chan struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
