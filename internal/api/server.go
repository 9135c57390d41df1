// Package api provides the HTTP façade over the search engine.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openhadith/hadith-go/internal/events"
	"github.com/openhadith/hadith-go/internal/search"
	"github.com/openhadith/hadith-go/pkg/types"
)

// Server is the HTTP server for the search service.
type Server struct {
	config  types.ServerConfig
	engine  *search.Engine
	emitter *events.Emitter

	httpServer   *http.Server
	startTime    time.Time
	requestCount atomic.Uint64
}

// NewServer creates a new HTTP server around an engine. emitter may be nil.
func NewServer(config types.ServerConfig, engine *search.Engine, emitter *events.Emitter) *Server {
	return &Server{
		config:    config,
		engine:    engine,
		emitter:   emitter,
		startTime: time.Now(),
	}
}

// Handler builds the route tree. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.config.EnableCORS {
		r.Use(s.corsMiddleware)
	}
	r.Use(s.loggingMiddleware)

	// Search API
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/v2/search", s.handleSearchAdvanced)
	r.Get("/api/{collectionID}/{book}/{ref}", s.handleGetByReference)

	// Single-hadith HTML view
	r.Get("/b/{collectionID}/{book}/{ref}", s.handleHadithPage)

	// Health and metrics
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	// Static SPA fallback
	if s.config.StaticDir != "" {
		r.NotFound(s.handleStatic)
	}

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware allows cross-origin requests from any origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.requestCount.Add(1)

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, lrw.statusCode, time.Since(start))
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// handleSearch serves GET /api/search?search=<q>&limit=<n>.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.serveSearch(w, r, false)
}

// handleSearchAdvanced serves GET /api/v2/search, adding highlight spans.
func (s *Server) handleSearchAdvanced(w http.ResponseWriter, r *http.Request) {
	s.serveSearch(w, r, true)
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request, advanced bool) {
	query := r.URL.Query().Get("search")
	if query == "" {
		writeJSON(w, http.StatusOK, []types.SearchResult{})
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	var (
		results []types.SearchResult
		err     error
	)
	if advanced {
		results, err = s.engine.SearchAdvanced(query, limit)
	} else {
		results, err = s.engine.Search(query, limit)
	}
	if err != nil {
		// User input never produces engine errors; this is a corpus
		// problem surfaced by lazy initialization.
		log.Printf("search error: %v", err)
		writeJSON(w, http.StatusOK, []types.SearchResult{})
		return
	}

	s.emitter.Emit(events.QueryPerformedEvent(query, advanced, len(results)))

	if results == nil {
		results = []types.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleGetByReference serves GET /api/{collectionID}/{book}/{ref}.
func (s *Server) handleGetByReference(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	book := chi.URLParam(r, "book")
	ref := chi.URLParam(r, "ref")

	result, err := s.engine.GetByReference(collectionID, book, ref)
	if err != nil {
		log.Printf("reference lookup error: %v", err)
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}

	s.emitter.Emit(events.ReferenceLookupEvent(collectionID, book, ref, result != nil))

	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleHadithPage serves GET /b/{collectionID}/{book}/{ref} as HTML.
func (s *Server) handleHadithPage(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	book := chi.URLParam(r, "book")
	ref := chi.URLParam(r, "ref")

	result, err := s.engine.GetByReference(collectionID, book, ref)
	if err != nil {
		log.Printf("reference lookup error: %v", err)
	}

	if result == nil {
		renderNotFound(w)
		return
	}
	renderHadith(w, result)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.engine.Ready(),
	})
}

// handleMetrics reports service counters and index statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	basic, advanced := s.engine.CacheStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"request_count":  s.requestCount.Load(),
		"index":          s.engine.Stats(),
		"cache_basic":    basic,
		"cache_advanced": advanced,
	})
}

// handleStatic serves the frontend build, falling back to index.html so
// client-side routes resolve.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path != "" && !strings.Contains(path, "..") {
		full := filepath.Join(s.config.StaticDir, filepath.FromSlash(path))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
	}
	http.ServeFile(w, r, filepath.Join(s.config.StaticDir, "index.html"))
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
