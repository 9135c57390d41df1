package types

import (
	"time"
)

// Config holds all configuration for the search service.
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Corpus configuration
	Corpus CorpusConfig `json:"corpus"`

	// Search configuration
	Search SearchConfig `json:"search"`

	// Events configuration
	Events EventsConfig `json:"events"`

	// Logging configuration
	Log LogConfig `json:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	StaticDir       string        `json:"static_dir"` // SPA root; empty disables static serving
	EnableCORS      bool          `json:"enable_cors"`
}

// CorpusConfig holds corpus file configuration.
type CorpusConfig struct {
	DataDir  string `json:"data_dir"`
	LazyLoad bool   `json:"lazy_load"` // defer index build to the first query
}

// SearchConfig holds search configuration.
type SearchConfig struct {
	DefaultLimit int `json:"default_limit"`
	MaxLimit     int `json:"max_limit"`
	CacheSize    int `json:"cache_size"` // per result cache, entries
}

// EventsConfig holds event emission configuration.
type EventsConfig struct {
	Dir string `json:"dir"` // JSONL sink directory; empty disables the file sink
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableCORS:      true,
		},
		Corpus: CorpusConfig{
			DataDir:  "./data",
			LazyLoad: true,
		},
		Search: SearchConfig{
			DefaultLimit: 50,
			MaxLimit:     200,
			CacheSize:    2048,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
