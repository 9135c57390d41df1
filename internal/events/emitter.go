// Package events provides event emission for the search service.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openhadith/hadith-go/pkg/types"
)

// EventType represents the type of event.
type EventType string

const (
	IndexBuilt      EventType = "index_built"
	QueryPerformed  EventType = "query_performed"
	ReferenceLookup EventType = "reference_lookup"
)

// Event represents a search service event.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Subscriber is a function that handles events.
type Subscriber func(Event)

// Emitter handles event emission and subscription. A nil Emitter is a
// no-op, so callers never need to guard their Emit calls.
type Emitter struct {
	subscribers []Subscriber
	file        *os.File
	filePath    string
	mu          sync.RWMutex
}

// NewEmitter creates a new event emitter. An empty eventsDir disables the
// JSONL file sink; subscribers still receive events.
func NewEmitter(eventsDir string) (*Emitter, error) {
	e := &Emitter{}

	if eventsDir != "" {
		if err := os.MkdirAll(eventsDir, 0755); err != nil {
			return nil, types.WrapError("events.NewEmitter", types.ErrCorpusIO, err)
		}

		filename := fmt.Sprintf("events_%s.jsonl", time.Now().Format("20060102"))
		e.filePath = filepath.Join(eventsDir, filename)

		file, err := os.OpenFile(e.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, types.WrapError("events.NewEmitter", types.ErrCorpusIO, err)
		}
		e.file = file
	}

	return e, nil
}

// Subscribe adds a subscriber to receive events.
func (e *Emitter) Subscribe(sub Subscriber) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, sub)
}

// Emit emits an event to all subscribers and the file sink.
func (e *Emitter) Emit(event Event) {
	if e == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	e.mu.RLock()
	subscribers := make([]Subscriber, len(e.subscribers))
	copy(subscribers, e.subscribers)
	e.mu.RUnlock()

	for _, sub := range subscribers {
		go sub(event)
	}

	e.writeToFile(event)
}

// writeToFile writes an event to the JSON Lines file.
func (e *Emitter) writeToFile(event Event) {
	if e.file == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.file.Write(data)
	e.file.Write([]byte("\n"))
}

// Close closes the file sink.
func (e *Emitter) Close() error {
	if e == nil || e.file == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Close()
}

// IndexBuiltEvent creates an index built event from index stats.
func IndexBuiltEvent(stats types.IndexStats) Event {
	return Event{
		Type: IndexBuilt,
		Data: map[string]any{
			"total_docs":     stats.TotalDocs,
			"avg_doc_length": stats.AvgDocLength,
			"vocab_size":     stats.VocabSize,
		},
	}
}

// QueryPerformedEvent creates a query performed event.
func QueryPerformedEvent(query string, advanced bool, resultCount int) Event {
	return Event{
		Type: QueryPerformed,
		Data: map[string]any{
			"query":        query,
			"advanced":     advanced,
			"result_count": resultCount,
		},
	}
}

// ReferenceLookupEvent creates a reference lookup event.
func ReferenceLookupEvent(collectionID, bookID, ref string, found bool) Event {
	return Event{
		Type: ReferenceLookup,
		Data: map[string]any{
			"collection_id": collectionID,
			"book_id":       bookID,
			"reference":     ref,
			"found":         found,
		},
	}
}
