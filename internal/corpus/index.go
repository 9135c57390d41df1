// Package corpus loads the pre-built JSON corpus artifacts: the collections
// manifest and the nested search-index document.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/openhadith/hadith-go/pkg/types"
)

// Index is the loaded search-index document. Collections and books keep the
// key order of the source file; doc-id assignment depends on it staying
// stable for a given input.
type Index struct {
	Collections Collections `json:"collections"`
}

// Collection is one collection inside the search-index document.
type Collection struct {
	Books Books `json:"books"`
}

// Collections is an insertion-ordered map of collection ID to collection.
type Collections struct {
	ids  []string
	byID map[string]*Collection
}

// IDs returns the collection IDs in document order.
func (c *Collections) IDs() []string {
	return c.ids
}

// Get returns the collection with the given ID.
func (c *Collections) Get(id string) (*Collection, bool) {
	coll, ok := c.byID[id]
	return coll, ok
}

// Len returns the number of collections.
func (c *Collections) Len() int {
	return len(c.ids)
}

func (c *Collections) UnmarshalJSON(data []byte) error {
	ids, values, err := decodeOrdered(data, func(dec *json.Decoder) (*Collection, error) {
		var coll Collection
		if err := dec.Decode(&coll); err != nil {
			return nil, err
		}
		return &coll, nil
	})
	if err != nil {
		return err
	}
	c.ids = ids
	c.byID = values
	return nil
}

// Books is an insertion-ordered map of book ID to book.
type Books struct {
	ids  []string
	byID map[string]*types.Book
}

// IDs returns the book IDs in document order.
func (b *Books) IDs() []string {
	return b.ids
}

// Get returns the book with the given ID.
func (b *Books) Get(id string) (*types.Book, bool) {
	book, ok := b.byID[id]
	return book, ok
}

// Len returns the number of books.
func (b *Books) Len() int {
	return len(b.ids)
}

func (b *Books) UnmarshalJSON(data []byte) error {
	ids, values, err := decodeOrdered(data, func(dec *json.Decoder) (*types.Book, error) {
		var book types.Book
		if err := dec.Decode(&book); err != nil {
			return nil, err
		}
		return &book, nil
	})
	if err != nil {
		return err
	}
	b.ids = ids
	b.byID = values
	return nil
}

// decodeOrdered walks a JSON object with a token decoder so key order is
// observed, which encoding/json's map decoding discards.
func decodeOrdered[V any](data []byte, decodeValue func(*json.Decoder) (V, error)) ([]string, map[string]V, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var ids []string
	values := make(map[string]V)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, nil, err
		}

		if _, dup := values[key]; !dup {
			ids = append(ids, key)
		}
		values[key] = value
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	return ids, values, nil
}
