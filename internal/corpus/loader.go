package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openhadith/hadith-go/pkg/types"
)

// Corpus file names under the data directory.
const (
	collectionsFile = "collections.json"
	searchIndexFile = "search-index.json"
)

// Loader reads the corpus artifacts from a data directory. Both files are
// trusted input; a missing file yields the corresponding empty structure,
// while malformed JSON is an error.
type Loader struct {
	dataDir string
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// LoadCollections loads the collections manifest keyed by collection ID.
func (l *Loader) LoadCollections() (map[string]types.Collection, error) {
	data, err := os.ReadFile(filepath.Join(l.dataDir, collectionsFile))
	if os.IsNotExist(err) {
		return map[string]types.Collection{}, nil
	}
	if err != nil {
		return nil, types.WrapError("corpus.LoadCollections", types.ErrCorpusIO, err)
	}

	var manifest struct {
		Collections []types.Collection `json:"collections"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, types.WrapError("corpus.LoadCollections", types.ErrCorpusCorrupt, err)
	}

	byID := make(map[string]types.Collection, len(manifest.Collections))
	for _, c := range manifest.Collections {
		byID[c.ID] = c
	}
	return byID, nil
}

// LoadIndex loads the nested search-index document.
func (l *Loader) LoadIndex() (*Index, error) {
	data, err := os.ReadFile(filepath.Join(l.dataDir, searchIndexFile))
	if os.IsNotExist(err) {
		return &Index{}, nil
	}
	if err != nil {
		return nil, types.WrapError("corpus.LoadIndex", types.ErrCorpusIO, err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, types.WrapError("corpus.LoadIndex", types.ErrCorpusCorrupt, err)
	}
	return &idx, nil
}
