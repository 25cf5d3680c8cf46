package memory

import (
	"context"
	"sync"

	"github.com/melodex/melodex/pkg/melodex"
)

// Store is an in-memory implementation of the melodex.AssetStore
// interface, used by tests and the development configuration.
type Store struct {
	mu      sync.RWMutex
	records []melodex.AssetRecord
}

// New creates a new in-memory asset store
func New() *Store {
	return &Store{records: []melodex.AssetRecord{}}
}

// Load returns a deep copy of the stored collection.
func (s *Store) Load(ctx context.Context) ([]melodex.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.records), nil
}

// Save replaces the stored collection with a deep copy of records.
func (s *Store) Save(ctx context.Context, records []melodex.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = clone(records)
	return nil
}

// clone copies the collection including each record's comment slice so
// callers cannot alias the stored state.
func clone(records []melodex.AssetRecord) []melodex.AssetRecord {
	out := make([]melodex.AssetRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].AdminComments != nil {
			comments := make([]melodex.AdminComment, len(out[i].AdminComments))
			copy(comments, out[i].AdminComments)
			out[i].AdminComments = comments
		}
	}
	return out
}
