package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/melodex/melodex/pkg/melodex"
)

// Store is a local-file implementation of the melodex.AssetStore
// interface. The whole collection lives in one JSON document.
type Store struct {
	path       string
	legacyPath string
}

// Config options for the local-file store
type Config struct {
	Path       string // current JSON document
	LegacyPath string // optional pre-migration music-only document
}

// New creates a new local-file asset store
func New(config Config) (melodex.AssetStore, error) {
	if config.Path == "" {
		return nil, errors.New("storage file path is required")
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &Store{
		path:       config.Path,
		legacyPath: config.LegacyPath,
	}, nil
}

// Load reads the current document, falling back to the legacy file if
// the current one does not exist. Read and parse errors degrade to an
// empty collection.
func (s *Store) Load(ctx context.Context) ([]melodex.AssetRecord, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		return decode(data), nil
	}
	if !os.IsNotExist(err) {
		slog.Error("asset store read failed", "path", s.path, "error", err)
		return []melodex.AssetRecord{}, nil
	}

	if s.legacyPath != "" {
		if data, err := os.ReadFile(s.legacyPath); err == nil {
			return decode(data), nil
		}
	}

	return []melodex.AssetRecord{}, nil
}

// Save overwrites the document with the full collection. The write is
// not atomic at the OS level.
func (s *Store) Save(ctx context.Context, records []melodex.AssetRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &melodex.StoreError{Backend: "fs", Key: s.path, Op: "marshal", Err: err}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &melodex.StoreError{Backend: "fs", Key: s.path, Op: "write", Err: err}
	}

	return nil
}

func decode(data []byte) []melodex.AssetRecord {
	var records []melodex.AssetRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("asset store parse failed", "error", err)
		return []melodex.AssetRecord{}
	}
	return melodex.NormalizeRecords(records)
}
