// Package store persists batch results. The core pipeline knows nothing
// about persistence; these sinks consume records it produces.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/git-pkgs/enrich/internal/core"
)

// Sink receives enrichment records for persistence.
type Sink interface {
	// Upsert stores one record keyed by package name, replacing any
	// previous record for the same name.
	Upsert(ctx context.Context, rec *core.Record) error
}

// BatchWriter persists a whole batch result at once.
type BatchWriter interface {
	WriteBatch(ctx context.Context, result *core.BatchResult) error
}

// JSONFile writes a whole batch as an indented JSON array.
type JSONFile struct {
	Path string
}

var _ BatchWriter = (*JSONFile)(nil)

// NewJSONFile creates a file sink writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// WriteBatch serializes every record in the batch to the file, replacing
// its previous contents.
func (f *JSONFile) WriteBatch(_ context.Context, result *core.BatchResult) error {
	data, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}
