// Package ingest discovers report PDFs and loads their bytes: a local
// directory tree, an S3 bucket prefix, or a watched folder.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// Item is one discovered document, addressed by Key within its source.
type Item struct {
	Key  string
	Size int64
}

// ListStats summarizes a listing.
type ListStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Source is where batch documents come from.
type Source interface {
	// List returns the PDFs under the source root in lexical key order.
	List(ctx context.Context) ([]Item, ListStats, error)
	// Load reads one listed document.
	Load(ctx context.Context, key string) (entity.Document, error)
}
