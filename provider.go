package quillwasm

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// TableProvider supplies schema and data for one registered source. The
// engine pulls batches lazily; a provider must support being scanned more
// than once (restartable sequences re-scan from the top).
type TableProvider interface {
	// Schema returns the table schema. May perform source resolution on
	// first call when the backing source is lazily fetched.
	Schema(ctx context.Context) (*arrow.Schema, error)

	// Scan returns a fresh iterator over the table's record batches.
	Scan(ctx context.Context) (BatchIterator, error)
}

// BatchIterator yields arrow records one batch at a time.
//
// Next returns (nil, nil) once the sequence is exhausted. Returned records
// are owned by the caller, which must Release them.
type BatchIterator interface {
	Next(ctx context.Context) (arrow.Record, error)

	// Close releases iterator resources. Safe to call more than once.
	Close()
}
