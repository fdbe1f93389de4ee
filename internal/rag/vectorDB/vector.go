package vectorDB

import (
	"context"
	"errors"

	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
)

// ErrNotReady means the index was never initialized. Deliberately
// distinct from an empty result: an empty corpus answers searches with
// zero hits, a server that skipped bootstrap is misconfigured.
var ErrNotReady = errors.New("vector index not initialized")

// SearchStore is the vector backend behind the retriever. The default is
// the in-process snapshot index, qdrant serves the same contract for
// corpora too large to hold in memory.
type SearchStore interface {
	// Search scores queryVector against the indexed chunks and returns
	// at most limit hits, highest score first. Scores are cosine
	// similarity, ties keep insertion order.
	Search(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error)

	// ReplaceDocument swaps in the full chunk set for one document
	// atomically. Readers never observe a partially ingested document.
	ReplaceDocument(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error

	// RemoveDocument drops a document's chunks. Removing an unknown
	// document is a no-op.
	RemoveDocument(ctx context.Context, docName string) error

	ChunkCount(ctx context.Context) (int, error)
}
