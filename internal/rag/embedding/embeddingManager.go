package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. Index build and
// query must share one Embedder, scores are only comparable when both
// sides use the same function and normalization.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimensions() int
	ModelVersion() string
}
