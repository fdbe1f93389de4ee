package hashEmbedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/rag/embedding"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

// Feature-hashing embedder. Lowercased word unigrams and bigrams are
// hashed into signed buckets and the vector is L2-normalized, so the
// index inner product is cosine similarity. Everything is local CPU
// work: same text, same vector, on every run and every platform.

var logger *logger_i.Logger
var once sync.Once
var instance *hashEmbedder

type hashEmbedder struct {
	dims    int
	version string
}

const bigramWeight = 0.5

func GetHashEmbedder() embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("hash_embedding")
		instance = &hashEmbedder{
			dims:    config.EmbeddingDimensions,
			version: config.EmbeddingModelVersion,
		}
		logger.Info("local hash embedder ready", "dimensions", instance.dims, "version", instance.version)
	})
	return instance
}

func (e *hashEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(query), nil
}

func (e *hashEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors = append(vectors, e.embed(chunk))
	}
	return vectors, nil
}

func (e *hashEmbedder) Dimensions() int {
	return e.dims
}

func (e *hashEmbedder) ModelVersion() string {
	return e.version
}

func (e *hashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		//no signal, callers score this at 0 against everything
		return vec
	}

	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+"\x1f"+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// add hashes a feature into its bucket. The bucket comes from the low
// bits and the sign from the top bit, keeping the two uncorrelated.
func (e *hashEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := sum % uint64(e.dims)
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
