package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/rag/embedding"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

const contextHeader = "--- Context %d [Source: %s, Page %d] ---\n%s"
const contextSeparator = "\n\n"

type Retriever struct {
	embedder        embedding.Embedder
	store           vectorDB.SearchStore
	logger          *logger_i.Logger
	topK            int
	minScore        float32
	maxContextChars int
}

func New(embedder embedding.Embedder, store vectorDB.SearchStore) *Retriever {
	return NewWithLimits(embedder, store, config.TopK, config.SimilarityThreshold, config.MaxContextChars)
}

func NewWithLimits(embedder embedding.Embedder, store vectorDB.SearchStore, topK int, minScore float32, maxContextChars int) *Retriever {
	return &Retriever{
		embedder:        embedder,
		store:           store,
		logger:          logger_i.NewLogger("retriever"),
		topK:            topK,
		minScore:        minScore,
		maxContextChars: maxContextChars,
	}
}

// Retrieve embeds the query, pulls the top-k nearest chunks and builds
// the citation-tagged context block for the generator. Zero chunks after
// threshold filtering is a valid outcome, the caller sees an empty
// context and ChunkCount 0, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (queryModel.RetrievalResult, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if k <= 0 {
		k = r.topK
	}

	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return queryModel.RetrievalResult{}, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.store.Search(ctx, vector, k)
	if err != nil {
		return queryModel.RetrievalResult{}, err
	}

	var kept []queryModel.ScoredChunk
	for _, h := range hits {
		if h.Score < r.minScore {
			continue
		}
		kept = append(kept, h)
	}
	log.Debug("retrieval done", "hits", len(hits), "above_threshold", len(kept))

	return r.assemble(kept), nil
}

// assemble renders the context block and citation list from the chunks
// that survived filtering. Hits arrive best first, so when the size
// bound trims anything it trims the least relevant tail.
func (r *Retriever) assemble(kept []queryModel.ScoredChunk) queryModel.RetrievalResult {
	var sb strings.Builder
	var included []queryModel.ScoredChunk
	for _, h := range kept {
		entry := fmt.Sprintf(contextHeader, len(included)+1, h.Chunk.Doc.Name, h.Chunk.PageNum, h.Chunk.Chunk)
		if sb.Len() > 0 && sb.Len()+len(contextSeparator)+len(entry) > r.maxContextChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(contextSeparator)
		}
		sb.WriteString(entry)
		included = append(included, h)
	}

	citations := make([]queryModel.Citation, 0, len(included))
	for _, h := range included {
		citations = append(citations, queryModel.Citation{
			Document: h.Chunk.Doc.Name,
			Page:     h.Chunk.PageNum,
			Score:    h.Score,
		})
	}

	return queryModel.RetrievalResult{
		Context:    sb.String(),
		Citations:  citations,
		Chunks:     included,
		ChunkCount: len(included),
	}
}
