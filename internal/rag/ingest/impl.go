package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clearpathhq/supportbot/internal/adapter/utils"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/rag/chunker"
	"github.com/clearpathhq/supportbot/internal/rag/embedding"
)

// SupportedType reports whether the file extension maps to a known
// extractor, so uploads can be rejected before staging anything.
func SupportedType(name string) bool {
	return getDocType(name) != commonModels.ERR
}

func getDocType(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	case ".rtf":
		return commonModels.RTF
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]commonModels.Page, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX, commonModels.TXT, commonModels.RTF:
		return extractFlat(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// PrepareChunks splits every page and assigns document-wide ordinals.
// Chunking never crosses a page boundary, so each chunk keeps a single
// page number for its citation.
func PrepareChunks(pages []commonModels.Page, doc commonModels.Document, embeddingModel string) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	ordinal := 0
	for _, page := range pages {
		for _, text := range chunker.Split(page.Text) {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        utils.GetNewUUID(),
				Chunk:          text,
				PageNum:        page.Number,
				Ordinal:        ordinal,
				EmbeddingModel: embeddingModel,
			})
			ordinal++
		}
	}
	return allChunks
}

// EmbedChunks runs the embedder over the chunk texts in batches and
// returns one vector per chunk, aligned by index.
func EmbedChunks(ctx context.Context, chunks []commonModels.DocChunk, embedder embedding.Embedder) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for i := 0; i < len(chunks); i += config.IngestBatchLen {
		end := min(i+config.IngestBatchLen, len(chunks))

		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Chunk)
		}

		batch, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch at %d: %w", i, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
