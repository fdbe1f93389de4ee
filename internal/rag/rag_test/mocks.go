package rag_test

import (
	"context"

	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
)

// MockSearchStore implements vectorDB.SearchStore
type MockSearchStore struct {
	OnSearch          func(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error)
	OnReplaceDocument func(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error
	OnRemoveDocument  func(ctx context.Context, docName string) error
	OnChunkCount      func(ctx context.Context) (int, error)

	SearchCalls int
}

func (m *MockSearchStore) Search(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error) {
	m.SearchCalls++
	if m.OnSearch != nil {
		return m.OnSearch(ctx, queryVector, limit)
	}
	return nil, nil
}

func (m *MockSearchStore) ReplaceDocument(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnReplaceDocument != nil {
		return m.OnReplaceDocument(ctx, doc, chunks, vectors)
	}
	return nil
}

func (m *MockSearchStore) RemoveDocument(ctx context.Context, docName string) error {
	if m.OnRemoveDocument != nil {
		return m.OnRemoveDocument(ctx, docName)
	}
	return nil
}

func (m *MockSearchStore) ChunkCount(ctx context.Context) (int, error) {
	if m.OnChunkCount != nil {
		return m.OnChunkCount(ctx)
	}
	return 0, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int { return 1 }

func (m *MockEmbedder) ModelVersion() string { return "mock-model" }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate       func(ctx context.Context, req llm.Request) (chatModel.GenerationResult, error)
	OnGenerateStream func(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (chatModel.GenerationResult, error)

	LastRequest   llm.Request
	GenerateCalls int
	StreamCalls   int
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (chatModel.GenerationResult, error) {
	m.LastRequest = req
	m.GenerateCalls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return chatModel.GenerationResult{Answer: "mocked llm response"}, nil
}

func (m *MockLLM) GenerateStream(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (chatModel.GenerationResult, error) {
	m.LastRequest = req
	m.StreamCalls++
	if m.OnGenerateStream != nil {
		return m.OnGenerateStream(ctx, req, onToken)
	}
	return chatModel.GenerationResult{Answer: "mocked llm response"}, nil
}

func hit(doc string, page int, content string, score float32) queryModel.ScoredChunk {
	return queryModel.ScoredChunk{
		Chunk: commonModels.DocChunk{
			Doc:     commonModels.Document{Id: doc, Name: doc},
			Chunk:   content,
			PageNum: page,
		},
		Score: score,
	}
}
