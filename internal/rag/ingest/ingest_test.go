package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
)

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, chunks)
	}
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 1 }

func (m *mockEmbedder) ModelVersion() string { return "test-model" }

type mockStore struct {
	replaceFunc func(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockStore) Search(ctx context.Context, queryVector []float32, limit int) ([]queryModel.ScoredChunk, error) {
	return nil, nil
}

func (m *mockStore) ReplaceDocument(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, doc, chunks, vectors)
	}
	return nil
}

func (m *mockStore) RemoveDocument(ctx context.Context, docName string) error { return nil }

func (m *mockStore) ChunkCount(ctx context.Context) (int, error) { return 0, nil }

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.TXT},
		{"readme.md", commonModels.TXT},
		{"legacy.rtf", commonModels.RTF},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestPrepareChunks(t *testing.T) {
	pages := []commonModels.Page{
		{Number: 1, Text: "Page one content."},
		{Number: 2, Text: "Page two content."},
	}
	doc := commonModels.Document{Id: "doc-1", Name: "guide.pdf"}

	chunks := PrepareChunks(pages, doc, "test-model")

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks (one per page), got %d", len(chunks))
	}

	if chunks[0].Doc.Id != "doc-1" || chunks[0].PageNum != 1 {
		t.Errorf("Metadata mismatch in chunk 0: %+v", chunks[0])
	}
	if chunks[1].PageNum != 2 {
		t.Errorf("Chunk 1 should carry page 2, got %d", chunks[1].PageNum)
	}
	if chunks[0].EmbeddingModel != "test-model" {
		t.Errorf("EmbeddingModel not carried: %+v", chunks[0])
	}
	if chunks[0].ChunkId == "" || chunks[0].ChunkId == chunks[1].ChunkId {
		t.Errorf("Chunk ids must be unique and non-empty: %q vs %q", chunks[0].ChunkId, chunks[1].ChunkId)
	}
}

func TestPrepareChunks_OrdinalsSpanPages(t *testing.T) {
	long := strings.Repeat("This sentence pads the first page with enough text to force a split. ", 12)
	pages := []commonModels.Page{
		{Number: 1, Text: long},
		{Number: 4, Text: "A short closing page."},
	}

	chunks := PrepareChunks(pages, commonModels.Document{Id: "doc-2"}, "test-model")

	if len(chunks) < 3 {
		t.Fatalf("Expected the long page to split, got %d chunks total", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("Ordinal at %d got %d", i, c.Ordinal)
		}
	}
	last := chunks[len(chunks)-1]
	if last.PageNum != 4 {
		t.Errorf("Last chunk should come from page 4, got %d", last.PageNum)
	}
}

func TestEmbedChunks_Batches(t *testing.T) {
	chunks := make([]commonModels.DocChunk, 250)
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{Chunk: "test content"}
	}

	var batchSizes []int
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			return make([][]float32, len(texts)), nil
		},
	}

	vectors, err := EmbedChunks(context.Background(), chunks, emb)
	if err != nil {
		t.Fatalf("EmbedChunks failed: %v", err)
	}

	if len(vectors) != len(chunks) {
		t.Errorf("Expected %d vectors, got %d", len(chunks), len(vectors))
	}
	want := []int{100, 100, 50}
	if len(batchSizes) != len(want) {
		t.Fatalf("Expected %d batches, got %v", len(want), batchSizes)
	}
	for i, size := range want {
		if batchSizes[i] != size {
			t.Errorf("Batch %d size got %d, want %d", i, batchSizes[i], size)
		}
	}
}

func TestEmbedChunks_Error(t *testing.T) {
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedder down")
		},
	}

	_, err := EmbedChunks(context.Background(), []commonModels.DocChunk{{Chunk: "hi"}}, emb)
	if err == nil {
		t.Error("Expected error from EmbedChunks, got nil")
	}
}

func stagedFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("staging file: %v", err)
	}
	return path
}

func TestProcessDocumentIngestion_Success(t *testing.T) {
	path := stagedFile(t, "guide.txt", "ClearPath projects sync automatically. Invite teammates from the settings page.")

	var gotDoc commonModels.Document
	var gotChunks []commonModels.DocChunk
	store := &mockStore{
		replaceFunc: func(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
			gotDoc = doc
			gotChunks = chunks
			if len(chunks) != len(vectors) {
				t.Errorf("chunks and vectors misaligned: %d vs %d", len(chunks), len(vectors))
			}
			return nil
		},
	}

	job := jobModel.Job{
		Id:         "job-1",
		JobType:    jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{DocName: "guide.txt", StoredPath: path},
	}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, store)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v (error: %+v)", result.Status, jobModel.JobStatusComplete, result.Error)
	}
	if result.CurrentStep != jobModel.Complete {
		t.Errorf("CurrentStep got %v", result.CurrentStep)
	}
	if result.JobPayload.PagesExtracted != 1 {
		t.Errorf("PagesExtracted got %d", result.JobPayload.PagesExtracted)
	}
	if result.JobPayload.ChunksIndexed != len(gotChunks) || len(gotChunks) == 0 {
		t.Errorf("ChunksIndexed got %d with %d chunks stored", result.JobPayload.ChunksIndexed, len(gotChunks))
	}
	if gotDoc.Name != "guide.txt" || gotDoc.ContentType != commonModels.TXT {
		t.Errorf("Stored document mismatch: %+v", gotDoc)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Staged file should be removed after ingestion")
	}
}

func TestProcessDocumentIngestion_KeepSource(t *testing.T) {
	path := stagedFile(t, "bootstrap.txt", "Seeded documentation content.")

	job := jobModel.Job{
		Id: "job-2",
		JobPayload: jobModel.JobPayload{
			DocName:    "bootstrap.txt",
			StoredPath: path,
			KeepSource: true,
		},
	}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, &mockStore{})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v (error: %+v)", result.Status, result.Error)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Bootstrap file must survive ingestion: %v", err)
	}
}

func TestProcessDocumentIngestion_UnsupportedType(t *testing.T) {
	job := jobModel.Job{
		Id:         "job-3",
		JobPayload: jobModel.JobPayload{DocName: "logo.png", StoredPath: "logo.png"},
	}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, &mockStore{})

	if result.Status != jobModel.JobStatusError {
		t.Errorf("Status got %v, want error", result.Status)
	}
	if result.CurrentStep != jobModel.Error {
		t.Errorf("CurrentStep got %v", result.CurrentStep)
	}
	if result.Error.Message == "" {
		t.Errorf("Error message should be set")
	}
}

func TestProcessDocumentIngestion_IndexFailure(t *testing.T) {
	path := stagedFile(t, "broken.txt", "Content that will fail to index.")

	store := &mockStore{
		replaceFunc: func(ctx context.Context, doc commonModels.Document, chunks []commonModels.DocChunk, vectors [][]float32) error {
			return errors.New("index unavailable")
		},
	}

	job := jobModel.Job{
		Id:         "job-4",
		JobPayload: jobModel.JobPayload{DocName: "broken.txt", StoredPath: path},
	}

	result := ProcessDocumentIngestion(context.Background(), job, &mockEmbedder{}, store)

	if result.Status != jobModel.JobStatusError {
		t.Errorf("Status got %v, want error", result.Status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Staged file should survive a failed ingestion: %v", err)
	}
}
