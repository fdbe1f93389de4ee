package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/data/store"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/job"
	"github.com/clearpathhq/supportbot/internal/rag"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

// MockRag implements rag.Service
type MockRag struct {
	OnQuery          func(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error)
	OnQueryStream    func(ctx context.Context, query string, history []chatModel.Turn, events rag.StreamEvents) (chatModel.QueryResult, error)
	OnGenerateTitle  func(ctx context.Context, query string) string
	OnIngestDocument func(ctx context.Context, j jobModel.Job) jobModel.Job
	OnRemoveDocument func(ctx context.Context, docName string) error
	OnIndexSize      func(ctx context.Context) (int, error)

	LastHistory []chatModel.Turn
}

func (m *MockRag) Query(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
	m.LastHistory = history
	if m.OnQuery != nil {
		return m.OnQuery(ctx, query, history)
	}
	return chatModel.QueryResult{Answer: "mocked answer"}, nil
}

func (m *MockRag) QueryStream(ctx context.Context, query string, history []chatModel.Turn, events rag.StreamEvents) (chatModel.QueryResult, error) {
	m.LastHistory = history
	if m.OnQueryStream != nil {
		return m.OnQueryStream(ctx, query, history, events)
	}
	return chatModel.QueryResult{Answer: "mocked answer"}, nil
}

func (m *MockRag) GenerateTitle(ctx context.Context, query string) string {
	if m.OnGenerateTitle != nil {
		return m.OnGenerateTitle(ctx, query)
	}
	return "Password reset help"
}

func (m *MockRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	if m.OnIngestDocument != nil {
		return m.OnIngestDocument(ctx, j)
	}
	j.Status = jobModel.JobStatusComplete
	j.CurrentStep = jobModel.Complete
	return j
}

func (m *MockRag) RemoveDocument(ctx context.Context, docName string) error {
	if m.OnRemoveDocument != nil {
		return m.OnRemoveDocument(ctx, docName)
	}
	return nil
}

func (m *MockRag) IndexSize(ctx context.Context) (int, error) {
	if m.OnIndexSize != nil {
		return m.OnIndexSize(ctx)
	}
	return 0, nil
}

// setupHandlers wires the singleton directly, InitHandlers is once per
// process and tests need fresh state.
func setupHandlers(t *testing.T, mock *MockRag) (*job.Service, chatModel.ConversationStore) {
	t.Helper()

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
	convs := store.InitInMemoryConversationStore()

	handlerInstance = &serviceHandler{
		jobs:      jobService,
		rag:       mock,
		convs:     convs,
		storeMode: "memory",
		startedAt: time.Now(),
	}
	logJH = logger_i.NewLogger("TestHandlers")
	logRH = logger_i.NewLogger("TestHandlers")
	return jobService, convs
}

// newTestRouter mirrors the server routes without the middleware chain.
func newTestRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", HealthHandler)
	r.Post("/query", QueryHandler)
	r.Post("/query/stream", QueryStreamHandler)
	r.Get("/conversations", ListConversationsHandler)
	r.Get("/conversations/{id}", GetConversationHandler)
	r.Put("/conversations/{id}", RenameConversationHandler)
	r.Delete("/conversations/{id}", DeleteConversationHandler)
	r.Post("/documents", PostDocumentHandler)
	r.Get("/documents/status/{id}", GetIngestStatusHandler)
	r.Delete("/documents/{name}", DeleteDocumentHandler)
	return r
}

func perform(router http.Handler, method string, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// cannedResult is a full pipeline outcome the way the rag service would
// shape it for a simple retrieval question.
func cannedResult(answer string) chatModel.QueryResult {
	return chatModel.QueryResult{
		Answer: answer,
		Decision: queryModel.RouteDecision{
			Classification: queryModel.TierSimple,
			Model:          config.ModelSimple,
		},
		Retrieval: queryModel.RetrievalResult{
			ChunkCount: 2,
			Citations: []queryModel.Citation{
				{Document: "accounts.pdf", Page: 3, Score: 0.91},
				{Document: "accounts.pdf", Page: 4, Score: 0.74},
			},
		},
		Usage:     chatModel.TokenUsage{Input: 120, Output: 30},
		LatencyMs: 42,
	}
}

func TestHealthHandler(t *testing.T) {
	mock := &MockRag{}
	setupHandlers(t, mock)
	router := newTestRouter()

	t.Run("Reports_Index_And_Store_Mode", func(t *testing.T) {
		mock.OnIndexSize = func(ctx context.Context) (int, error) { return 1024, nil }

		rec := perform(router, http.MethodGet, "/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp api.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("expected status ok, got %q", resp.Status)
		}
		if resp.IndexedChunks != 1024 {
			t.Errorf("expected 1024 indexed chunks, got %d", resp.IndexedChunks)
		}
		if resp.StoreMode != "memory" {
			t.Errorf("expected store mode memory, got %q", resp.StoreMode)
		}
	})

	t.Run("Starting_While_Index_Empty", func(t *testing.T) {
		mock.OnIndexSize = func(ctx context.Context) (int, error) { return 0, vectorDB.ErrNotReady }

		rec := perform(router, http.MethodGet, "/health", nil)
		var resp api.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Status != "starting" {
			t.Errorf("expected status starting, got %q", resp.Status)
		}
	})

	t.Run("Degraded_On_Store_Error", func(t *testing.T) {
		mock.OnIndexSize = func(ctx context.Context) (int, error) { return 0, errors.New("qdrant timeout") }

		rec := perform(router, http.MethodGet, "/health", nil)
		var resp api.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Status != "degraded" {
			t.Errorf("expected status degraded, got %q", resp.Status)
		}
	})
}
