package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/jobModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/metrics"
	"github.com/clearpathhq/supportbot/internal/rag/embedding"
	"github.com/clearpathhq/supportbot/internal/rag/ingest"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
	"github.com/clearpathhq/supportbot/internal/rag/retriever"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

// Service is the one entry point for the query pipeline and for document
// lifecycle work. Handlers and the worker only see this interface, the
// private struct keeps the store, embedder and LLM provider out of reach,
// and tests swap all three through NewService.
type Service interface {
	Query(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error)
	QueryStream(ctx context.Context, query string, history []chatModel.Turn, events StreamEvents) (chatModel.QueryResult, error)
	GenerateTitle(ctx context.Context, query string) string
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	RemoveDocument(ctx context.Context, docName string) error
	IndexSize(ctx context.Context) (int, error)
}

// StreamEvents carries the callbacks for the streaming path. OnMetadata
// fires once, after routing and retrieval but before the first token.
type StreamEvents struct {
	OnMetadata func(decision queryModel.RouteDecision, retrieval queryModel.RetrievalResult) error
	OnToken    llm.TokenFunc
}

type service struct {
	store     vectorDB.SearchStore
	provider  llm.Provider
	embedder  embedding.Embedder
	retriever *retriever.Retriever
	logger    *logger_i.Logger
}

func NewService(store vectorDB.SearchStore, provider llm.Provider, em embedding.Embedder) Service {
	return &service{
		store:     store,
		provider:  provider,
		embedder:  em,
		retriever: retriever.New(em, store),
		logger:    logger_i.NewLogger("rag_service"),
	}
}

// Query runs route -> retrieve -> generate -> evaluate for one question.
// Greetings skip retrieval and evaluation entirely. Generation failures
// propagate unchanged, nothing downstream runs on a failed answer.
func (s *service) Query(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
	start := time.Now()
	log := s.logger.With("traceId", traceFrom(ctx))

	decision := s.routeStep(query)

	var retrieval queryModel.RetrievalResult
	if !decision.Greeting {
		var err error
		retrieval, err = s.retrieveStep(ctx, query)
		if err != nil {
			log.Error("retrieval failed", "error", err)
			metrics.CaptureJobMetrics("error", time.Since(start))
			return chatModel.QueryResult{}, err
		}
	}

	gen, err := s.generateStep(ctx, s.buildRequest(decision, query, retrieval, history))
	if err != nil {
		log.Error("generation failed", "model", decision.Model, "error", err)
		metrics.CaptureJobMetrics("error", time.Since(start))
		return chatModel.QueryResult{}, err
	}

	var flags []queryModel.Flag
	if !decision.Greeting {
		flags = s.evaluateStep(gen.Answer, retrieval)
	}

	result := chatModel.QueryResult{
		Answer:    withWarning(gen.Answer, flags),
		Decision:  decision,
		Retrieval: retrieval,
		Flags:     flags,
		Usage:     gen.Usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	metrics.CaptureJobMetrics("ok", time.Since(start))
	s.logRouting(log, result)
	return result, nil
}

// QueryStream is the same pipeline with tokens forwarded as they arrive.
// The low-confidence warning cannot be prepended to tokens that already
// left, callers surface it from the returned result instead.
func (s *service) QueryStream(ctx context.Context, query string, history []chatModel.Turn, events StreamEvents) (chatModel.QueryResult, error) {
	start := time.Now()
	log := s.logger.With("traceId", traceFrom(ctx))

	decision := s.routeStep(query)

	var retrieval queryModel.RetrievalResult
	if !decision.Greeting {
		var err error
		retrieval, err = s.retrieveStep(ctx, query)
		if err != nil {
			log.Error("retrieval failed", "error", err)
			metrics.CaptureJobMetrics("error", time.Since(start))
			return chatModel.QueryResult{}, err
		}
	}

	if events.OnMetadata != nil {
		if err := events.OnMetadata(decision, retrieval); err != nil {
			return chatModel.QueryResult{}, err
		}
	}

	gen, err := s.generateStreamStep(ctx, s.buildRequest(decision, query, retrieval, history), events.OnToken)
	if err != nil {
		log.Error("generation failed", "model", decision.Model, "error", err)
		metrics.CaptureJobMetrics("error", time.Since(start))
		return chatModel.QueryResult{}, err
	}

	var flags []queryModel.Flag
	if !decision.Greeting {
		flags = s.evaluateStep(gen.Answer, retrieval)
	}

	result := chatModel.QueryResult{
		Answer:    withWarning(gen.Answer, flags),
		Decision:  decision,
		Retrieval: retrieval,
		Flags:     flags,
		Usage:     gen.Usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	metrics.CaptureJobMetrics("ok", time.Since(start))
	s.logRouting(log, result)
	return result, nil
}

// GenerateTitle asks the simple model for a short conversation title.
// Best effort, any failure falls back to the truncated question.
func (s *service) GenerateTitle(ctx context.Context, query string) string {
	gen, err := s.provider.Generate(ctx, titleRequest(query))
	if err != nil {
		s.logger.Warn("title generation failed", "error", err)
		return fallbackTitle(query)
	}
	title := cleanTitle(gen.Answer)
	if title == "" {
		return fallbackTitle(query)
	}
	return title
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.store)
	if j.Status != jobModel.JobStatusComplete {
		// the ingest step already picked the client-facing message
		s.logger.Error("document ingestion failed", "jobId", j.Id, "doc", j.JobPayload.DocName, "message", j.Error.Message)
		j.Error.Code = http.StatusInternalServerError
		return j
	}
	s.refreshIndexGauge(ctx)
	return j
}

func (s *service) RemoveDocument(ctx context.Context, docName string) error {
	if err := s.store.RemoveDocument(ctx, docName); err != nil {
		s.logger.Error("removing document failed", "doc", docName, "error", err)
		return err
	}
	s.logger.Info("document removed", "doc", docName)
	s.refreshIndexGauge(ctx)
	return nil
}

func (s *service) IndexSize(ctx context.Context) (int, error) {
	return s.store.ChunkCount(ctx)
}
