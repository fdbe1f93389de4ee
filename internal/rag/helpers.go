package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/evaluator"
	"github.com/clearpathhq/supportbot/internal/metrics"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
	"github.com/clearpathhq/supportbot/internal/router"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

const titleMaxChars = 60

func (s *service) routeStep(query string) queryModel.RouteDecision {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("routing", time.Since(start)) }()

	decision := router.Classify(query)
	metrics.RecordRoutedTier(string(decision.Classification))
	return decision
}

func (s *service) retrieveStep(ctx context.Context, query string) (queryModel.RetrievalResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, query, config.TopK)
}

func (s *service) generateStep(ctx context.Context, req llm.Request) (chatModel.GenerationResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.provider.Generate(ctx, req)
}

func (s *service) generateStreamStep(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (chatModel.GenerationResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	if onToken == nil {
		return s.provider.Generate(ctx, req)
	}
	return s.provider.GenerateStream(ctx, req, onToken)
}

func (s *service) evaluateStep(answer string, retrieval queryModel.RetrievalResult) []queryModel.Flag {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("evaluation", time.Since(start)) }()

	flags := evaluator.Evaluate(answer, retrieval.ChunkCount, retrieval.Citations)
	for _, f := range flags {
		metrics.RecordEvaluatorFlag(string(f))
	}
	return flags
}

// buildRequest assembles the prompt. Greetings get a canned context
// instead of retrieval output, history goes to the generator only.
func (s *service) buildRequest(decision queryModel.RouteDecision, query string, retrieval queryModel.RetrievalResult, history []chatModel.Turn) llm.Request {
	contextBlock := retrieval.Context
	if decision.Greeting {
		contextBlock = config.GreetingContext
	}
	return llm.Request{
		Model:       decision.Model,
		System:      config.SystemPrompt,
		History:     windowHistory(history),
		UserMessage: buildUserMessage(query, contextBlock),
	}
}

func buildUserMessage(query string, contextBlock string) string {
	if contextBlock == "" {
		contextBlock = config.EmptyContextLine
	}
	return fmt.Sprintf(config.UserMessageTemplate, contextBlock, query)
}

// windowHistory keeps the most recent turns and truncates assistant
// content so old answers cannot crowd out the fresh context.
func windowHistory(history []chatModel.Turn) []chatModel.Turn {
	if len(history) > config.HistoryMaxTurns {
		history = history[len(history)-config.HistoryMaxTurns:]
	}
	out := make([]chatModel.Turn, len(history))
	for i, turn := range history {
		if turn.Role == chatModel.RoleAssistant {
			turn.Content = truncateRunes(turn.Content, config.HistoryAssistantMaxChars)
		}
		out[i] = turn
	}
	return out
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// withWarning prepends the low-confidence banner when any flag fired.
func withWarning(answer string, flags []queryModel.Flag) string {
	warning := evaluator.WarningMessage(flags)
	if warning == "" {
		return answer
	}
	return warning + "\n\n" + answer
}

func titleRequest(query string) llm.Request {
	return llm.Request{
		Model:       config.ModelSimple,
		System:      "You name customer support conversations.",
		UserMessage: fmt.Sprintf(config.TitlePrompt, query),
	}
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return truncateRunes(title, titleMaxChars)
}

func fallbackTitle(query string) string {
	return truncateRunes(strings.TrimSpace(query), titleMaxChars)
}

func traceFrom(ctx context.Context) string {
	if v, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

// logRouting emits one structured record per answered query.
func (s *service) logRouting(log *logger_i.Logger, result chatModel.QueryResult) {
	names := make([]string, len(result.Decision.Signals))
	for i, sig := range result.Decision.Signals {
		names[i] = sig.Name
	}
	log.Info("routing_decision",
		"classification", string(result.Decision.Classification),
		"score", result.Decision.Score,
		"signals", strings.Join(names, ","),
		"model", result.Decision.Model,
		"chunks", result.Retrieval.ChunkCount,
		"flags", len(result.Flags),
		"inputTokens", result.Usage.Input,
		"outputTokens", result.Usage.Output,
		"latencyMs", result.LatencyMs,
	)
}

func (s *service) refreshIndexGauge(ctx context.Context) {
	if n, err := s.store.ChunkCount(ctx); err == nil {
		metrics.SetIndexedChunks(n)
	}
}
