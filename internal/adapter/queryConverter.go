package adapter

import (
	"math"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/evaluator"
)

func ToQueryResponse(result chatModel.QueryResult, conversationId string) api.QueryResponse {
	return api.QueryResponse{
		Answer:         result.Answer,
		Metadata:       toMetadata(result),
		Sources:        ToSources(result.Retrieval.Citations),
		ConversationID: conversationId,
	}
}

func toMetadata(result chatModel.QueryResult) api.QueryMetadata {
	return api.QueryMetadata{
		ModelUsed:       result.Decision.Model,
		Classification:  string(result.Decision.Classification),
		Tokens:          api.TokenUsage{Input: result.Usage.Input, Output: result.Usage.Output},
		LatencyMs:       result.LatencyMs,
		ChunksRetrieved: result.Retrieval.ChunkCount,
		EvaluatorFlags:  FlagStrings(result.Flags),
	}
}

// ToSources rounds relevance to four decimals, raw cosine floats are
// noise to an API client.
func ToSources(citations []queryModel.Citation) []api.Source {
	sources := make([]api.Source, 0, len(citations))
	for _, c := range citations {
		sources = append(sources, api.Source{
			Document:       c.Document,
			Page:           c.Page,
			RelevanceScore: roundScore(c.Score),
		})
	}
	return sources
}

func roundScore(score float32) float64 {
	return math.Round(float64(score)*10000) / 10000
}

func FlagStrings(flags []queryModel.Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, string(f))
	}
	return out
}

func ToStreamMetadata(conversationId string, decision queryModel.RouteDecision, retrieval queryModel.RetrievalResult) api.StreamMetadataEvent {
	return api.StreamMetadataEvent{
		ConversationID:  conversationId,
		Classification:  string(decision.Classification),
		ModelUsed:       decision.Model,
		ChunksRetrieved: retrieval.ChunkCount,
		Sources:         ToSources(retrieval.Citations),
	}
}

// ToStreamDone recomputes the warning text for the done event, tokens
// already on the wire cannot be prepended to.
func ToStreamDone(result chatModel.QueryResult) api.StreamDoneEvent {
	return api.StreamDoneEvent{
		Tokens:         api.TokenUsage{Input: result.Usage.Input, Output: result.Usage.Output},
		LatencyMs:      result.LatencyMs,
		EvaluatorFlags: FlagStrings(result.Flags),
		Warning:        evaluator.WarningMessage(result.Flags),
	}
}

func ToConversationSummary(conv chatModel.Conversation) api.ConversationSummary {
	return api.ConversationSummary{
		Id:        conv.Id,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

func ToConversationSummaries(convs []chatModel.Conversation) []api.ConversationSummary {
	out := make([]api.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, ToConversationSummary(c))
	}
	return out
}

func ToConversationDetail(conv chatModel.Conversation, turns []chatModel.Turn) api.ConversationDetail {
	detail := api.ConversationDetail{ConversationSummary: ToConversationSummary(conv)}
	detail.Turns = make([]api.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		detail.Turns = append(detail.Turns, api.ConversationTurn{
			Role:      string(t.Role),
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		})
	}
	return detail
}
