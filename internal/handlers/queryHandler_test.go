package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/rag"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
)

func TestQueryHandler(t *testing.T) {
	mock := &MockRag{}
	_, convs := setupHandlers(t, mock)
	router := newTestRouter()
	ctx := context.Background()

	t.Run("Answer_With_New_Conversation", func(t *testing.T) {
		mock.OnQuery = func(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
			return cannedResult("Use the reset link on the login page."), nil
		}

		rec := perform(router, http.MethodPost, "/query", strings.NewReader(`{"query": "How do I reset my password?"}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp api.QueryResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Answer != "Use the reset link on the login page." {
			t.Errorf("unexpected answer: %q", resp.Answer)
		}
		if resp.Metadata.Classification != "simple" || resp.Metadata.ModelUsed != config.ModelSimple {
			t.Errorf("unexpected routing metadata: %+v", resp.Metadata)
		}
		if resp.Metadata.ChunksRetrieved != 2 || len(resp.Sources) != 2 {
			t.Errorf("expected 2 sources, got %d chunks and %d sources", resp.Metadata.ChunksRetrieved, len(resp.Sources))
		}
		if resp.Sources[0].Document != "accounts.pdf" || resp.Sources[0].RelevanceScore != 0.91 {
			t.Errorf("unexpected first source: %+v", resp.Sources[0])
		}
		if resp.ConversationID == "" {
			t.Fatal("expected a fresh conversation id")
		}

		conv, found := convs.GetConversation(ctx, resp.ConversationID)
		if !found {
			t.Fatal("conversation was not created")
		}
		if conv.Title != "Password reset help" {
			t.Errorf("expected the generated title, got %q", conv.Title)
		}

		turns, err := convs.RecentTurns(ctx, resp.ConversationID, 0)
		if err != nil {
			t.Fatalf("loading turns: %v", err)
		}
		if len(turns) != 2 {
			t.Fatalf("expected both turns persisted, got %d", len(turns))
		}
		if turns[0].Role != chatModel.RoleUser || turns[1].Role != chatModel.RoleAssistant {
			t.Errorf("turns in wrong order: %q then %q", turns[0].Role, turns[1].Role)
		}
		if turns[1].Content != "Use the reset link on the login page." {
			t.Errorf("assistant turn carries the wrong answer: %q", turns[1].Content)
		}
	})

	t.Run("History_Reaches_The_Pipeline", func(t *testing.T) {
		now := time.Now()
		if err := convs.CreateConversation(ctx, chatModel.Conversation{
			Id: "conv-hist", Title: "Billing", CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("seeding conversation: %v", err)
		}
		_ = convs.AppendTurn(ctx, "conv-hist", chatModel.Turn{Role: chatModel.RoleUser, Content: "What plans exist?", CreatedAt: now})
		_ = convs.AppendTurn(ctx, "conv-hist", chatModel.Turn{Role: chatModel.RoleAssistant, Content: "Starter and Pro.", CreatedAt: now})

		mock.OnQuery = func(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
			return cannedResult("Pro costs more."), nil
		}

		rec := perform(router, http.MethodPost, "/query",
			strings.NewReader(`{"query": "And the price?", "conversation_id": "conv-hist"}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		if len(mock.LastHistory) != 2 {
			t.Fatalf("expected 2 history turns in the pipeline, got %d", len(mock.LastHistory))
		}
		if mock.LastHistory[1].Content != "Starter and Pro." {
			t.Errorf("unexpected history content: %q", mock.LastHistory[1].Content)
		}

		var resp api.QueryResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.ConversationID != "conv-hist" {
			t.Errorf("expected the given conversation id back, got %q", resp.ConversationID)
		}
	})

	t.Run("Empty_Query", func(t *testing.T) {
		rec := perform(router, http.MethodPost, "/query", strings.NewReader(`{"query": "   "}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}

		var resp api.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Error == nil || resp.Error.Message != "Bad Request" {
			t.Errorf("unexpected error body: %s", rec.Body.String())
		}
	})

	t.Run("Unknown_Conversation", func(t *testing.T) {
		rec := perform(router, http.MethodPost, "/query",
			strings.NewReader(`{"query": "hello", "conversation_id": "ghost"}`))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Index_Not_Ready", func(t *testing.T) {
		mock.OnQuery = func(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
			return chatModel.QueryResult{}, vectorDB.ErrNotReady
		}

		rec := perform(router, http.MethodPost, "/query", strings.NewReader(`{"query": "How do refunds work?"}`))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("Pipeline_Failure", func(t *testing.T) {
		mock.OnQuery = func(ctx context.Context, query string, history []chatModel.Turn) (chatModel.QueryResult, error) {
			return chatModel.QueryResult{}, errors.New("provider down")
		}

		rec := perform(router, http.MethodPost, "/query", strings.NewReader(`{"query": "How do refunds work?"}`))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}

		var resp api.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Error == nil || resp.Error.Message != config.FallbackAnswer {
			t.Errorf("expected the fallback answer, got %s", rec.Body.String())
		}
	})
}

func TestQueryStreamHandler(t *testing.T) {
	mock := &MockRag{}
	_, convs := setupHandlers(t, mock)
	router := newTestRouter()
	ctx := context.Background()

	now := time.Now()
	if err := convs.CreateConversation(ctx, chatModel.Conversation{
		Id: "conv-stream", Title: "Exports", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seeding conversation: %v", err)
	}

	t.Run("Event_Order", func(t *testing.T) {
		mock.OnQueryStream = func(ctx context.Context, query string, history []chatModel.Turn, events rag.StreamEvents) (chatModel.QueryResult, error) {
			result := cannedResult("Use the reset link.")
			if err := events.OnMetadata(result.Decision, result.Retrieval); err != nil {
				return chatModel.QueryResult{}, err
			}
			for _, token := range []string{"Use the ", "reset link."} {
				if err := events.OnToken(token); err != nil {
					return chatModel.QueryResult{}, err
				}
			}
			return result, nil
		}

		rec := perform(router, http.MethodPost, "/query/stream",
			strings.NewReader(`{"query": "How do I reset my password?", "conversation_id": "conv-stream"}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("expected an event stream, got content type %q", ct)
		}

		body := rec.Body.String()
		metaIdx := strings.Index(body, "event: metadata")
		tokenIdx := strings.Index(body, "event: token")
		doneIdx := strings.Index(body, "event: done")
		if metaIdx < 0 || tokenIdx < 0 || doneIdx < 0 {
			t.Fatalf("missing events in stream:\n%s", body)
		}
		if metaIdx > tokenIdx || tokenIdx > doneIdx {
			t.Errorf("events out of order:\n%s", body)
		}
		if got := strings.Count(body, "event: token"); got != 2 {
			t.Errorf("expected 2 token events, got %d", got)
		}
		if !strings.Contains(body, `"conversation_id":"conv-stream"`) {
			t.Errorf("metadata event is missing the conversation id:\n%s", body)
		}

		turns, err := convs.RecentTurns(ctx, "conv-stream", 0)
		if err != nil {
			t.Fatalf("loading turns: %v", err)
		}
		if len(turns) != 2 {
			t.Errorf("expected the exchange persisted after done, got %d turns", len(turns))
		}
	})

	t.Run("Failure_Emits_Error_Event", func(t *testing.T) {
		mock.OnQueryStream = func(ctx context.Context, query string, history []chatModel.Turn, events rag.StreamEvents) (chatModel.QueryResult, error) {
			return chatModel.QueryResult{}, errors.New("provider down")
		}

		rec := perform(router, http.MethodPost, "/query/stream",
			strings.NewReader(`{"query": "How do I reset my password?", "conversation_id": "conv-stream"}`))

		body := rec.Body.String()
		if !strings.Contains(body, "event: error") {
			t.Fatalf("expected an error event:\n%s", body)
		}
		if !strings.Contains(body, config.FallbackAnswer) {
			t.Errorf("error event should carry the fallback message:\n%s", body)
		}
		if strings.Contains(body, "event: done") {
			t.Errorf("done must not follow an error:\n%s", body)
		}
	})

	t.Run("Empty_Query", func(t *testing.T) {
		rec := perform(router, http.MethodPost, "/query/stream", strings.NewReader(`{"query": ""}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
