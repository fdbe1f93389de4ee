package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
)

func TestConversationHandlers(t *testing.T) {
	mock := &MockRag{}
	_, convs := setupHandlers(t, mock)
	router := newTestRouter()
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	if err := convs.CreateConversation(ctx, chatModel.Conversation{
		Id: "conv-1", Title: "Exports", CreatedAt: older, UpdatedAt: older,
	}); err != nil {
		t.Fatalf("seeding conversation: %v", err)
	}
	now := time.Now()
	if err := convs.CreateConversation(ctx, chatModel.Conversation{
		Id: "conv-2", Title: "Billing", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seeding conversation: %v", err)
	}
	_ = convs.AppendTurn(ctx, "conv-2", chatModel.Turn{Role: chatModel.RoleUser, Content: "What does Pro cost?", CreatedAt: now})
	_ = convs.AppendTurn(ctx, "conv-2", chatModel.Turn{Role: chatModel.RoleAssistant, Content: "See the pricing page.", CreatedAt: now})

	t.Run("List_Newest_First", func(t *testing.T) {
		rec := perform(router, http.MethodGet, "/conversations", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp []api.ConversationSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 conversations, got %d", len(resp))
		}
		if resp[0].Id != "conv-2" || resp[1].Id != "conv-1" {
			t.Errorf("wrong order: %q then %q", resp[0].Id, resp[1].Id)
		}
	})

	t.Run("Get_With_Turns", func(t *testing.T) {
		rec := perform(router, http.MethodGet, "/conversations/conv-2", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp api.ConversationDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Id != "conv-2" || resp.Title != "Billing" {
			t.Errorf("unexpected conversation: %+v", resp.ConversationSummary)
		}
		if len(resp.Turns) != 2 {
			t.Fatalf("expected 2 turns, got %d", len(resp.Turns))
		}
		if resp.Turns[0].Role != "user" || resp.Turns[1].Role != "assistant" {
			t.Errorf("turns in wrong order: %q then %q", resp.Turns[0].Role, resp.Turns[1].Role)
		}
	})

	t.Run("Get_Missing", func(t *testing.T) {
		rec := perform(router, http.MethodGet, "/conversations/ghost", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		rec := perform(router, http.MethodPut, "/conversations/conv-1",
			strings.NewReader(`{"title": "Data exports"}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp api.ConversationSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Title != "Data exports" {
			t.Errorf("expected the new title, got %q", resp.Title)
		}
	})

	t.Run("Rename_Empty_Title", func(t *testing.T) {
		rec := perform(router, http.MethodPut, "/conversations/conv-1",
			strings.NewReader(`{"title": "   "}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Rename_Missing", func(t *testing.T) {
		rec := perform(router, http.MethodPut, "/conversations/ghost",
			strings.NewReader(`{"title": "New title"}`))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		rec := perform(router, http.MethodDelete, "/conversations/conv-1", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}

		rec = perform(router, http.MethodGet, "/conversations/conv-1", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rec.Code)
		}
	})
}
