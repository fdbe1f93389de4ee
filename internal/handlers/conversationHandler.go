package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clearpathhq/supportbot/internal/adapter"
	"github.com/clearpathhq/supportbot/internal/adapter/utils"
	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/data/store"
)

// ListConversationsHandler godoc
// @Summary      List conversations
// @Description  Returns all known conversations, most recently active first.
// @Tags         Conversations
// @Produce      json
// @Success      200  {array}  api.ConversationSummary
// @Router       /conversations [get]
func ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	convs, err := handlerInstance.convs.ListConversations(r.Context())
	if err != nil {
		logRH.Error("Failed to list conversations", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list conversations")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationSummaries(convs))
}

// GetConversationHandler godoc
// @Summary      Get one conversation with its turns
// @Tags         Conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  api.ConversationDetail
// @Failure      404  {object}  api.ErrorResponse  "Conversation not found"
// @Router       /conversations/{id} [get]
func GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	conv, found := handlerInstance.convs.GetConversation(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Conversation not found")
		return
	}

	turns, err := handlerInstance.convs.RecentTurns(r.Context(), id, 0)
	if err != nil {
		logRH.Error("Failed to load turns", "conversationId", id, "err", err)
		turns = nil
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationDetail(conv, turns))
}

// RenameConversationHandler godoc
// @Summary      Rename a conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Conversation ID"
// @Param        request  body      api.RenameConversationRequest  true  "New title"
// @Success      200      {object}  api.ConversationSummary
// @Failure      400      {object}  api.ErrorResponse  "Empty title"
// @Failure      404      {object}  api.ErrorResponse  "Conversation not found"
// @Router       /conversations/{id} [put]
func RenameConversationHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")

	var req api.RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "A non-empty title is required")
		return
	}

	err := handlerInstance.convs.RenameConversation(r.Context(), id, strings.TrimSpace(req.Title))
	if errors.Is(err, store.ErrConversationNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, id, "Conversation not found")
		return
	}
	if err != nil {
		logRH.Error("Failed to rename conversation", "conversationId", id, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not rename conversation")
		return
	}

	conv, _ := handlerInstance.convs.GetConversation(r.Context(), id)
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationSummary(conv))
}

// DeleteConversationHandler godoc
// @Summary      Delete a conversation
// @Tags         Conversations
// @Param        id  path  string  true  "Conversation ID"
// @Success      204  "Deleted"
// @Router       /conversations/{id} [delete]
func DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.convs.DeleteConversation(r.Context(), id); err != nil {
		logRH.Error("Failed to delete conversation", "conversationId", id, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
