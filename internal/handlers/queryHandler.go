package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clearpathhq/supportbot/internal/adapter"
	"github.com/clearpathhq/supportbot/internal/adapter/utils"
	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
	"github.com/clearpathhq/supportbot/internal/rag"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// QueryHandler godoc
// @Summary      Ask the support assistant
// @Description  Runs the full pipeline: complexity routing, retrieval, generation and answer evaluation. Creates a conversation when none is given.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question and optional conversation id"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse  "Invalid request data"
// @Failure      404      {object}  api.ErrorResponse  "Unknown conversation id"
// @Failure      503      {object}  api.ErrorResponse  "Index not ready"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	conversationId, history, ok := resolveConversation(ctx, w, req)
	if !ok {
		return
	}

	result, err := handlerInstance.rag.Query(ctx, req.Query, history)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	persistTurns(ctx, conversationId, req.Query, result.Answer)
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(result, conversationId))
}

// QueryStreamHandler godoc
// @Summary      Ask the support assistant, streamed
// @Description  Same pipeline as /query delivered over SSE: one metadata event after retrieval, token events while generating, then done or error.
// @Tags         Query
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body  api.QueryRequest  true  "Question and optional conversation id"
// @Success      200  {string}  string  "SSE stream of metadata, token and done events"
// @Failure      400  {object}  api.ErrorResponse  "Invalid request data"
// @Failure      404  {object}  api.ErrorResponse  "Unknown conversation id"
// @Router       /query/stream [post]
func QueryStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Streaming unsupported")
		return
	}

	ctx := r.Context()
	conversationId, history, ok := resolveConversation(ctx, w, req)
	if !ok {
		return
	}

	// the server-wide write deadline would cut long generations mid-stream
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logRH.Debug("Could not clear write deadline", "err", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := rag.StreamEvents{
		OnMetadata: func(decision queryModel.RouteDecision, retrieval queryModel.RetrievalResult) error {
			return writeSSEEvent(w, flusher, "metadata", adapter.ToStreamMetadata(conversationId, decision, retrieval))
		},
		OnToken: func(token string) error {
			return writeSSEEvent(w, flusher, "token", api.StreamTokenEvent{Token: token})
		},
	}

	result, err := handlerInstance.rag.QueryStream(ctx, req.Query, history, events)
	if err != nil {
		logRH.Error("Stream pipeline failed", "err", err)
		_ = writeSSEEvent(w, flusher, "error", api.StreamErrorEvent{
			Message: config.FallbackAnswer,
			Detail:  err.Error(),
		})
		return
	}

	_ = writeSSEEvent(w, flusher, "done", adapter.ToStreamDone(result))
	persistTurns(ctx, conversationId, req.Query, result.Answer)
}

func decodeQueryRequest(w http.ResponseWriter, r *http.Request) (api.QueryRequest, bool) {
	var req api.QueryRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the query request reader", "err", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		logRH.Warn("Bad query request", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, req.ConversationID, "Bad Request")
		return req, false
	}
	req.Query = strings.TrimSpace(req.Query)
	return req, true
}

// resolveConversation loads the history window for an existing
// conversation or creates a fresh one with a generated title. When it
// returns ok=false the error response has already been written.
func resolveConversation(ctx context.Context, w http.ResponseWriter, req api.QueryRequest) (string, []chatModel.Turn, bool) {
	if req.ConversationID == "" {
		now := time.Now()
		conv := chatModel.Conversation{
			Id:        utils.GetNewUUID(),
			Title:     handlerInstance.rag.GenerateTitle(ctx, req.Query),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := handlerInstance.convs.CreateConversation(ctx, conv); err != nil {
			logRH.Error("Failed to create conversation", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not create conversation")
			return "", nil, false
		}
		logRH.Debug("New conversation", "conversationId", conv.Id)
		return conv.Id, nil, true
	}

	if _, found := handlerInstance.convs.GetConversation(ctx, req.ConversationID); !found {
		WriteErrorResponse(w, http.StatusNotFound, req.ConversationID, "Conversation not found")
		return "", nil, false
	}

	history, err := handlerInstance.convs.RecentTurns(ctx, req.ConversationID, config.HistoryMaxTurns)
	if err != nil {
		// degrade to an empty window, the query still gets answered
		logRH.Error("Failed to load history", "conversationId", req.ConversationID, "err", err)
		history = nil
	}
	return req.ConversationID, history, true
}

func persistTurns(ctx context.Context, conversationId string, query string, answer string) {
	if err := handlerInstance.convs.AppendTurn(ctx, conversationId, chatModel.Turn{
		Role: chatModel.RoleUser, Content: query, CreatedAt: time.Now(),
	}); err != nil {
		logRH.Error("Failed to save user turn", "conversationId", conversationId, "err", err)
		return
	}
	if err := handlerInstance.convs.AppendTurn(ctx, conversationId, chatModel.Turn{
		Role: chatModel.RoleAssistant, Content: answer, CreatedAt: time.Now(),
	}); err != nil {
		logRH.Error("Failed to save assistant turn", "conversationId", conversationId, "err", err)
	}
}

func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, vectorDB.ErrNotReady) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Index not ready, try again shortly")
		return
	}
	logRH.Error("Query pipeline failed", "err", err)
	WriteErrorResponse(w, http.StatusInternalServerError, "", config.FallbackAnswer)
}
