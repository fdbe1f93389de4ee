package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/clearpathhq/supportbot/internal/api"
	"github.com/clearpathhq/supportbot/internal/rag/vectorDB"
)

// HealthHandler godoc
// @Summary      Service health
// @Description  Reports index size, which store backend is active, and uptime.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	chunks, err := handlerInstance.rag.IndexSize(r.Context())
	if errors.Is(err, vectorDB.ErrNotReady) {
		status = "starting"
	} else if err != nil {
		logRH.Error("Health check could not read index size", "err", err)
		status = "degraded"
	}

	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:        status,
		IndexedChunks: chunks,
		StoreMode:     handlerInstance.storeMode,
		UptimeSeconds: int64(time.Since(handlerInstance.startedAt).Seconds()),
	})
}
