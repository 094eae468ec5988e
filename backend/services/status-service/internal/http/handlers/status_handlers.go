package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"evdash/backend/services/status-service/internal/models"
	"evdash/backend/services/status-service/internal/service"
)

const maxPushBytes = 64 << 10

// StatusHandlers serves the push and polling endpoints.
type StatusHandlers struct {
	svc    *service.StatusService
	logger *zap.Logger
}

// NewStatusHandlers builds handler set.
func NewStatusHandlers(svc *service.StatusService, logger *zap.Logger) *StatusHandlers {
	return &StatusHandlers{svc: svc, logger: logger}
}

type ingestResponse struct {
	Message string              `json:"message"`
	Data    models.LatestStatus `json:"data"`
}

// Ingest handles POST /data. Every body is accepted; unusable input is a no-op merge.
func (h *StatusHandlers) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBytes))
	if err != nil {
		h.logger.Debug("partial status body", zap.Error(err))
	}

	status := h.svc.Ingest(r.Context(), models.ParseStatusUpdate(body))
	writeJSON(w, http.StatusOK, ingestResponse{Message: "Data updated", Data: status})
}

// Query handles GET /api/data.
func (h *StatusHandlers) Query(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Current())
}
