package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"evdash/backend/services/fleet-api/internal/models"
	"evdash/backend/services/fleet-api/internal/service"
)

// FleetReader is the read side the handlers serve.
type FleetReader interface {
	ChargePoints(ctx context.Context) ([]models.ChargePoint, error)
	Connectors(ctx context.Context, cpID string) ([]models.Connector, error)
	Transactions(ctx context.Context, page, limit int) ([]models.Transaction, error)
}

// FleetHandlers serves charge point, connector and transaction listings.
type FleetHandlers struct {
	svc    FleetReader
	logger *zap.Logger
}

// NewFleetHandlers builds handler set.
func NewFleetHandlers(svc FleetReader, logger *zap.Logger) *FleetHandlers {
	return &FleetHandlers{svc: svc, logger: logger}
}

// ChargePoints handles GET /cps.
func (h *FleetHandlers) ChargePoints(w http.ResponseWriter, r *http.Request) {
	cps, err := h.svc.ChargePoints(r.Context())
	if err != nil {
		h.logger.Error("failed to list charge points", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch charge points")
		return
	}
	writeJSON(w, http.StatusOK, cps)
}

// Connectors handles GET /connectors/{cp_id}.
func (h *FleetHandlers) Connectors(w http.ResponseWriter, r *http.Request) {
	cpID := mux.Vars(r)["cp_id"]
	if cpID == "" {
		writeError(w, http.StatusNotFound, "charge point id is required")
		return
	}

	connectors, err := h.svc.Connectors(r.Context(), cpID)
	if err != nil {
		h.logger.Error("failed to list connectors", zap.String("cp_id", cpID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch connectors")
		return
	}
	writeJSON(w, http.StatusOK, connectors)
}

// Transactions handles GET /transactions?page=&limit=.
func (h *FleetHandlers) Transactions(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", service.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.Transactions(r.Context(), page, limit)
	switch {
	case errors.Is(err, service.ErrInvalidPagination):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to list transactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}
