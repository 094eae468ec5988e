package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
	"evdash/backend/services/dashboard-service/internal/service"
)

// Poller is the subset of the fleet poller the handlers use.
type Poller interface {
	State() models.DashboardState
	Refresh(ctx context.Context) (models.DashboardState, error)
}

// DashboardHandlers serves the dashboard state and the manual retry.
type DashboardHandlers struct {
	poller Poller
	logger *zap.Logger
}

// NewDashboardHandlers builds handler set.
func NewDashboardHandlers(poller Poller, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{poller: poller, logger: logger}
}

// State handles GET /api/dashboard.
func (h *DashboardHandlers) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.poller.State())
}

// Refresh handles POST /api/dashboard/refresh by running a full cycle now.
func (h *DashboardHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives a client that disconnects; fetch timeouts still bound it.
	state, err := h.poller.Refresh(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, state)
	case errors.Is(err, service.ErrCycleInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPollerStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Warn("manual refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, state)
	}
}
