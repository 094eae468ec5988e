package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"evdash/backend/services/fleet-api/internal/models"
)

// UsageSampler reads host resource usage.
type UsageSampler interface {
	Sample(ctx context.Context) (models.SystemUsage, error)
}

// NewSystemUsageHandler returns GET /system/usage handler.
func NewSystemUsageHandler(sampler UsageSampler, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usage, err := sampler.Sample(r.Context())
		if err != nil {
			logger.Error("sample system usage", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "system usage unavailable")
			return
		}
		writeJSON(w, http.StatusOK, usage)
	}
}
