package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Upstream forwards GET requests to the ML service.
type Upstream interface {
	Get(ctx context.Context, path string, query url.Values) (int, []byte, error)
}

// FailureRecorder counts unreachable upstream calls.
type FailureRecorder interface {
	UpstreamFailed()
}

// PredictionHandlers proxies prediction and analytics endpoints.
type PredictionHandlers struct {
	upstream Upstream
	recorder FailureRecorder
	logger   *zap.Logger
}

// NewPredictionHandlers builds handler set. recorder may be nil.
func NewPredictionHandlers(upstream Upstream, recorder FailureRecorder, logger *zap.Logger) *PredictionHandlers {
	return &PredictionHandlers{upstream: upstream, recorder: recorder, logger: logger}
}

// Availability handles GET /predict/availability?hours=.
func (h *PredictionHandlers) Availability(w http.ResponseWriter, r *http.Request) {
	hours, err := intParam(r, "hours", 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := url.Values{}
	query.Set("hours", strconv.Itoa(hours))
	h.forward(w, r, "/predict/availability", query)
}

// LoadOptimization handles GET /optimize/load?duration=.
func (h *PredictionHandlers) LoadOptimization(w http.ResponseWriter, r *http.Request) {
	duration := 1.0
	if raw := strings.TrimSpace(r.URL.Query().Get("duration")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "duration must be a number")
			return
		}
		duration = v
	}
	query := url.Values{}
	query.Set("duration", strconv.FormatFloat(duration, 'f', -1, 64))
	h.forward(w, r, "/optimize/load", query)
}

// Passthrough returns a handler forwarding path without parameters.
func (h *PredictionHandlers) Passthrough(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.forward(w, r, path, nil)
	}
}

func (h *PredictionHandlers) forward(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	status, body, err := h.upstream.Get(r.Context(), path, query)
	if err != nil {
		h.logger.Warn("ml service request failed", zap.String("path", path), zap.Error(err))
		if h.recorder != nil {
			h.recorder.UpstreamFailed()
		}
		writeError(w, http.StatusBadGateway, "ml service unavailable")
		return
	}
	writeRaw(w, status, body)
}
