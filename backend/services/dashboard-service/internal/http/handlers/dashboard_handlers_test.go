package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
	"evdash/backend/services/dashboard-service/internal/service"
)

type fakePoller struct {
	state      models.DashboardState
	refreshErr error
	refreshCtx context.Context
}

func (f *fakePoller) State() models.DashboardState {
	return f.state
}

func (f *fakePoller) Refresh(ctx context.Context) (models.DashboardState, error) {
	f.refreshCtx = ctx
	return f.state, f.refreshErr
}

func TestStateHandler(t *testing.T) {
	p := &fakePoller{state: models.DashboardState{
		Status:       models.StatusReady,
		Metrics:      &models.DerivedMetrics{TotalStations: 3},
		ChargePoints: []models.ChargePoint{},
		Transactions: []models.Transaction{},
	}}
	h := NewDashboardHandlers(p, zap.NewNop())

	rec := httptest.NewRecorder()
	h.State(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["status"]) != `"ready"` {
		t.Fatalf("unexpected status %s", body["status"])
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("error field should be omitted when empty")
	}
	if string(body["charge_points"]) != "[]" {
		t.Fatalf("expected empty charge point list, got %s", body["charge_points"])
	}
}

func TestRefreshHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", want: http.StatusOK},
		{name: "in flight", err: service.ErrCycleInFlight, want: http.StatusConflict},
		{name: "stopped", err: service.ErrPollerStopped, want: http.StatusServiceUnavailable},
		{name: "fetch failure", err: errors.New("fetch charge points: refused"), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePoller{state: models.DashboardState{Status: models.StatusError, Error: "fetch charge points: refused"}, refreshErr: tt.err}
			h := NewDashboardHandlers(p, zap.NewNop())

			rec := httptest.NewRecorder()
			h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRefreshSurvivesClientCancel(t *testing.T) {
	p := &fakePoller{state: models.DashboardState{Status: models.StatusReady}}
	h := NewDashboardHandlers(p, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil).WithContext(ctx)
	h.Refresh(httptest.NewRecorder(), req)

	if p.refreshCtx.Err() != nil {
		t.Fatalf("refresh context should not inherit request cancellation")
	}
}

func TestRefreshFailureReturnsRetainedState(t *testing.T) {
	p := &fakePoller{
		state: models.DashboardState{
			Status:  models.StatusError,
			Error:   "fetch charge points: refused",
			Metrics: &models.DerivedMetrics{TotalStations: 5},
		},
		refreshErr: errors.New("fetch charge points: refused"),
	}
	h := NewDashboardHandlers(p, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil))

	var state models.DashboardState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Error == "" || state.Metrics == nil || state.Metrics.TotalStations != 5 {
		t.Fatalf("expected retained data with error, got %+v", state)
	}
}
