package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	httpserver "evdash/backend/services/fleet-api/internal/http"
	"evdash/backend/services/fleet-api/internal/http/handlers"
	"evdash/backend/services/fleet-api/internal/metrics"
	"evdash/backend/services/fleet-api/internal/models"
	"evdash/backend/services/fleet-api/internal/service"
)

type fakeChargePoints struct {
	cps        []models.ChargePoint
	connectors map[string][]models.Connector
	err        error
	lastCPID   string
}

func (f *fakeChargePoints) ListWithConnectors(context.Context) ([]models.ChargePoint, error) {
	return f.cps, f.err
}

func (f *fakeChargePoints) ListConnectors(_ context.Context, cpID string) ([]models.Connector, error) {
	f.lastCPID = cpID
	if f.err != nil {
		return nil, f.err
	}
	c := f.connectors[cpID]
	if c == nil {
		c = []models.Connector{}
	}
	return c, nil
}

type fakeTransactions struct {
	page, limit int
}

func (f *fakeTransactions) List(_ context.Context, page, limit int) ([]models.Transaction, error) {
	f.page, f.limit = page, limit
	return []models.Transaction{{ID: 9, CPID: "CP-1"}, {ID: 8, CPID: "CP-1"}}, nil
}

type fakeUpstream struct {
	status int
	body   string
	err    error
	path   string
	query  url.Values
}

func (f *fakeUpstream) Get(_ context.Context, path string, query url.Values) (int, []byte, error) {
	f.path, f.query = path, query
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status, []byte(f.body), nil
}

type fakeSampler struct {
	usage models.SystemUsage
	err   error
}

func (f *fakeSampler) Sample(context.Context) (models.SystemUsage, error) {
	return f.usage, f.err
}

type fixture struct {
	router   http.Handler
	cps      *fakeChargePoints
	txs      *fakeTransactions
	upstream *fakeUpstream
	sampler  *fakeSampler
	metrics  *metrics.API
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cps: &fakeChargePoints{
			cps: []models.ChargePoint{{ID: "CP-1", Connected: true, TotalKWh: 1.5, Connectors: []models.CPConnector{}}},
			connectors: map[string][]models.Connector{
				"CP-1": {{CPID: "CP-1", ConnectorID: 1, Status: "Available", ErrorCode: "NoError"}},
			},
		},
		txs:      &fakeTransactions{},
		upstream: &fakeUpstream{status: http.StatusOK, body: `{"forecast":[0.9],"hours":1}`},
		sampler:  &fakeSampler{usage: models.SystemUsage{CPUPercent: 12.5, RAMPercent: 40, RAMUsedGB: 3.2, RAMTotalGB: 8, Timestamp: 1714557600}},
		metrics:  metrics.NewAPI(prometheus.NewRegistry()),
	}
	fleet := handlers.NewFleetHandlers(service.NewFleetService(f.cps, f.txs), zap.NewNop())
	prediction := handlers.NewPredictionHandlers(f.upstream, f.metrics, zap.NewNop())
	f.router = httpserver.NewRouter(httpserver.Routes{
		ChargePoints:     fleet.ChargePoints,
		Connectors:       fleet.Connectors,
		Transactions:     fleet.Transactions,
		Availability:     prediction.Availability,
		LoadOptimization: prediction.LoadOptimization,
		Passthrough:      prediction.Passthrough,
		SystemUsage:      handlers.NewSystemUsageHandler(f.sampler, zap.NewNop()),
		Health:           handlers.NewHealthHandler(),
		Instrument:       f.metrics.Instrument,
	})
	return f
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestChargePoints(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/cps")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cps []models.ChargePoint
	if err := json.Unmarshal(rec.Body.Bytes(), &cps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cps) != 1 || cps[0].TotalKWh != 1.5 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if got := testutil.ToFloat64(f.metrics.Requests().WithLabelValues("/cps", "200")); got != 1 {
		t.Fatalf("expected instrumented request, got %v", got)
	}
}

func TestChargePointsFailure(t *testing.T) {
	f := newFixture(t)
	f.cps.err = errors.New("db down")
	if rec := f.get("/cps"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestConnectorsByChargePoint(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/connectors/CP-1")
	if rec.Code != http.StatusOK || f.cps.lastCPID != "CP-1" {
		t.Fatalf("unexpected response %d for %q", rec.Code, f.cps.lastCPID)
	}
	var connectors []models.Connector
	if err := json.Unmarshal(rec.Body.Bytes(), &connectors); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(connectors) != 1 || connectors[0].ConnectorID != 1 {
		t.Fatalf("unexpected connectors %+v", connectors)
	}

	if rec := f.get("/connectors/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing id, got %d", rec.Code)
	}
}

func TestTransactionsPagination(t *testing.T) {
	f := newFixture(t)

	if rec := f.get("/transactions"); rec.Code != http.StatusOK || f.txs.page != 1 || f.txs.limit != 5 {
		t.Fatalf("defaults not applied: %d page=%d limit=%d", rec.Code, f.txs.page, f.txs.limit)
	}
	if rec := f.get("/transactions?page=2&limit=50"); rec.Code != http.StatusOK || f.txs.page != 2 || f.txs.limit != 50 {
		t.Fatalf("params not applied: %d page=%d limit=%d", rec.Code, f.txs.page, f.txs.limit)
	}

	for _, target := range []string{
		"/transactions?page=0",
		"/transactions?limit=0",
		"/transactions?limit=101",
		"/transactions?page=abc",
		"/transactions?page=4611686018427387904&limit=100",
	} {
		if rec := f.get(target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestAvailabilityProxy(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/predict/availability")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"forecast":[0.9],"hours":1}` {
		t.Fatalf("unexpected proxy response %d %s", rec.Code, rec.Body.String())
	}
	if f.upstream.path != "/predict/availability" || f.upstream.query.Get("hours") != "24" {
		t.Fatalf("unexpected upstream call %s %v", f.upstream.path, f.upstream.query)
	}

	if rec := f.get("/predict/availability?hours=x"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProxyPassesUpstreamStatus(t *testing.T) {
	f := newFixture(t)
	f.upstream.status = http.StatusServiceUnavailable
	f.upstream.body = `{"error":"model not loaded"}`

	rec := f.get("/health/score")
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != `{"error":"model not loaded"}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if f.upstream.path != "/health/score" {
		t.Fatalf("unexpected path %s", f.upstream.path)
	}
}

func TestProxyUnreachableUpstream(t *testing.T) {
	f := newFixture(t)
	f.upstream.err = errors.New("dial tcp: connection refused")

	if rec := f.get("/optimize/load?duration=2.5"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if f.upstream.query.Get("duration") != "2.5" {
		t.Fatalf("duration not forwarded: %v", f.upstream.query)
	}
}

func TestMethodGuard(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cps", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSystemUsage(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/system/usage")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["cpu_percent"] != 12.5 || body["ram_used_gb"] != 3.2 || body["ram_total_gb"] != 8 || body["timestamp"] != 1714557600 {
		t.Fatalf("unexpected usage %s", rec.Body.String())
	}

	f.sampler.err = errors.New("no /proc")
	if rec := f.get("/system/usage"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
