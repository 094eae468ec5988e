package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "evdash_"

// API instruments fleet-api routes.
type API struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	upstreamErrors prometheus.Counter
}

// NewAPI registers fleet-api metrics on reg.
func NewAPI(reg prometheus.Registerer) *API {
	m := &API{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "fleet_api_requests_total",
			Help: "Fleet API requests by route and status code",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "fleet_api_request_duration_seconds",
			Help:    "Fleet API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		upstreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "fleet_api_upstream_errors_total",
			Help: "Failed requests to the ML service",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.upstreamErrors)
	return m
}

// Instrument wraps handler with request counting and latency for route.
func (m *API) Instrument(route string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), handler),
	)
}

// UpstreamFailed counts an unreachable ML service.
func (m *API) UpstreamFailed() {
	m.upstreamErrors.Inc()
}

// Requests exposes the request counter for assertions.
func (m *API) Requests() *prometheus.CounterVec {
	return m.requests
}
