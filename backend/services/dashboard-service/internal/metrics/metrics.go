package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"evdash/backend/services/dashboard-service/internal/models"
)

const metricPrefix = "evdash_"

// Dashboard exposes poller and feed metrics.
type Dashboard struct {
	cycles           *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	forecastFailures prometheus.Counter
	totalStations    prometheus.Gauge
	activeSessions   prometheus.Gauge
	systemHealth     prometheus.Gauge
	alertCount       prometheus.Gauge
	wsClients        prometheus.Gauge
}

// NewDashboard registers dashboard-service metrics on reg.
func NewDashboard(reg prometheus.Registerer) *Dashboard {
	m := &Dashboard{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "poll_cycles_total",
			Help: "Total poll cycles by result",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "poll_cycle_duration_seconds",
			Help:    "Duration of executed poll cycles",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}),
		forecastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "forecast_failures_total",
			Help: "Total availability forecast fetch failures",
		}),
		totalStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "fleet_total_stations",
			Help: "Charge points seen in the last successful poll",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "fleet_active_sessions",
			Help: "Transactions without a stop time in the last successful poll",
		}),
		systemHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "fleet_system_health_pct",
			Help: "Percentage of connected charge points",
		}),
		alertCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "fleet_alert_count",
			Help: "Charge points with at least one faulted connector",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "ws_clients",
			Help: "Connected dashboard websocket clients",
		}),
	}
	reg.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.forecastFailures,
		m.totalStations,
		m.activeSessions,
		m.systemHealth,
		m.alertCount,
		m.wsClients,
	)
	return m
}

// CycleFinished counts a cycle. Skipped cycles do not observe a duration.
func (m *Dashboard) CycleFinished(result string, elapsed time.Duration) {
	m.cycles.WithLabelValues(result).Inc()
	if elapsed > 0 {
		m.cycleDuration.Observe(elapsed.Seconds())
	}
}

// ForecastFailed counts a failed forecast fetch.
func (m *Dashboard) ForecastFailed() {
	m.forecastFailures.Inc()
}

// FleetObserved updates fleet gauges.
func (m *Dashboard) FleetObserved(d models.DerivedMetrics) {
	m.totalStations.Set(float64(d.TotalStations))
	m.activeSessions.Set(float64(d.ActiveSessions))
	m.systemHealth.Set(float64(d.SystemHealthPct))
	m.alertCount.Set(float64(d.AlertCount))
}

// ClientsChanged sets the websocket client gauge.
func (m *Dashboard) ClientsChanged(n int) {
	m.wsClients.Set(float64(n))
}

// Cycles exposes the cycle counter for assertions.
func (m *Dashboard) Cycles() *prometheus.CounterVec {
	return m.cycles
}
