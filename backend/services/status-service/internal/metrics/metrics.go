package metrics

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "evdash_"

// Status exposes ingest counters for the status service.
type Status struct {
	ingestTotal   prometheus.Counter
	publishErrors prometheus.Counter
}

// NewStatus registers status-service metrics on reg.
func NewStatus(reg prometheus.Registerer) *Status {
	m := &Status{
		ingestTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "status_ingest_total",
			Help: "Total status pushes merged into the snapshot",
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "status_publish_errors_total",
			Help: "Total failures publishing the snapshot to the notify channel",
		}),
	}
	reg.MustRegister(m.ingestTotal, m.publishErrors)
	return m
}

// IngestApplied counts one merged push.
func (m *Status) IngestApplied() {
	m.ingestTotal.Inc()
}

// PublishFailed counts one failed publish.
func (m *Status) PublishFailed() {
	m.publishErrors.Inc()
}

// IngestTotal exposes the ingest counter for assertions.
func (m *Status) IngestTotal() prometheus.Counter {
	return m.ingestTotal
}

// PublishErrors exposes the publish error counter for assertions.
func (m *Status) PublishErrors() prometheus.Counter {
	return m.publishErrors
}
