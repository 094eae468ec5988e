package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"evdash/backend/services/status-service/internal/metrics"
	"evdash/backend/services/status-service/internal/models"
	"evdash/backend/services/status-service/internal/store"
)

type fakePublisher struct {
	published []models.LatestStatus
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, status models.LatestStatus) error {
	f.published = append(f.published, status)
	return f.err
}

type countingRecorder struct {
	applied, failed int
}

func (c *countingRecorder) IngestApplied() { c.applied++ }
func (c *countingRecorder) PublishFailed() { c.failed++ }

func TestIngestMergesLogsAndPublishes(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pub := &fakePublisher{}
	rec := &countingRecorder{}
	svc := NewStatusService(store.NewSnapshotStore(), pub, rec, zap.New(core))

	got := svc.Ingest(context.Background(), models.StatusUpdate{Status: models.StatusCharging, UID: "X"})
	if got.Status != models.StatusCharging || got.UID != "X" || got.Power != "0.0 kW" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if svc.Current() != got {
		t.Fatalf("current snapshot differs from ingest result")
	}

	if len(pub.published) != 1 || pub.published[0] != got {
		t.Fatalf("expected snapshot published once, got %+v", pub.published)
	}
	if rec.applied != 1 || rec.failed != 0 {
		t.Fatalf("unexpected recorder counts: %+v", rec)
	}

	entries := logs.FilterMessage("status updated").All()
	if len(entries) != 1 {
		t.Fatalf("expected one status log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != models.StatusCharging || fields["uid"] != "X" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStatus(reg)
	pub := &fakePublisher{err: errors.New("redis down")}
	svc := NewStatusService(store.NewSnapshotStore(), pub, m, zap.NewNop())

	got := svc.Ingest(context.Background(), models.StatusUpdate{Energy: "2.0 kWh"})
	if got.Energy != "2.0 kWh" {
		t.Fatalf("merge should succeed despite publish failure, got %+v", got)
	}

	if v := testutil.ToFloat64(m.IngestTotal()); v != 1 {
		t.Fatalf("expected ingest counter 1, got %v", v)
	}
	if v := testutil.ToFloat64(m.PublishErrors()); v != 1 {
		t.Fatalf("expected publish error counter 1, got %v", v)
	}
}

func TestIngestWithoutPublisher(t *testing.T) {
	svc := NewStatusService(store.NewSnapshotStore(), nil, nil, zap.NewNop())
	got := svc.Ingest(context.Background(), models.StatusUpdate{})
	if got != models.DefaultStatus() {
		t.Fatalf("empty push changed snapshot: %+v", got)
	}
}
