package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/status-service/internal/models"
)

const publishTimeout = 2 * time.Second

// SnapshotStore is the single latest-value cache.
type SnapshotStore interface {
	Merge(update models.StatusUpdate) models.LatestStatus
	Read() models.LatestStatus
}

// Publisher forwards merged snapshots to subscribers.
type Publisher interface {
	Publish(ctx context.Context, status models.LatestStatus) error
}

// Recorder counts ingest outcomes.
type Recorder interface {
	IngestApplied()
	PublishFailed()
}

// StatusService ties the store to logging, metrics and the notify channel.
type StatusService struct {
	store     SnapshotStore
	publisher Publisher
	recorder  Recorder
	logger    *zap.Logger
}

// NewStatusService builds service. publisher and recorder may be nil.
func NewStatusService(store SnapshotStore, publisher Publisher, recorder Recorder, logger *zap.Logger) *StatusService {
	return &StatusService{
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Ingest merges a partial push and returns the full snapshot.
func (s *StatusService) Ingest(ctx context.Context, update models.StatusUpdate) models.LatestStatus {
	status := s.store.Merge(update)

	s.logger.Info("status updated",
		zap.String("status", status.Status),
		zap.String("uid", status.UID),
		zap.Bool("empty_push", update.IsEmpty()),
	)
	if s.recorder != nil {
		s.recorder.IngestApplied()
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, status); err != nil {
			s.logger.Warn("failed to publish status", zap.Error(err))
			if s.recorder != nil {
				s.recorder.PublishFailed()
			}
		}
	}

	return status
}

// Current returns the latest snapshot.
func (s *StatusService) Current() models.LatestStatus {
	return s.store.Read()
}
