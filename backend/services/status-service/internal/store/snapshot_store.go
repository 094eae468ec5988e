package store

import (
	"sync"

	"evdash/backend/services/status-service/internal/models"
)

// SnapshotStore keeps the latest pushed session status. Merges are serialized, reads are shared.
type SnapshotStore struct {
	mu      sync.RWMutex
	current models.LatestStatus
	merges  uint64
}

// NewSnapshotStore returns a store holding the default status.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{current: models.DefaultStatus()}
}

// Merge applies the update atomically and returns the resulting snapshot.
func (s *SnapshotStore) Merge(update models.StatusUpdate) models.LatestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = update.ApplyTo(s.current)
	s.merges++
	return s.current
}

// Read returns a copy of the current snapshot.
func (s *SnapshotStore) Read() models.LatestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Merges returns how many pushes have been applied since start.
func (s *SnapshotStore) Merges() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merges
}
