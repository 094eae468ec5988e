package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

// ClientObserver is told the subscriber count whenever it changes.
type ClientObserver interface {
	ClientsChanged(n int)
}

// Hub tracks dashboard subscribers and fans out committed states.
type Hub struct {
	mu           sync.RWMutex
	clients      map[uint64]*Connection
	nextID       uint64
	latest       []byte
	pingInterval time.Duration
	observer     ClientObserver
	logger       *zap.Logger
}

// NewHub builds hub. observer may be nil.
func NewHub(pingInterval time.Duration, observer ClientObserver, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:      make(map[uint64]*Connection),
		pingInterval: pingInterval,
		observer:     observer,
		logger:       logger,
	}
}

// NextID reserves a subscriber id.
func (h *Hub) NextID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return h.nextID
}

// Add registers a subscriber and sends it the latest state.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn.ID()] = conn
	if h.latest != nil {
		conn.Send(h.latest)
	}
	h.notify(len(h.clients))
}

// Remove deregisters a subscriber.
func (h *Hub) Remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
	h.notify(len(h.clients))
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast remembers state as the latest and sends it to every subscriber.
// Slow subscribers miss the update instead of blocking the caller.
func (h *Hub) Broadcast(state models.DashboardState) {
	payload, err := json.Marshal(state)
	if err != nil {
		h.logger.Error("failed to encode dashboard state", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = payload
	for _, conn := range h.clients {
		conn.Send(payload)
	}
}

// Start pings subscribers until ctx is cancelled, then disconnects them.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.mu.RLock()
			for id, conn := range h.clients {
				if err := conn.Ping(); err != nil {
					h.logger.Debug("subscriber ping failed", zap.Uint64("client_id", id), zap.Error(err))
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.clients))
	for _, conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (h *Hub) notify(n int) {
	if h.observer != nil {
		h.observer.ClientsChanged(n)
	}
}
