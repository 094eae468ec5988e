package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

type gaugeObserver struct {
	mu   sync.Mutex
	last int
}

func (o *gaugeObserver) ClientsChanged(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = n
}

func (o *gaugeObserver) value() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) models.DashboardState {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var state models.DashboardState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestSubscriberGetsLatestThenBroadcasts(t *testing.T) {
	observer := &gaugeObserver{}
	hub := NewHub(time.Hour, observer, zap.NewNop())
	hub.Broadcast(models.DashboardState{Status: models.StatusLoading})

	srv := httptest.NewServer(http.HandlerFunc(NewServer(hub, time.Second, zap.NewNop()).HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	if state := readState(t, conn); state.Status != models.StatusLoading {
		t.Fatalf("expected latest state on connect, got %+v", state)
	}
	if hub.Count() != 1 || observer.value() != 1 {
		t.Fatalf("expected one subscriber, got %d/%d", hub.Count(), observer.value())
	}

	hub.Broadcast(models.DashboardState{Status: models.StatusError, Error: "fetch charge points: boom"})
	state := readState(t, conn)
	if state.Status != models.StatusError || state.Error != "fetch charge points: boom" {
		t.Fatalf("unexpected broadcast %+v", state)
	}
}

func TestSubscriberRemovedOnDisconnect(t *testing.T) {
	observer := &gaugeObserver{}
	hub := NewHub(time.Hour, observer, zap.NewNop())
	hub.Broadcast(models.DashboardState{Status: models.StatusReady})

	srv := httptest.NewServer(http.HandlerFunc(NewServer(hub, time.Second, zap.NewNop()).HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	readState(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if observer.value() != 0 {
		t.Fatalf("observer not updated, got %d", observer.value())
	}
	hub.Broadcast(models.DashboardState{Status: models.StatusReady})
}
