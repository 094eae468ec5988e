package models

import "time"

// Dashboard status values.
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusError   = "error"
)

// DashboardState is the poller's view published to presentation clients.
type DashboardState struct {
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	LastSuccess  *time.Time      `json:"last_success,omitempty"`
	Metrics      *DerivedMetrics `json:"metrics,omitempty"`
	ChargePoints []ChargePoint   `json:"charge_points"`
	Transactions []Transaction   `json:"transactions"`
}
