package models

import "time"

// ChargePoint is a station row with its energy total and connectors.
type ChargePoint struct {
	ID              string        `json:"id"`
	Vendor          *string       `json:"vendor"`
	Model           *string       `json:"model"`
	FirmwareVersion *string       `json:"firmware_version"`
	LastHeartbeat   *time.Time    `json:"last_heartbeat"`
	Connected       bool          `json:"connected"`
	TotalKWh        float64       `json:"total_kwh"`
	Connectors      []CPConnector `json:"connectors"`
}

// CPConnector is a connector nested under its charge point.
type CPConnector struct {
	ConnectorID   int        `json:"connector_id"`
	Status        string     `json:"status"`
	ErrorCode     string     `json:"error_code"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`
}

// Connector is a connector row.
type Connector struct {
	CPID        string     `json:"cp_id"`
	ConnectorID int        `json:"connector_id"`
	Status      string     `json:"status"`
	ErrorCode   string     `json:"error_code"`
	LastUpdate  *time.Time `json:"last_update"`
}

// Nested drops the charge point id and exposes last_update as last_heartbeat.
func (c Connector) Nested() CPConnector {
	return CPConnector{
		ConnectorID:   c.ConnectorID,
		Status:        c.Status,
		ErrorCode:     c.ErrorCode,
		LastHeartbeat: c.LastUpdate,
	}
}

// Transaction is a charging transaction row. Meter values are Wh.
type Transaction struct {
	ID          int64      `json:"id"`
	CPID        string     `json:"cp_id"`
	ConnectorID int        `json:"connector_id"`
	IDTag       string     `json:"id_tag"`
	MeterStart  int64      `json:"meter_start"`
	MeterStop   *int64     `json:"meter_stop"`
	StartTS     *time.Time `json:"start_ts"`
	StopTS      *time.Time `json:"stop_ts"`
}

// SystemUsage is a host resource snapshot. Timestamp is Unix seconds.
type SystemUsage struct {
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
	RAMUsedGB  float64 `json:"ram_used_gb"`
	RAMTotalGB float64 `json:"ram_total_gb"`
	Timestamp  float64 `json:"timestamp"`
}
