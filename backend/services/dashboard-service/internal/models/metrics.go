package models

// SeriesSourceStatic marks chart series that are fixed reference data rather than backend-derived.
const SeriesSourceStatic = "static"

// DerivedMetrics is everything the dashboard renders, computed from one poll.
type DerivedMetrics struct {
	TotalStations   int `json:"total_stations"`
	ActiveSessions  int `json:"active_sessions"`
	SystemHealthPct int `json:"system_health_pct"`
	AlertCount      int `json:"alert_count"`

	Availability []AvailabilityPoint           `json:"availability"`
	Energy       StaticSeries[EnergyPoint]     `json:"energy"`
	Efficiency   StaticSeries[EfficiencyPoint] `json:"efficiency"`
	Anomaly      StaticSeries[AnomalyPoint]    `json:"anomaly"`

	ConnectorStatusCounts map[string]int          `json:"connector_status_counts"`
	ConnectorsByCP        []ChargePointConnectors `json:"connectors_by_cp"`

	ChargePointRows []ChargePointRow `json:"charge_point_rows"`
	ConnectorRows   []ConnectorRow   `json:"connector_rows"`
	TransactionRows []TransactionRow `json:"transaction_rows"`
}

// AvailabilityPoint is one hour of the availability forecast.
type AvailabilityPoint struct {
	Time         string  `json:"time"`
	Availability float64 `json:"availability"`
}

// StaticSeries wraps reference data with its provenance.
type StaticSeries[T any] struct {
	Source string `json:"source"`
	Points []T    `json:"points"`
}

// EnergyPoint is energy demand per weekday.
type EnergyPoint struct {
	Day    string  `json:"day"`
	Demand float64 `json:"demand"`
}

// EfficiencyPoint is efficiency per station.
type EfficiencyPoint struct {
	Station    string  `json:"station"`
	Efficiency float64 `json:"efficiency"`
}

// AnomalyPoint is an anomaly score per period.
type AnomalyPoint struct {
	Time  string  `json:"time"`
	Score float64 `json:"score"`
}

// ChargePointConnectors groups connectors under their charge point.
type ChargePointConnectors struct {
	CPID       string      `json:"cp_id"`
	Connectors []Connector `json:"connectors"`
}

// ChargePointRow is a display projection of a charge point.
type ChargePointRow struct {
	ID              string `json:"id"`
	Vendor          string `json:"vendor"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
	Connection      string `json:"connection"`
	TotalKWh        string `json:"total_kwh"`
}

// ConnectorRow is a display projection of a connector.
type ConnectorRow struct {
	CPID          string `json:"cp_id"`
	ConnectorID   int    `json:"connector_id"`
	Status        string `json:"status"`
	ErrorCode     string `json:"error_code"`
	LastHeartbeat string `json:"last_heartbeat"`
}

// TransactionRow is a display projection of a transaction.
type TransactionRow struct {
	ID          string `json:"id"`
	CPID        string `json:"cp_id"`
	ConnectorID int    `json:"connector_id"`
	IDTag       string `json:"id_tag"`
	MeterStart  string `json:"meter_start"`
	MeterStop   string `json:"meter_stop"`
	KWhUsed     string `json:"kwh_used"`
	StartTS     string `json:"start_ts"`
	StopTS      string `json:"stop_ts"`
}
