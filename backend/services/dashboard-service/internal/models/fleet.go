package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrorCodeHealthy is the connector error code of a healthy connector.
const ErrorCodeHealthy = "NoError"

// ChargePoint mirrors one entry of GET /cps.
type ChargePoint struct {
	ID              string      `json:"id"`
	Vendor          *string     `json:"vendor,omitempty"`
	Model           *string     `json:"model,omitempty"`
	FirmwareVersion *string     `json:"firmware_version,omitempty"`
	Connected       Flag        `json:"connected"`
	TotalKWh        *float64    `json:"total_kwh,omitempty"`
	Connectors      []Connector `json:"connectors"`
}

// HasAlert reports whether any connector carries an error code other than NoError.
func (cp ChargePoint) HasAlert() bool {
	for _, c := range cp.Connectors {
		if c.ErrorCode != ErrorCodeHealthy {
			return true
		}
	}
	return false
}

// DropInvalid clears connector timestamps that failed to parse and returns a
// description of each cleared value.
func (cp *ChargePoint) DropInvalid() []string {
	var dropped []string
	for i := range cp.Connectors {
		c := &cp.Connectors[i]
		if c.LastHeartbeat != nil && !c.LastHeartbeat.Valid() {
			dropped = append(dropped, fmt.Sprintf("cp %s connector %d last_heartbeat %s", cp.ID, c.ConnectorID, c.LastHeartbeat.raw))
			c.LastHeartbeat = nil
		}
	}
	return dropped
}

// Connector is a charge point outlet.
type Connector struct {
	ConnectorID   int        `json:"connector_id"`
	Status        string     `json:"status"`
	ErrorCode     string     `json:"error_code"`
	LastHeartbeat *Timestamp `json:"last_heartbeat,omitempty"`
}

// Transaction mirrors one entry of GET /transactions.
type Transaction struct {
	ID          ID         `json:"id"`
	CPID        string     `json:"cp_id"`
	ConnectorID int        `json:"connector_id"`
	IDTag       string     `json:"id_tag"`
	MeterStart  int64      `json:"meter_start"`
	MeterStop   *int64     `json:"meter_stop,omitempty"`
	StartTS     *Timestamp `json:"start_ts,omitempty"`
	StopTS      *Timestamp `json:"stop_ts,omitempty"`
}

// DropInvalid clears timestamps that failed to parse and returns a description
// of each cleared value.
func (t *Transaction) DropInvalid() []string {
	var dropped []string
	if t.StartTS != nil && !t.StartTS.Valid() {
		dropped = append(dropped, fmt.Sprintf("transaction %s start_ts %s", t.ID, t.StartTS.raw))
		t.StartTS = nil
	}
	if t.StopTS != nil && !t.StopTS.Valid() {
		dropped = append(dropped, fmt.Sprintf("transaction %s stop_ts %s", t.ID, t.StopTS.raw))
		t.StopTS = nil
	}
	return dropped
}

// Active reports whether the transaction has not stopped yet.
func (t Transaction) Active() bool {
	return t.StopTS == nil
}

// ID is an identifier that the backend may encode as a JSON number or string.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Flag is a boolean that also accepts the 0/1 encoding used by SQL backends.
type Flag bool

// UnmarshalJSON accepts booleans, numbers and their quoted forms. Anything else is false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	switch s {
	case "true":
		*f = true
	case "false", "null", "":
		*f = false
	default:
		v, err := strconv.ParseFloat(s, 64)
		*f = err == nil && v != 0
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// DisplayLayout is used when rendering timestamps into table rows.
const DisplayLayout = "2006-01-02 15:04:05"

// Timestamp decodes the datetime encodings the fleet backend emits.
// A value that cannot be parsed decodes without error and reports !Valid().
type Timestamp struct {
	time.Time
	raw string
}

// Valid reports whether the decoded value was a parseable timestamp.
func (ts *Timestamp) Valid() bool {
	return ts != nil && ts.raw == ""
}

// ParseTimestamp tries the supported layouts in order.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("timestamp: unsupported format %q", s)
}

// UnmarshalJSON parses a string timestamp.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*ts = Timestamp{raw: string(data)}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*ts = Timestamp{raw: strconv.Quote(s)}
		return nil
	}
	*ts = parsed
	return nil
}

// MarshalJSON emits RFC3339.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.Format(time.RFC3339))
}

// Display renders the timestamp for table rows.
func (ts Timestamp) Display() string {
	return ts.Time.Format(DisplayLayout)
}
