package models

import (
	"encoding/json"
	"strconv"
)

// Charging states reported by the session process.
const (
	StatusStandby  = "STANDBY"
	StatusCharging = "CHARGING"
	StatusFinished = "FINISHED"
)

// LatestStatus is the live telemetry of the single active charging session.
type LatestStatus struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Power    string `json:"power"`
	Energy   string `json:"energy"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
}

// DefaultStatus is the snapshot served before any push arrives.
func DefaultStatus() LatestStatus {
	return LatestStatus{
		UID:      "N/A",
		Username: "Guest",
		Power:    "0.0 kW",
		Energy:   "0.0 kWh",
		Duration: "0 min",
		Status:   StatusStandby,
	}
}

// StatusUpdate is a partial push. An empty field means "not provided".
type StatusUpdate struct {
	UID      string
	Username string
	Power    string
	Energy   string
	Duration string
	Status   string
}

// IsEmpty reports whether the update would change nothing.
func (u StatusUpdate) IsEmpty() bool {
	return u == StatusUpdate{}
}

// ApplyTo returns current with every provided field of u replacing the stored one.
func (u StatusUpdate) ApplyTo(current LatestStatus) LatestStatus {
	current.UID = pick(u.UID, current.UID)
	current.Username = pick(u.Username, current.Username)
	current.Power = pick(u.Power, current.Power)
	current.Energy = pick(u.Energy, current.Energy)
	current.Duration = pick(u.Duration, current.Duration)
	current.Status = pick(u.Status, current.Status)
	return current
}

func pick(incoming, previous string) string {
	if incoming != "" {
		return incoming
	}
	return previous
}

// ParseStatusUpdate decodes a push body without ever failing. Unknown keys are dropped and
// falsy values (null, false, 0, "") or non-scalar values count as absent. A body that is not
// a JSON object yields an empty update.
func ParseStatusUpdate(body []byte) StatusUpdate {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return StatusUpdate{}
	}

	return StatusUpdate{
		UID:      scalar(raw["uid"]),
		Username: scalar(raw["username"]),
		Power:    scalar(raw["power"]),
		Energy:   scalar(raw["energy"]),
		Duration: scalar(raw["duration"]),
		Status:   scalar(raw["status"]),
	}
}

func scalar(value json.RawMessage) string {
	if len(value) == 0 {
		return ""
	}

	var decoded interface{}
	if err := json.Unmarshal(value, &decoded); err != nil {
		return ""
	}

	switch v := decoded.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
