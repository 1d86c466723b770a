package model

import "time"

// AlertType selects the caregiver notification phrasing.
type AlertType int

const (
	AlertGeneral AlertType = iota
	AlertHeart
	AlertSpo2
	AlertTemp
	AlertFall
	AlertHelp
)

var alertNames = []string{"GENERAL", "HEART", "SPO2", "TEMP", "FALL", "HELP"}

func (a AlertType) String() string {
	if a < 0 || int(a) >= len(alertNames) {
		return "GENERAL"
	}
	return alertNames[a]
}

// ParseAlertType maps a stored name back to its AlertType.
// Unknown names fall back to AlertGeneral.
func ParseAlertType(s string) AlertType {
	for i, n := range alertNames {
		if n == s {
			return AlertType(i)
		}
	}
	return AlertGeneral
}

// EmergencyCallRecord is the append-only ledger row written for every
// dispatched alert, exactly one per escalation.
type EmergencyCallRecord struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	AlertType     AlertType    `json:"alert_type"`
	Reading       VitalReading `json:"reading"`
	Emotion       Emotion      `json:"emotion"`
	AutoTriggered bool         `json:"auto_triggered"`
}

// DispatchResult reports the outcome of one alert dispatch.
type DispatchResult struct {
	AlertType     AlertType
	AutoTriggered bool
	Assessment    DistressAssessment
	CallSID       string
	Err           error // notification failure; ledger failures are logged, not surfaced here
}

// Success reports whether the notification call was placed.
func (r DispatchResult) Success() bool {
	return r.Err == nil
}
