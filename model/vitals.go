package model

import "time"

// VitalReading is one sample from the sensor source. Immutable once created:
// it is produced by the simulator or a manual trigger and consumed as-is by
// the scorer and the ledger.
type VitalReading struct {
	HeartRate   int       `json:"heart_rate_bpm"`
	SpO2        int       `json:"spo2_percent"`
	Temperature float64   `json:"temperature_celsius"`
	Fall        bool      `json:"fall,omitempty"`
	Help        bool      `json:"help,omitempty"`
	Spike       bool      `json:"spike,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// DiscreteEvent is a non-numeric patient event carried alongside a reading.
type DiscreteEvent int

const (
	EventFall DiscreteEvent = iota
	EventHelpRequest
)

func (e DiscreteEvent) String() string {
	switch e {
	case EventFall:
		return "fall"
	case EventHelpRequest:
		return "help_request"
	}
	return "unknown"
}

// Events promotes the boolean flags of a reading to discrete events.
func (r VitalReading) Events() []DiscreteEvent {
	var evs []DiscreteEvent
	if r.Fall {
		evs = append(evs, EventFall)
	}
	if r.Help {
		evs = append(evs, EventHelpRequest)
	}
	return evs
}
