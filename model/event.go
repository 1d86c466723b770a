package model

import "time"

// DisplayEventKind identifies what a display event carries.
type DisplayEventKind int

const (
	// DisplayVitals is emitted once per reading, in generation order.
	DisplayVitals DisplayEventKind = iota
	// DisplayAlert is emitted after a dispatch completes successfully.
	DisplayAlert
	// DisplayCallFailed is emitted when the notification capability fails.
	DisplayCallFailed
	// DisplayCounterReset is emitted when the user resets the call counter.
	DisplayCounterReset
)

// DisplayEvent is the one-way, fire-and-forget notification the core sends
// to the presentation layer. Consumers render it; they never acknowledge it.
type DisplayEvent struct {
	Kind      DisplayEventKind   `json:"kind"`
	Timestamp time.Time          `json:"ts"`
	Reading   VitalReading       `json:"reading"`
	Assess    DistressAssessment `json:"assessment"`

	// Reading stream bookkeeping.
	ReadingNum int    `json:"reading_num,omitempty"`
	Unstable   string `json:"unstable,omitempty"` // "" when stable

	// Alert outcome fields.
	Alert     AlertType `json:"alert,omitempty"`
	Auto      bool      `json:"auto,omitempty"`
	CallSID   string    `json:"call_sid,omitempty"`
	CallsMade int       `json:"calls_made,omitempty"`

	// Status line for the presentation layer. Color is a hex hint derived
	// from the assessment (or an error color); never raw internal errors.
	Status      string `json:"status,omitempty"`
	StatusColor string `json:"status_color,omitempty"`
}
