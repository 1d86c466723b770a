package engine

import (
	"sync"
	"time"

	"github.com/rafeeqops/rafeeq/model"
)

// Escalation thresholds for alert type selection and the unstable summary.
const (
	heartRateCritical = 140
	heartRateWarning  = 120
	spo2Critical      = 90
	spo2Warning       = 93
	tempCriticalHigh  = 38.5
	tempCriticalLow   = 35.5
)

// autoCallCooldown is the minimum spacing between auto-triggered escalation
// attempts. Manual triggers are never subject to it.
const autoCallCooldown = 30 * time.Second

// CooldownGate serializes auto-escalation attempts. The candidacy check and
// the timestamp update form a single critical section so that two
// near-simultaneous readings cannot both pass the gate.
//
// The gate advances on every permitted attempt, before the notification
// outcome is known: cooldown spaces attempts, not successes.
type CooldownGate struct {
	mu       sync.Mutex
	lastAuto time.Time // zero = never escalated
	cooldown time.Duration
}

// NewCooldownGate creates a gate with the default 30s cooldown.
func NewCooldownGate() *CooldownGate {
	return &CooldownGate{cooldown: autoCallCooldown}
}

// Allow reports whether an auto-escalation may proceed at the given time,
// and if so records it as the last attempt.
func (g *CooldownGate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.lastAuto.IsZero() && now.Sub(g.lastAuto) < g.cooldown {
		return false
	}
	g.lastAuto = now
	return true
}

// LastAttempt returns the time of the last permitted auto-escalation,
// or the zero time if none has occurred.
func (g *CooldownGate) LastAttempt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastAuto
}

// ShouldEscalate applies the auto-trigger policy to one scored reading:
// candidacy (injected spike or score >= 25) gated by the cooldown.
// It returns the alert type to dispatch and true, or false when the reading
// is not a candidate or the gate is closed. A true return has already
// advanced the gate.
func ShouldEscalate(r model.VitalReading, a model.DistressAssessment, gate *CooldownGate, now time.Time) (model.AlertType, bool) {
	if !r.Spike && a.Score < scoreModerateStress {
		return model.AlertGeneral, false
	}
	if !gate.Allow(now) {
		return model.AlertGeneral, false
	}
	return AlertTypeFor(r), true
}

// AlertTypeFor selects the notification phrasing for a reading. Discrete
// events take the dedicated types directly; numeric vitals are checked in
// priority order, first match wins.
func AlertTypeFor(r model.VitalReading) model.AlertType {
	switch {
	case r.Fall:
		return model.AlertFall
	case r.Help:
		return model.AlertHelp
	case r.HeartRate > heartRateCritical:
		return model.AlertHeart
	case r.SpO2 < spo2Critical:
		return model.AlertSpo2
	case r.Temperature > tempCriticalHigh:
		return model.AlertTemp
	default:
		return model.AlertGeneral
	}
}
