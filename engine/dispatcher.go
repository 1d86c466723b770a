package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/ledger"
	"github.com/rafeeqops/rafeeq/model"
	"github.com/rafeeqops/rafeeq/notify"
)

// errorColor is the status color for a failed notification.
const errorColor = "#FF5252"

// Dispatcher carries an alert end to end: assessment, ledger records, the
// rendered voice call, the call counter, and the observer notification.
// Every step is isolated; a failing step never blocks its siblings.
type Dispatcher struct {
	ledger *ledger.Ledger
	caller notify.Caller
	logger *zap.Logger
	emit   func(model.DisplayEvent)

	mu        sync.Mutex
	callsMade int
}

// NewDispatcher creates a dispatcher. emit may be nil when no presentation
// layer is attached.
func NewDispatcher(l *ledger.Ledger, caller notify.Caller, logger *zap.Logger, emit func(model.DisplayEvent)) *Dispatcher {
	if emit == nil {
		emit = func(model.DisplayEvent) {}
	}
	return &Dispatcher{
		ledger: l,
		caller: caller,
		logger: logger,
		emit:   emit,
	}
}

// Dispatch runs the full alert sequence for one reading. It is safe to call
// concurrently; dispatches for distinct alerts may complete out of order.
// The cooldown gate is the policy's concern and is never touched here.
func (d *Dispatcher) Dispatch(ctx context.Context, alertType model.AlertType, r model.VitalReading, autoTriggered bool) model.DispatchResult {
	now := time.Now()
	assess := AssessReading(r)

	rec := model.EmergencyCallRecord{
		ID:            uuid.NewString(),
		Timestamp:     now,
		AlertType:     alertType,
		Reading:       r,
		Emotion:       assess.Emotion,
		AutoTriggered: autoTriggered,
	}
	if err := d.ledger.AppendEmergencyCall(ctx, rec); err != nil {
		d.ledger.LogAppendFailure(ledger.StreamCalls, err)
	}

	switch alertType {
	case model.AlertHelp:
		if err := d.ledger.AppendHelpRequest(ctx, now); err != nil {
			d.ledger.LogAppendFailure(ledger.StreamHelps, err)
		}
	case model.AlertFall:
		if err := d.ledger.AppendFallEvent(ctx, now); err != nil {
			d.ledger.LogAppendFailure(ledger.StreamFalls, err)
		}
	}

	msg := notify.VoiceMessage(alertType, r, assess.Emotion, autoTriggered)
	sid, err := d.caller.Call(ctx, notify.TwiML(msg))

	result := model.DispatchResult{
		AlertType:     alertType,
		AutoTriggered: autoTriggered,
		Assessment:    assess,
		CallSID:       sid,
		Err:           err,
	}

	if err != nil {
		d.logger.Warn("call failed",
			zap.String("alert", alertType.String()),
			zap.Bool("auto", autoTriggered),
			zap.Error(err),
		)
		d.emit(model.DisplayEvent{
			Kind:        model.DisplayCallFailed,
			Timestamp:   now,
			Reading:     r,
			Assess:      assess,
			Alert:       alertType,
			Auto:        autoTriggered,
			CallsMade:   d.CallsMade(),
			Status:      "Call error: notification capability unreachable",
			StatusColor: errorColor,
		})
		return result
	}

	total := d.incrementCounter()
	d.logger.Info("call initiated",
		zap.String("alert", alertType.String()),
		zap.Bool("auto", autoTriggered),
		zap.String("sid", sid),
		zap.Int("calls_total", total),
	)

	status := alertType.String() + " ALERT"
	if autoTriggered {
		status += " [AUTO-TRIGGERED]"
	}
	status += " | Emotion: " + assess.Emotion.String()

	d.emit(model.DisplayEvent{
		Kind:        model.DisplayAlert,
		Timestamp:   now,
		Reading:     r,
		Assess:      assess,
		Alert:       alertType,
		Auto:        autoTriggered,
		CallSID:     sid,
		CallsMade:   total,
		Status:      status,
		StatusColor: assess.Emotion.Color(),
	})
	return result
}

func (d *Dispatcher) incrementCounter() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callsMade++
	return d.callsMade
}

// CallsMade returns the running call counter.
func (d *Dispatcher) CallsMade() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callsMade
}

// ResetCounter zeroes the call counter. Only an explicit user action does
// this; the counter never resets on its own.
func (d *Dispatcher) ResetCounter() {
	d.mu.Lock()
	d.callsMade = 0
	d.mu.Unlock()
	d.emit(model.DisplayEvent{
		Kind:      model.DisplayCounterReset,
		Timestamp: time.Now(),
	})
}
