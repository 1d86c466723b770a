package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/ledger"
	"github.com/rafeeqops/rafeeq/model"
	"github.com/rafeeqops/rafeeq/sensor"
)

// Monitor drives the periodic reading loop: pull a reading, score it,
// record it, evaluate the escalation policy, and fan dispatches out as
// independent goroutines so a slow call never blocks the next reading.
type Monitor struct {
	source   sensor.Source
	disp     *Dispatcher
	gate     *CooldownGate
	ledger   *ledger.Ledger
	logger   *zap.Logger
	history  *History
	recorder *Recorder // nil when not recording
	interval time.Duration

	events     chan model.DisplayEvent
	readingNum int // touched only by the loop goroutine
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Source      sensor.Source
	Ledger      *ledger.Ledger
	Dispatcher  *Dispatcher
	Logger      *zap.Logger
	Interval    time.Duration
	HistorySize int
	Recorder    *Recorder
}

// NewMonitor wires the monitoring loop. The dispatcher must have been
// created with this monitor's Emit so observer events share one channel.
func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 120
	}
	return &Monitor{
		source:   opts.Source,
		disp:     opts.Dispatcher,
		gate:     NewCooldownGate(),
		ledger:   opts.Ledger,
		logger:   opts.Logger,
		history:  NewHistory(opts.HistorySize),
		recorder: opts.Recorder,
		interval: opts.Interval,
		events:   make(chan model.DisplayEvent, 64),
	}
}

// Events is the observer channel. One-way and fire-and-forget: when the
// consumer falls behind, the oldest pending event is dropped.
func (m *Monitor) Events() <-chan model.DisplayEvent {
	return m.events
}

// Emit sends a display event without ever blocking the caller.
func (m *Monitor) Emit(ev model.DisplayEvent) {
	select {
	case m.events <- ev:
	default:
		select {
		case <-m.events:
		default:
		}
		select {
		case m.events <- ev:
		default:
		}
	}
}

// History exposes the reading ring buffer for trend rendering.
func (m *Monitor) History() *History {
	return m.history
}

// Dispatcher exposes the dispatcher for manual counter control.
func (m *Monitor) Dispatcher() *Dispatcher {
	return m.disp
}

// Gate exposes the cooldown gate (read-only use outside tests).
func (m *Monitor) Gate() *CooldownGate {
	return m.gate
}

// Run executes the reading loop until the context is cancelled or the
// source is exhausted. In-flight dispatches run to completion either way.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	if !m.step(time.Now()) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if !m.step(now) {
				return nil
			}
		}
	}
}

// step processes one reading. Returns false when the source is exhausted.
func (m *Monitor) step(now time.Time) bool {
	reading, ok := m.source.Next(now)
	if !ok {
		m.logger.Info("sensor source exhausted")
		return false
	}

	m.readingNum++
	assess := AssessReading(reading)

	// Every scored reading is recorded exactly once, escalation or not.
	// A failed append costs that single record, never the loop.
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	if err := m.ledger.AppendReading(ctx, reading, assess); err != nil {
		m.ledger.LogAppendFailure(ledger.StreamReadings, err)
	}
	cancel()

	m.history.Push(Frame{Reading: reading, Assess: assess, Num: m.readingNum})

	alertType, escalate := ShouldEscalate(reading, assess, m.gate, now)

	if m.recorder != nil {
		m.recorder.Write(RecordFrame{
			Reading:   reading,
			Assess:    assess,
			Num:       m.readingNum,
			Escalated: escalate,
		})
	}

	m.Emit(model.DisplayEvent{
		Kind:       model.DisplayVitals,
		Timestamp:  now,
		Reading:    reading,
		Assess:     assess,
		ReadingNum: m.readingNum,
		Unstable:   UnstableSummary(reading, assess),
		CallsMade:  m.disp.CallsMade(),
	})

	if escalate {
		m.logger.Info("auto-alert triggered",
			zap.String("alert", alertType.String()),
			zap.Int("hr", reading.HeartRate),
			zap.Int("spo2", reading.SpO2),
			zap.Float64("temp", reading.Temperature),
			zap.Int("score", assess.Score),
		)
		go m.disp.Dispatch(context.Background(), alertType, reading, true)
	}
	return true
}

// Trigger dispatches a manual alert with the given vitals, bypassing both
// escalation candidacy and the cooldown gate.
func (m *Monitor) Trigger(alertType model.AlertType, hr, spo2 int, temp float64, fall, help bool) {
	reading := model.VitalReading{
		HeartRate:   hr,
		SpO2:        spo2,
		Temperature: temp,
		Fall:        fall,
		Help:        help,
		Timestamp:   time.Now(),
	}
	m.logger.Info("manual alert triggered", zap.String("alert", alertType.String()))
	go m.disp.Dispatch(context.Background(), alertType, reading, false)
}

// UnstableSummary renders the "unstable case" line for the presentation
// layer: the classification plus the vitals outside their warning bands.
// Returns "" for a stable patient.
func UnstableSummary(r model.VitalReading, a model.DistressAssessment) string {
	if a.Emotion == model.EmotionStable {
		return ""
	}
	var factors []string
	if r.HeartRate > heartRateWarning {
		factors = append(factors, fmt.Sprintf("High HR (%d)", r.HeartRate))
	}
	if r.SpO2 < spo2Warning {
		factors = append(factors, fmt.Sprintf("Low O2 (%d%%)", r.SpO2))
	}
	if r.Temperature > tempCriticalHigh || r.Temperature < tempCriticalLow {
		factors = append(factors, fmt.Sprintf("Abnormal Temp (%.1f°C)", r.Temperature))
	}
	detail := "Emotional stress detected"
	if len(factors) > 0 {
		detail = strings.Join(factors, ", ")
	}
	return fmt.Sprintf("UNSTABLE: %s | Factors: %s", a.Emotion, detail)
}
