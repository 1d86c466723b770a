package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/ledger"
	"github.com/rafeeqops/rafeeq/model"
)

// fakeCaller records calls and optionally fails them.
type fakeCaller struct {
	mu    sync.Mutex
	twiml []string
	err   error
	done  chan struct{}
}

func newFakeCaller(buf int) *fakeCaller {
	return &fakeCaller{done: make(chan struct{}, buf)}
}

func (f *fakeCaller) Call(_ context.Context, twiml string) (string, error) {
	f.mu.Lock()
	f.twiml = append(f.twiml, twiml)
	f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.err != nil {
		return "", f.err
	}
	return "CAfake", nil
}

func (f *fakeCaller) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.twiml)
}

func (f *fakeCaller) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for call %d of %d", i+1, n)
		}
	}
}

// eventSink collects emitted display events.
type eventSink struct {
	mu     sync.Mutex
	events []model.DisplayEvent
}

func (s *eventSink) emit(ev model.DisplayEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) byKind(kind model.DisplayEventKind) []model.DisplayEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DisplayEvent
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func openEngineLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestDispatchSuccess(t *testing.T) {
	led := openEngineLedger(t)
	fc := newFakeCaller(1)
	sink := &eventSink{}
	d := NewDispatcher(led, fc, zap.NewNop(), sink.emit)

	r := model.VitalReading{HeartRate: 155, SpO2: 96, Temperature: 37.0, Timestamp: time.Now()}
	res := d.Dispatch(context.Background(), model.AlertHeart, r, false)

	require.True(t, res.Success())
	assert.Equal(t, "CAfake", res.CallSID)
	assert.Equal(t, model.EmotionModerateStress, res.Assessment.Emotion)
	assert.Equal(t, 1, d.CallsMade())

	ctx := context.Background()
	calls, err := led.EmergencyCalls(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, model.AlertHeart, calls[0].AlertType)
	assert.False(t, calls[0].AutoTriggered)

	// No discrete-event rows for a numeric alert.
	for _, s := range []ledger.Stream{ledger.StreamFalls, ledger.StreamHelps} {
		n, err := led.Count(ctx, s)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	alerts := sink.byKind(model.DisplayAlert)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Status, "HEART ALERT")
	assert.NotContains(t, alerts[0].Status, "AUTO-TRIGGERED")
	assert.Equal(t, model.EmotionModerateStress.Color(), alerts[0].StatusColor)
}

func TestDispatchAutoTriggered(t *testing.T) {
	led := openEngineLedger(t)
	fc := newFakeCaller(1)
	sink := &eventSink{}
	d := NewDispatcher(led, fc, zap.NewNop(), sink.emit)

	r := model.VitalReading{HeartRate: 150, SpO2: 97, Temperature: 36.8, Spike: true, Timestamp: time.Now()}
	res := d.Dispatch(context.Background(), model.AlertHeart, r, true)
	require.True(t, res.Success())

	calls, err := led.EmergencyCalls(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].AutoTriggered)

	alerts := sink.byKind(model.DisplayAlert)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Status, "[AUTO-TRIGGERED]")

	// The spoken message carries the auto prefix.
	require.Equal(t, 1, fc.calls())
	assert.Contains(t, fc.twiml[0], "تنبيه تلقائي")
}

func TestDispatchHelpWritesHelpStream(t *testing.T) {
	led := openEngineLedger(t)
	d := NewDispatcher(led, newFakeCaller(1), zap.NewNop(), nil)

	r := model.VitalReading{HeartRate: 105, SpO2: 94, Temperature: 37.3, Help: true, Timestamp: time.Now()}
	res := d.Dispatch(context.Background(), model.AlertHelp, r, false)
	require.True(t, res.Success())

	n, err := led.Count(context.Background(), ledger.StreamHelps)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatchFallWritesFallStream(t *testing.T) {
	led := openEngineLedger(t)
	d := NewDispatcher(led, newFakeCaller(1), zap.NewNop(), nil)

	r := model.VitalReading{HeartRate: 120, SpO2: 95, Temperature: 37.1, Fall: true, Timestamp: time.Now()}
	res := d.Dispatch(context.Background(), model.AlertFall, r, false)
	require.True(t, res.Success())

	n, err := led.Count(context.Background(), ledger.StreamFalls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatchCallFailure(t *testing.T) {
	led := openEngineLedger(t)
	fc := newFakeCaller(1)
	fc.err = errors.New("connection refused")
	sink := &eventSink{}
	d := NewDispatcher(led, fc, zap.NewNop(), sink.emit)

	r := model.VitalReading{HeartRate: 155, SpO2: 96, Temperature: 37.0, Timestamp: time.Now()}
	res := d.Dispatch(context.Background(), model.AlertHeart, r, false)

	require.False(t, res.Success())
	assert.Zero(t, d.CallsMade(), "counter must not advance on failure")

	// The call record was already written before the call attempt.
	n, err := led.Count(context.Background(), ledger.StreamCalls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	failures := sink.byKind(model.DisplayCallFailed)
	require.Len(t, failures, 1)
	// Raw transport errors stay out of the observer surface.
	assert.False(t, strings.Contains(failures[0].Status, "connection refused"))
	assert.Equal(t, errorColor, failures[0].StatusColor)
}

func TestDispatchEveryEscalationOneRecord(t *testing.T) {
	led := openEngineLedger(t)
	d := NewDispatcher(led, newFakeCaller(8), zap.NewNop(), nil)

	r := model.VitalReading{HeartRate: 150, SpO2: 97, Temperature: 36.8, Timestamp: time.Now()}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), model.AlertHeart, r, false)
		}()
	}
	wg.Wait()

	n, err := led.Count(context.Background(), ledger.StreamCalls)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, d.CallsMade())
}

func TestResetCounter(t *testing.T) {
	led := openEngineLedger(t)
	sink := &eventSink{}
	d := NewDispatcher(led, newFakeCaller(1), zap.NewNop(), sink.emit)

	r := model.VitalReading{HeartRate: 155, SpO2: 96, Temperature: 37.0, Timestamp: time.Now()}
	d.Dispatch(context.Background(), model.AlertHeart, r, false)
	require.Equal(t, 1, d.CallsMade())

	d.ResetCounter()
	assert.Zero(t, d.CallsMade())
	assert.Len(t, sink.byKind(model.DisplayCounterReset), 1)
}
