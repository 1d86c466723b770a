package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/model"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func sampleReading() model.VitalReading {
	return model.VitalReading{
		HeartRate:   82,
		SpO2:        96,
		Temperature: 36.9,
		Timestamp:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAppendAndReadBackReading(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	r := sampleReading()
	a := model.DistressAssessment{Score: 15, Emotion: model.EmotionMildDiscomfort}
	require.NoError(t, l.AppendReading(ctx, r, a))

	rows, err := l.RecentReadings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 82, rows[0].HeartRate)
	assert.Equal(t, 96, rows[0].SpO2)
	assert.InDelta(t, 36.9, rows[0].Temperature, 0.001)
	assert.Equal(t, "MILD DISCOMFORT", rows[0].EmotionState)
	assert.Equal(t, 15, rows[0].Score)
	assert.True(t, rows[0].Timestamp.Equal(r.Timestamp))
}

func TestAppendEmergencyCallRoundTrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	rec := model.EmergencyCallRecord{
		ID:            "call-1",
		Timestamp:     time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
		AlertType:     model.AlertHeart,
		Reading:       sampleReading(),
		Emotion:       model.EmotionHighAnxiety,
		AutoTriggered: true,
	}
	require.NoError(t, l.AppendEmergencyCall(ctx, rec))

	calls, err := l.EmergencyCalls(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "call-1", calls[0].ID)
	assert.Equal(t, model.AlertHeart, calls[0].AlertType)
	assert.Equal(t, model.EmotionHighAnxiety, calls[0].Emotion)
	assert.True(t, calls[0].AutoTriggered)
	assert.Equal(t, 82, calls[0].Reading.HeartRate)
}

func TestInitIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	l1, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, l1.AppendFallEvent(context.Background(), time.Now()))
	require.NoError(t, l1.Close())

	// Reopening must keep the schema and the existing record.
	l2, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer l2.Close()

	n, err := l2.Count(context.Background(), StreamFalls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentAppendsSameStream(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.AppendHelpRequest(ctx, time.Now())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := l.Count(ctx, StreamHelps)
	require.NoError(t, err)
	assert.Equal(t, n, count, "every concurrent append must land exactly once")
}

func TestStreamsAreIndependent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.AppendReading(ctx, sampleReading(), model.DistressAssessment{}))
	require.NoError(t, l.AppendFallEvent(ctx, time.Now()))
	require.NoError(t, l.AppendFallEvent(ctx, time.Now()))

	for stream, want := range map[Stream]int{
		StreamReadings: 1,
		StreamCalls:    0,
		StreamFalls:    2,
		StreamHelps:    0,
	} {
		n, err := l.Count(ctx, stream)
		require.NoError(t, err)
		assert.Equal(t, want, n, "stream %s", stream)
	}
}

func TestRecentReadingsNewestFirst(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := sampleReading()
		r.HeartRate = 70 + i
		r.Timestamp = base.Add(time.Duration(i) * 3 * time.Second)
		require.NoError(t, l.AppendReading(ctx, r, model.DistressAssessment{}))
	}

	rows, err := l.RecentReadings(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 74, rows[0].HeartRate)
	assert.Equal(t, 73, rows[1].HeartRate)
	assert.Equal(t, 72, rows[2].HeartRate)
}
