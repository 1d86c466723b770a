// Package ledger persists the append-only record streams: vital readings,
// emergency calls, fall events, and help requests.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Stream identifies one of the four independent append-only streams.
type Stream int

const (
	StreamReadings Stream = iota
	StreamCalls
	StreamFalls
	StreamHelps
	streamCount
)

func (s Stream) String() string {
	switch s {
	case StreamReadings:
		return "vital_readings"
	case StreamCalls:
		return "emergency_calls"
	case StreamFalls:
		return "fall_events"
	case StreamHelps:
		return "help_requests"
	}
	return "unknown"
}

// Ledger is the durable record sink. Appends to the same stream are
// serialized by a per-stream mutex; appends to different streams are
// independent and never atomic together.
type Ledger struct {
	db     *sql.DB
	logger *zap.Logger
	mu     [streamCount]sync.Mutex
}

// Open opens or creates the ledger database and applies the schema.
// Initialization is idempotent: existing records are never touched.
func Open(path string, logger *zap.Logger) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	l := &Ledger{db: db, logger: logger}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vital_readings (
			id INTEGER PRIMARY KEY,
			ts TEXT NOT NULL,
			heart_rate_bpm INTEGER NOT NULL,
			spo2_percent INTEGER NOT NULL,
			temperature_celsius REAL NOT NULL,
			emotional_state TEXT NOT NULL,
			emotion_score INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS emergency_calls (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			heart_rate_bpm INTEGER NOT NULL,
			spo2_percent INTEGER NOT NULL,
			temperature_celsius REAL NOT NULL,
			emotion_state TEXT NOT NULL,
			auto_triggered INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS fall_events (
			id INTEGER PRIMARY KEY,
			ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS help_requests (
			id INTEGER PRIMARY KEY,
			ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_vital_readings_ts ON vital_readings(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_emergency_calls_ts ON emergency_calls(ts);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AppendReading durably records one scored reading. Exactly one row per
// scored reading, whether or not it escalates.
func (l *Ledger) AppendReading(ctx context.Context, r model.VitalReading, a model.DistressAssessment) error {
	l.mu[StreamReadings].Lock()
	defer l.mu[StreamReadings].Unlock()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO vital_readings (ts, heart_rate_bpm, spo2_percent, temperature_celsius, emotional_state, emotion_score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Timestamp.Format(time.RFC3339Nano),
		r.HeartRate,
		r.SpO2,
		r.Temperature,
		a.Emotion.String(),
		a.Score,
	)
	if err != nil {
		return fmt.Errorf("append reading: %w", err)
	}
	return nil
}

// AppendEmergencyCall records one dispatched alert.
func (l *Ledger) AppendEmergencyCall(ctx context.Context, rec model.EmergencyCallRecord) error {
	l.mu[StreamCalls].Lock()
	defer l.mu[StreamCalls].Unlock()

	auto := 0
	if rec.AutoTriggered {
		auto = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO emergency_calls (id, ts, alert_type, heart_rate_bpm, spo2_percent, temperature_celsius, emotion_state, auto_triggered)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.AlertType.String(),
		rec.Reading.HeartRate,
		rec.Reading.SpO2,
		rec.Reading.Temperature,
		rec.Emotion.String(),
		auto,
	)
	if err != nil {
		return fmt.Errorf("append emergency call: %w", err)
	}
	return nil
}

// AppendFallEvent records a fall timestamp.
func (l *Ledger) AppendFallEvent(ctx context.Context, ts time.Time) error {
	l.mu[StreamFalls].Lock()
	defer l.mu[StreamFalls].Unlock()

	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO fall_events (ts) VALUES (?)`, ts.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("append fall event: %w", err)
	}
	return nil
}

// AppendHelpRequest records a help-request timestamp.
func (l *Ledger) AppendHelpRequest(ctx context.Context, ts time.Time) error {
	l.mu[StreamHelps].Lock()
	defer l.mu[StreamHelps].Unlock()

	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO help_requests (ts) VALUES (?)`, ts.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("append help request: %w", err)
	}
	return nil
}

// ReadingRow is one persisted reading with its assessment columns.
type ReadingRow struct {
	Timestamp    time.Time
	HeartRate    int
	SpO2         int
	Temperature  float64
	EmotionState string
	Score        int
}

// RecentReadings returns up to n readings, newest first.
func (l *Ledger) RecentReadings(ctx context.Context, n int) ([]ReadingRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT ts, heart_rate_bpm, spo2_percent, temperature_celsius, emotional_state, emotion_score
		 FROM vital_readings ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []ReadingRow
	for rows.Next() {
		var r ReadingRow
		var ts string
		if err := rows.Scan(&ts, &r.HeartRate, &r.SpO2, &r.Temperature, &r.EmotionState, &r.Score); err != nil {
			return nil, err
		}
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// EmergencyCalls returns up to n call records, newest first.
func (l *Ledger) EmergencyCalls(ctx context.Context, n int) ([]model.EmergencyCallRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, ts, alert_type, heart_rate_bpm, spo2_percent, temperature_celsius, emotion_state, auto_triggered
		 FROM emergency_calls ORDER BY ts DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query emergency calls: %w", err)
	}
	defer rows.Close()

	var out []model.EmergencyCallRecord
	for rows.Next() {
		var rec model.EmergencyCallRecord
		var ts, alertType, emotion string
		var auto int
		if err := rows.Scan(&rec.ID, &ts, &alertType, &rec.Reading.HeartRate, &rec.Reading.SpO2,
			&rec.Reading.Temperature, &emotion, &auto); err != nil {
			return nil, err
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		rec.AlertType = model.ParseAlertType(alertType)
		rec.Emotion = parseEmotion(emotion)
		rec.AutoTriggered = auto != 0
		rec.Reading.Timestamp = rec.Timestamp
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseEmotion(s string) model.Emotion {
	for e := model.EmotionStable; e <= model.EmotionCriticalDistress; e++ {
		if e.String() == s {
			return e
		}
	}
	return model.EmotionStable
}

// Count returns the number of records in a stream.
func (l *Ledger) Count(ctx context.Context, s Stream) (int, error) {
	var n int
	// Stream names are fixed constants, not user input.
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s, err)
	}
	return n, nil
}

// LogAppendFailure records a persistence failure without interrupting
// monitoring. Data loss is limited to the single failed record.
func (l *Ledger) LogAppendFailure(s Stream, err error) {
	l.logger.Error("ledger append failed",
		zap.String("stream", s.String()),
		zap.Error(err),
	)
}
