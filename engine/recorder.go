package engine

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rafeeqops/rafeeq/model"
)

// RecordFrame is one monitoring tick written to a session file.
type RecordFrame struct {
	Reading   model.VitalReading       `json:"reading"`
	Assess    model.DistressAssessment `json:"assessment"`
	Num       int                      `json:"num"`
	Escalated bool                     `json:"escalated,omitempty"`
}

// Recorder appends session frames as JSON lines.
type Recorder struct {
	enc *json.Encoder
	mu  sync.Mutex
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

// Write appends one frame. Encode errors are swallowed: recording is an
// aid, never a reason to stop monitoring.
func (r *Recorder) Write(f RecordFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(f)
}

// ReplaySource feeds recorded readings back through the engine, letting a
// captured session drive the same scoring, policy, and ledger path.
type ReplaySource struct {
	mu     sync.Mutex
	frames []RecordFrame
	idx    int
}

// NewReplaySource parses a recorded session (JSON lines). Malformed lines
// are skipped.
func NewReplaySource(r io.Reader) (*ReplaySource, error) {
	var frames []RecordFrame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var f RecordFrame
		if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
			continue
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &ReplaySource{frames: frames}, nil
}

// OpenReplay opens a recorded session file.
func OpenReplay(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReplaySource(f)
}

// Next returns the next recorded reading, restamped to the current tick so
// cooldown arithmetic works on replay. Exhausts at end of file.
func (s *ReplaySource) Next(now time.Time) (model.VitalReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.frames) {
		return model.VitalReading{}, false
	}
	r := s.frames[s.idx].Reading
	s.idx++
	r.Timestamp = now
	return r, true
}

// Len returns the number of recorded frames.
func (s *ReplaySource) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}
