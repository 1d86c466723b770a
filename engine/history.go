package engine

import (
	"sync"

	"github.com/rafeeqops/rafeeq/model"
)

// Frame is one scored reading kept for trend display and session recording.
type Frame struct {
	Reading model.VitalReading       `json:"reading"`
	Assess  model.DistressAssessment `json:"assessment"`
	Num     int                      `json:"num"`
}

// History is a ring buffer of recent frames for trend rendering.
type History struct {
	buf  []Frame
	head int
	size int
	cap  int
	mu   sync.RWMutex
}

// NewHistory creates a ring buffer with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		buf: make([]Frame, capacity),
		cap: capacity,
	}
}

// Push adds a frame to the ring buffer.
func (h *History) Push(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.head] = f
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
}

// Len returns the number of frames stored.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Latest returns a copy of the most recent frame.
func (h *History) Latest() *Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return nil
	}
	idx := (h.head - 1 + h.cap) % h.cap
	f := h.buf[idx] // copy
	return &f
}

// Get returns a copy of the frame at position i (0 = oldest in buffer).
func (h *History) Get(i int) *Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= h.size {
		return nil
	}
	idx := (h.head - h.size + i + h.cap) % h.cap
	f := h.buf[idx] // copy
	return &f
}

// HeartRates returns the heart-rate series oldest-first, for charting.
func (h *History) HeartRates() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]float64, 0, h.size)
	for i := 0; i < h.size; i++ {
		idx := (h.head - h.size + i + h.cap) % h.cap
		out = append(out, float64(h.buf[idx].Reading.HeartRate))
	}
	return out
}
