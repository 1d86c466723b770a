// Package sensor provides the vital-sign sources that feed the engine.
package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rafeeqops/rafeeq/model"
)

// Source produces vital readings for the monitoring loop. The second return
// is false when the source is exhausted (only replay sources ever are).
type Source interface {
	Next(now time.Time) (model.VitalReading, bool)
}

// Baseline vitals for the simulated patient.
const (
	baseHeartRate = 75
	baseSpO2      = 97
	baseTemp      = 36.8
)

// spikeOdds is the 1-in-N chance per reading of an injected abnormal value.
const spikeOdds = 25

// Simulator generates normally-varying vitals with occasional injected
// spikes (critical heart rate, low oxygen, or high fever).
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator seeded from the clock.
func NewSimulator() *Simulator {
	return NewSimulatorSeed(time.Now().UnixNano())
}

// NewSimulatorSeed creates a deterministic simulator for tests.
func NewSimulatorSeed(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next simulated reading. Never exhausts.
func (s *Simulator) Next(now time.Time) (model.VitalReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.VitalReading{
		HeartRate:   baseHeartRate + s.rng.Intn(11) - 5,
		SpO2:        baseSpO2 + s.rng.Intn(3) - 1,
		Temperature: round1(baseTemp + s.rng.Float64()*0.4 - 0.2),
		Timestamp:   now,
	}

	if s.rng.Intn(spikeOdds) == 0 {
		r.Spike = true
		switch s.rng.Intn(3) {
		case 0: // critical heart rate
			r.HeartRate = 145 + s.rng.Intn(21)
		case 1: // critical low oxygen
			r.SpO2 = 85 + s.rng.Intn(7)
		case 2: // high fever
			r.Temperature = round1(38.6 + s.rng.Float64()*0.9)
		}
	}

	return r, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
