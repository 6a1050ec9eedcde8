// Package metrics provides per-run scalar summaries computed from the
// snapshot stream. The engine feeds every recorded snapshot through each
// registered metric and reports the final values with the run outcome.
package metrics

import (
	"math"

	"github.com/san-kum/roversim/internal/rover"
)

// Metric accumulates one scalar over a run.
type Metric interface {
	Name() string
	Observe(s rover.Snapshot)
	Value() float64
	Reset()
}

// SlipFraction is the fraction of ticks in which at least one wheel slipped.
type SlipFraction struct {
	slipped int
	samples int
}

func NewSlipFraction() *SlipFraction { return &SlipFraction{} }

func (m *SlipFraction) Name() string { return "slip_fraction" }

func (m *SlipFraction) Observe(s rover.Snapshot) {
	m.samples++
	for _, w := range s.Wheels {
		if w.Slip {
			m.slipped++
			break
		}
	}
}

func (m *SlipFraction) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.slipped) / float64(m.samples)
}

func (m *SlipFraction) Reset() { m.slipped, m.samples = 0, 0 }

// PeakPower is the largest absolute total power drawn during the run.
type PeakPower struct {
	peak float64
}

func NewPeakPower() *PeakPower { return &PeakPower{} }

func (m *PeakPower) Name() string { return "peak_power" }

func (m *PeakPower) Observe(s rover.Snapshot) {
	if p := math.Abs(s.TotalPower); p > m.peak {
		m.peak = p
	}
}

func (m *PeakPower) Value() float64 { return m.peak }
func (m *PeakPower) Reset()         { m.peak = 0 }

// TotalEnergy integrates |P| dt over the run, the energy budget a battery
// would have to supply.
type TotalEnergy struct {
	energy float64
	lastT  float64
	seen   bool
}

func NewTotalEnergy() *TotalEnergy { return &TotalEnergy{} }

func (m *TotalEnergy) Name() string { return "total_energy" }

func (m *TotalEnergy) Observe(s rover.Snapshot) {
	if m.seen {
		if dt := s.T - m.lastT; dt > 0 {
			m.energy += math.Abs(s.TotalPower) * dt
		}
	}
	m.lastT = s.T
	m.seen = true
}

func (m *TotalEnergy) Value() float64 { return m.energy }
func (m *TotalEnergy) Reset()         { m.energy, m.lastT, m.seen = 0, 0, false }

// MinMargin is the lowest lateral stability margin seen during the run.
type MinMargin struct {
	min  float64
	seen bool
}

func NewMinMargin() *MinMargin { return &MinMargin{} }

func (m *MinMargin) Name() string { return "min_margin" }

func (m *MinMargin) Observe(s rover.Snapshot) {
	if !m.seen || s.Margin < m.min {
		m.min = s.Margin
		m.seen = true
	}
}

func (m *MinMargin) Value() float64 {
	if !m.seen {
		return 1
	}
	return m.min
}

func (m *MinMargin) Reset() { m.min, m.seen = 0, false }

// Distance is the total path length traveled.
type Distance struct {
	last float64
}

func NewDistance() *Distance { return &Distance{} }

func (m *Distance) Name() string             { return "distance" }
func (m *Distance) Observe(s rover.Snapshot) { m.last = s.Distance }
func (m *Distance) Value() float64           { return m.last }
func (m *Distance) Reset()                   { m.last = 0 }

// Standard returns the default metric set the engine attaches to a run.
func Standard() []Metric {
	return []Metric{NewSlipFraction(), NewPeakPower(), NewTotalEnergy(), NewMinMargin(), NewDistance()}
}
