// Package terrain provides the distance-indexed inclination profiles a run
// travels over. A profile maps the normalized travel fraction to a
// (pitch, roll) pair with cosine-smoothed transitions between flat and
// inclined regions.
package terrain

import "math"

// Region boundaries of the inclined stretch, as travel fractions.
const (
	riseStart = 0.2
	riseEnd   = 0.3
	fallStart = 0.7
	fallEnd   = 0.8
)

// shape evaluates the five-region profile: flat, smooth rise, constant hold,
// smooth fall, flat. The transition factor 0.5*(1-cos(pi*s)) keeps the
// inclination and its slope continuous.
func shape(target, dRel float64) float64 {
	switch {
	case dRel < 0:
		return 0
	case dRel < riseStart:
		return 0
	case dRel < riseEnd:
		s := (dRel - riseStart) / (riseEnd - riseStart)
		return target * 0.5 * (1 - math.Cos(math.Pi*s))
	case dRel < fallStart:
		return target
	case dRel < fallEnd:
		s := (dRel - fallStart) / (fallEnd - fallStart)
		return target * 0.5 * (1 + math.Cos(math.Pi*s))
	}
	return 0
}

// Flat is level ground everywhere.
type Flat struct{}

func (Flat) Inclination(dRel float64) (pitch, roll float64) { return 0, 0 }

// SimpleIncline pitches up to Pitch over the middle stretch of the run.
type SimpleIncline struct {
	Pitch float64 // peak pitch (rad)
}

func (s SimpleIncline) Inclination(dRel float64) (pitch, roll float64) {
	return shape(s.Pitch, dRel), 0
}

// CompoundIncline applies the same five-region shape independently to pitch
// and roll, combined additively into the orientation seen by the robot.
type CompoundIncline struct {
	Pitch float64 // peak pitch (rad)
	Roll  float64 // peak roll (rad)
}

func (c CompoundIncline) Inclination(dRel float64) (pitch, roll float64) {
	return shape(c.Pitch, dRel), shape(c.Roll, dRel)
}
