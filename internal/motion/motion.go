// Package motion provides the time-indexed velocity profiles that drive a
// simulation run. Profiles are pure functions of elapsed time, configured
// once and immutable afterwards.
package motion

import (
	"fmt"

	"github.com/san-kum/roversim/internal/rover"
)

// RampConstantRamp ramps linearly up to the target velocities, holds them,
// then ramps back down to zero. Any phase may have zero width and is simply
// skipped; the output is continuous across every boundary.
type RampConstantRamp struct {
	v0, omega0         float64
	tAcc, tConst, tDec float64
}

// NewRampConstantRamp validates the phase durations. Negative phases or a
// zero total span are rejected.
func NewRampConstantRamp(v0, omega0, tAcc, tConst, tDec float64) (*RampConstantRamp, error) {
	if tAcc < 0 || tConst < 0 || tDec < 0 {
		return nil, fmt.Errorf("%w: negative phase duration (%g, %g, %g)", rover.ErrInvalidProfile, tAcc, tConst, tDec)
	}
	if tAcc+tConst+tDec <= 0 {
		return nil, fmt.Errorf("%w: ramp profile has zero total duration", rover.ErrInvalidProfile)
	}
	return &RampConstantRamp{v0: v0, omega0: omega0, tAcc: tAcc, tConst: tConst, tDec: tDec}, nil
}

func (p *RampConstantRamp) Duration() float64 {
	return p.tAcc + p.tConst + p.tDec
}

func (p *RampConstantRamp) Target(t float64) (v, omega float64) {
	switch {
	case t < 0:
		return 0, 0
	case t < p.tAcc:
		s := t / p.tAcc
		return p.v0 * s, p.omega0 * s
	case t < p.tAcc+p.tConst:
		return p.v0, p.omega0
	case t < p.Duration():
		s := 1 - (t-p.tAcc-p.tConst)/p.tDec
		return p.v0 * s, p.omega0 * s
	}
	return 0, 0
}

// FixedVelocity commands constant velocities for a fixed span.
type FixedVelocity struct {
	v, omega float64
	span     float64
}

func NewFixedVelocity(v, omega, span float64) (*FixedVelocity, error) {
	if span <= 0 {
		return nil, fmt.Errorf("%w: fixed profile duration must be positive, got %g", rover.ErrInvalidProfile, span)
	}
	return &FixedVelocity{v: v, omega: omega, span: span}, nil
}

func (p *FixedVelocity) Duration() float64 { return p.span }

func (p *FixedVelocity) Target(t float64) (v, omega float64) {
	if t < 0 || t > p.span {
		return 0, 0
	}
	return p.v, p.omega
}
