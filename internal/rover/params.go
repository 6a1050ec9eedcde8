package rover

import (
	"fmt"
	"math"
)

// DefaultGravity is standard gravitational acceleration (m/s^2).
const DefaultGravity = 9.81

// ParameterSet is the immutable physical and geometric description of one
// robot instance. Construct it, call Validate, and never mutate it during a
// run.
type ParameterSet struct {
	Mass       float64 // total mass (kg)
	Friction   float64 // static friction coefficient
	Length     float64 // chassis length (m)
	Width      float64 // chassis width (m)
	WheelRadius float64 // driven wheel radius (m)

	// Track is the left-right wheel separation for differential robots (m).
	Track float64
	// CasterOffset is the caster wheel's distance from the drive axle (m).
	CasterOffset float64

	// TrackWidth and Wheelbase are the lateral and longitudinal wheel
	// separations for four-wheel robots (m).
	TrackWidth float64
	Wheelbase  float64

	// OffsetA, OffsetB, OffsetC displace the center of mass from the
	// geometric center: longitudinal (+ front), lateral (+ left), vertical.
	// All zero for centered variants.
	OffsetA float64
	OffsetB float64
	OffsetC float64

	WheelInertia float64 // wheel rotational inertia Iw (kg m^2)
	WheelDamping float64 // viscous damping bw (N m s/rad)

	Gravity float64 // defaults to DefaultGravity when zero
}

// WithDefaults fills zero-valued ambient fields.
func (p ParameterSet) WithDefaults() ParameterSet {
	if p.Gravity == 0 {
		p.Gravity = DefaultGravity
	}
	return p
}

// Validate checks the fields a given variant relies on. Every failure wraps
// ErrInvalidGeometry. The engine never re-checks these per tick.
func (p ParameterSet) Validate(v Variant) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidGeometry, fmt.Sprintf(format, args...))
	}

	if p.Mass <= 0 {
		return fail("mass must be positive, got %g", p.Mass)
	}
	if p.Friction < 0 {
		return fail("friction coefficient must be non-negative, got %g", p.Friction)
	}
	if p.WheelRadius <= 0 {
		return fail("wheel radius must be positive, got %g", p.WheelRadius)
	}
	if p.Gravity <= 0 {
		return fail("gravity must be positive, got %g", p.Gravity)
	}
	if p.WheelInertia < 0 || p.WheelDamping < 0 {
		return fail("wheel inertia and damping must be non-negative")
	}

	switch v {
	case DifferentialCentered, DifferentialOffset:
		if p.Track <= 0 {
			return fail("track width must be positive, got %g", p.Track)
		}
	case FourWheelCentered, FourWheelOffset:
		if p.TrackWidth <= 0 || p.Wheelbase <= 0 {
			return fail("track width and wheelbase must be positive, got (%g, %g)", p.TrackWidth, p.Wheelbase)
		}
	default:
		return fail("unknown variant %v", v)
	}

	switch v {
	case DifferentialCentered, FourWheelCentered:
		if p.OffsetA != 0 || p.OffsetB != 0 || p.OffsetC != 0 {
			return fail("centered variant requires zero center-of-mass offsets")
		}
	case DifferentialOffset:
		if math.Abs(p.OffsetB) >= p.Track/2 {
			return fail("|B|=%g must stay inside the half-track %g", math.Abs(p.OffsetB), p.Track/2)
		}
	case FourWheelOffset:
		if math.Abs(p.OffsetA) >= p.Wheelbase/2 {
			return fail("|A|=%g must stay inside the half-wheelbase %g", math.Abs(p.OffsetA), p.Wheelbase/2)
		}
		if math.Abs(p.OffsetB) >= p.TrackWidth/2 {
			return fail("|B|=%g must stay inside the half-track %g", math.Abs(p.OffsetB), p.TrackWidth/2)
		}
	}

	return nil
}

// Weight is the robot's weight m*g (N).
func (p ParameterSet) Weight() float64 {
	return p.Mass * p.Gravity
}
