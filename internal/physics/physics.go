package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/roversim/internal/rover"
)

// New constructs the model for a variant after validating its parameters.
func New(v rover.Variant, p rover.ParameterSet) (rover.Model, error) {
	p = p.WithDefaults()
	if err := p.Validate(v); err != nil {
		return nil, err
	}
	switch v {
	case rover.DifferentialCentered, rover.DifferentialOffset:
		return &Differential{variant: v, p: p}, nil
	case rover.FourWheelCentered, rover.FourWheelOffset:
		return &FourWheel{variant: v, p: p}, nil
	}
	return nil, fmt.Errorf("%w: unknown variant %v", rover.ErrInvalidGeometry, v)
}

// stepKinematics is the shared explicit-Euler pose update. Commanded
// velocities take effect instantly; accelerations come from the backward
// difference against the previous tick.
func stepKinematics(prev rover.State, v, omega, dt float64) rover.State {
	var accel, angAccel float64
	if dt > 0 {
		accel = (v - prev.Kin.V) / dt
		angAccel = (omega - prev.Kin.Omega) / dt
	}

	theta := prev.Pose.Theta + omega*dt
	return rover.State{
		Pose: rover.Pose{
			X:     prev.Pose.X + v*math.Cos(theta)*dt,
			Y:     prev.Pose.Y + v*math.Sin(theta)*dt,
			Theta: theta,
		},
		Kin: rover.KinematicState{V: v, Omega: omega, Accel: accel, AngAccel: angAccel},
	}
}

// saturate clips a required tangential force to the static friction cone.
// An unloaded wheel transmits nothing and counts as slipping.
func saturate(req, mu, normal float64) (force, adherence float64, slip, contact bool) {
	if normal <= 0 {
		return 0, 0, true, false
	}
	contact = true

	limit := mu * normal
	switch {
	case req > limit:
		force, slip = limit, true
	case req < -limit:
		force, slip = -limit, true
	default:
		force = req
	}

	if limit > 0 {
		adherence = math.Abs(force) / limit
	} else if slip {
		adherence = 1
	}
	return force, adherence, slip, contact
}

// wheelFor assembles one WheelState from the saturation result and the full
// wheel equation tau = Iw*wdot + bw*w + r*F.
func wheelFor(name string, p rover.ParameterSet, angVel, angAccel, req, normal float64) rover.WheelState {
	force, adherence, slip, contact := saturate(req, p.Friction, normal)
	torque := p.WheelInertia*angAccel + p.WheelDamping*angVel + p.WheelRadius*force
	return rover.WheelState{
		Name:          name,
		AngVel:        angVel,
		Normal:        normal,
		TangentialReq: req,
		Tangential:    force,
		Torque:        torque,
		Power:         torque * angVel,
		AngAccel:      angAccel,
		Adherence:     adherence,
		Slip:          slip,
		Contact:       contact,
	}
}

// yawMoment is the Z-axis moment from gravity acting at the offset CG on an
// inclined plane. Vanishes on flat terrain for any offset.
func yawMoment(p rover.ParameterSet, pitch, roll float64) float64 {
	return p.Mass * p.Gravity * (p.OffsetA*math.Sin(roll)*math.Cos(pitch) + p.OffsetB*math.Sin(pitch))
}

// lateralStability checks the lateral gravity component against each driven
// wheel's friction budget. normals must hold the static per-wheel loads.
func lateralStability(p rover.ParameterSet, names []string, normals []float64, pitch, roll float64) rover.StabilityReport {
	lateral := p.Mass * p.Gravity * math.Abs(math.Sin(roll)) / float64(len(normals))

	worst := 0.0
	worstWheel := ""
	for i, n := range normals {
		var ratio float64
		switch {
		case n <= 0:
			ratio = math.Inf(1)
		case p.Friction*n > 0:
			ratio = lateral / (p.Friction * n)
		case lateral > 0:
			ratio = math.Inf(1)
		}
		if ratio > worst {
			worst = ratio
			worstWheel = names[i]
		}
	}

	margin := 1 - worst
	if margin < 0 {
		margin = 0
	}
	if margin > 1 {
		margin = 1
	}

	if worst > 1 {
		return rover.StabilityReport{
			Stable:  false,
			Message: fmt.Sprintf("lateral slip risk: wheel %s past the friction limit", worstWheel),
			Margin:  margin,
		}
	}
	return rover.StabilityReport{
		Stable:  true,
		Message: fmt.Sprintf("lateral stability ok (margin %.0f%%)", margin*100),
		Margin:  margin,
	}
}
