package physics

import (
	"math"

	"github.com/san-kum/roversim/internal/rover"
)

var differentialWheelNames = []string{"L", "R"}

// Differential is a two-wheel-drive robot with a supporting caster. The
// caster carries no dynamics; forces are split across the left and right
// driven wheels only.
type Differential struct {
	variant rover.Variant
	p       rover.ParameterSet
}

func (d *Differential) Variant() rover.Variant     { return d.variant }
func (d *Differential) Params() rover.ParameterSet { return d.p }

// WheelCount counts the caster: two driven wheels plus one idler.
func (d *Differential) WheelCount() int   { return 3 }
func (d *Differential) DrivenWheels() int { return 2 }

func (d *Differential) StepKinematics(prev rover.State, v, omega, dt float64) rover.State {
	return stepKinematics(prev, v, omega, dt)
}

// normals distributes m*g*cos(pitch) across the two driven wheels: a lateral
// CG offset term (positive B loads the left wheel) and a roll term (positive
// roll loads the right wheel). The two halves always sum back to the
// projected weight.
func (d *Differential) normals(pitch, roll float64) (nL, nR float64) {
	w := d.p.Weight() * math.Cos(pitch)
	base := w / 2

	// CG over a wheel (|B| = track/2) would transfer the full load to it.
	offset := w * d.p.OffsetB / d.p.Track
	rollShift := d.p.Weight() * math.Sin(roll) / 2

	nL = base + offset - rollShift
	nR = base - offset + rollShift
	return nL, nR
}

func (d *Differential) ComputeDynamics(kin rover.KinematicState, pitch, roll float64) rover.Dynamics {
	half := d.p.Track / 2
	r := d.p.WheelRadius

	vL := kin.V - kin.Omega*half
	vR := kin.V + kin.Omega*half
	aL := kin.Accel - kin.AngAccel*half
	aR := kin.Accel + kin.AngAccel*half

	nL, nR := d.normals(pitch, roll)

	// Uniform split of the traction demand across both driven wheels.
	req := (d.p.Mass*kin.Accel + d.p.Weight()*math.Sin(pitch)) / 2

	wheels := []rover.WheelState{
		wheelFor("L", d.p, vL/r, aL/r, req, nL),
		wheelFor("R", d.p, vR/r, aR/r, req, nR),
	}

	dyn := rover.Dynamics{Wheels: wheels}
	for _, w := range wheels {
		dyn.TotalPower += w.Power
	}
	// A differential robot is treated as non-tippable in this model; wheel
	// unloading still shows up through the contact flags.
	return dyn
}

func (d *Differential) GravitationalYawMoment(pitch, roll float64) float64 {
	if d.variant == rover.DifferentialCentered {
		return 0
	}
	return yawMoment(d.p, pitch, roll)
}

func (d *Differential) LateralStability(pitch, roll float64) rover.StabilityReport {
	nL, nR := d.normals(pitch, roll)
	return lateralStability(d.p, differentialWheelNames, []float64{nL, nR}, pitch, roll)
}
