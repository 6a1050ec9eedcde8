package physics

import (
	"math"

	"github.com/san-kum/roversim/internal/rover"
)

var fourWheelNames = []string{"FL", "FR", "RL", "RR"}

// FourWheel is a four-wheel-drive robot with wheels at the corners of a
// TrackWidth x Wheelbase rectangle, steered differentially by side.
type FourWheel struct {
	variant rover.Variant
	p       rover.ParameterSet
}

func (f *FourWheel) Variant() rover.Variant     { return f.variant }
func (f *FourWheel) Params() rover.ParameterSet { return f.p }

func (f *FourWheel) WheelCount() int   { return 4 }
func (f *FourWheel) DrivenWheels() int { return 4 }

func (f *FourWheel) StepKinematics(prev rover.State, v, omega, dt float64) rover.State {
	return stepKinematics(prev, v, omega, dt)
}

// lever is the effective turning arm applied to each side.
func (f *FourWheel) lever() float64 {
	return (f.p.TrackWidth + f.p.Wheelbase) / 4
}

// normals distributes m*g*cos(pitch) over the four wheels by exact linear
// superposition: CG offset terms (positive A loads the front pair, positive
// B the left pair), a pitch term shifting load rearward uphill, and a roll
// term shifting load to the right side. Every term cancels pairwise, so the
// four forces always sum back to the projected weight; negative values are
// reported as-is for tip-over detection.
func (f *FourWheel) normals(pitch, roll float64) [4]float64 {
	w := f.p.Weight() * math.Cos(pitch)
	quarter := w / 4

	halfWheelbase := f.p.Wheelbase / 2
	halfTrack := f.p.TrackWidth / 2

	dA := w * f.p.OffsetA / (4 * halfWheelbase)
	dB := w * f.p.OffsetB / (4 * halfTrack)
	dPitch := f.p.Weight() * math.Sin(pitch) / 4
	dRoll := f.p.Weight() * math.Sin(roll) / 4

	return [4]float64{
		quarter + dA + dB - dPitch - dRoll, // FL
		quarter + dA - dB - dPitch + dRoll, // FR
		quarter - dA + dB + dPitch - dRoll, // RL
		quarter - dA - dB + dPitch + dRoll, // RR
	}
}

func (f *FourWheel) ComputeDynamics(kin rover.KinematicState, pitch, roll float64) rover.Dynamics {
	lever := f.lever()
	r := f.p.WheelRadius

	// Left wheels slow down in a left turn, right wheels speed up.
	side := [4]float64{-1, 1, -1, 1}
	normals := f.normals(pitch, roll)

	req := (f.p.Mass*kin.Accel + f.p.Weight()*math.Sin(pitch)) / 4

	dyn := rover.Dynamics{Wheels: make([]rover.WheelState, 4)}
	for i, name := range fourWheelNames {
		vi := kin.V + side[i]*kin.Omega*lever
		ai := kin.Accel + side[i]*kin.AngAccel*lever
		dyn.Wheels[i] = wheelFor(name, f.p, vi/r, ai/r, req, normals[i])
		dyn.TotalPower += dyn.Wheels[i].Power

		if normals[i] <= 0 {
			dyn.TipOverRisk = true
			dyn.TipWheels = append(dyn.TipWheels, i)
		}
	}
	return dyn
}

func (f *FourWheel) GravitationalYawMoment(pitch, roll float64) float64 {
	if f.variant == rover.FourWheelCentered {
		return 0
	}
	return yawMoment(f.p, pitch, roll)
}

func (f *FourWheel) LateralStability(pitch, roll float64) rover.StabilityReport {
	normals := f.normals(pitch, roll)
	return lateralStability(f.p, fourWheelNames, normals[:], pitch, roll)
}
