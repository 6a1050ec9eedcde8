package rover

import (
	"fmt"
	"math"
)

// Variant identifies one concrete robot model.
type Variant int

const (
	DifferentialCentered Variant = iota
	DifferentialOffset
	FourWheelCentered
	FourWheelOffset
)

var variantNames = map[Variant]string{
	DifferentialCentered: "diff_centered",
	DifferentialOffset:   "diff_offset",
	FourWheelCentered:    "four_centered",
	FourWheelOffset:      "four_offset",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant maps a config/CLI tag to a Variant.
func ParseVariant(s string) (Variant, error) {
	for v, name := range variantNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidGeometry, s)
}

// Variants lists all model tags in declaration order.
func Variants() []Variant {
	return []Variant{DifferentialCentered, DifferentialOffset, FourWheelCentered, FourWheelOffset}
}

// Pose is position and heading in the fixed world frame.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// KinematicState holds body-frame velocities and their backward-difference
// derivatives for the current tick.
type KinematicState struct {
	V        float64 // linear velocity (m/s)
	Omega    float64 // angular velocity (rad/s)
	Accel    float64 // (v - v_prev)/dt
	AngAccel float64 // (omega - omega_prev)/dt
}

// State is the full per-tick robot state owned by the caller. Models are
// pure functions over it; they never retain state between ticks.
type State struct {
	Pose Pose
	Kin  KinematicState
}

// IsValid reports whether every component is a finite number.
func (s State) IsValid() bool {
	for _, v := range []float64{s.Pose.X, s.Pose.Y, s.Pose.Theta, s.Kin.V, s.Kin.Omega, s.Kin.Accel, s.Kin.AngAccel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// WheelState is one driven wheel's kinematic and dynamic quantities at one
// instant. Wheels are ordered and named by position (L/R, or FL/FR/RL/RR).
type WheelState struct {
	Name          string
	AngVel        float64 // wheel angular velocity (rad/s)
	Normal        float64 // normal force (N); may be non-positive when tipping
	TangentialReq float64 // required tangential force before saturation (N)
	Tangential    float64 // tangential force after friction clipping (N)
	Torque        float64 // axle torque (N m)
	Power         float64 // mechanical power (W)
	AngAccel      float64 // wheel angular acceleration (rad/s^2)
	Adherence     float64 // |F|/(mu*N) in [0,1]
	Slip          bool    // saturation changed the tangential force
	Contact       bool    // Normal > 0
}

// Dynamics is the per-tick output of a model's force computation.
type Dynamics struct {
	Wheels      []WheelState
	TotalPower  float64
	TipOverRisk bool
	TipWheels   []int // indices of wheels with non-positive normal force
}

// StabilityReport answers the lateral stability query. Margin 1 means the
// friction budget is untouched, 0 means at or past the limit.
type StabilityReport struct {
	Stable  bool
	Message string
	Margin  float64
}

// Snapshot aggregates everything recorded at one instant. It is the unit
// appended to History and handed to observers; all slices are private copies.
type Snapshot struct {
	T        float64
	Distance float64
	Pitch    float64
	Roll     float64

	Pose Pose
	Kin  KinematicState

	Wheels      []WheelState
	TotalPower  float64
	TipOverRisk bool
	TipWheels   []int
	YawMoment   float64

	Stable bool
	Margin float64
}

// Clone returns a deep copy safe to hand across goroutines.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Wheels = make([]WheelState, len(s.Wheels))
	copy(c.Wheels, s.Wheels)
	if s.TipWheels != nil {
		c.TipWheels = make([]int, len(s.TipWheels))
		copy(c.TipWheels, s.TipWheels)
	}
	return c
}

// Model is the capability contract shared by all four robot variants.
// Implementations are stateless: every method is a pure function of the
// parameter set and its arguments.
type Model interface {
	Variant() Variant
	Params() ParameterSet

	// WheelCount reports the logical wheel count (3 for differential:
	// two driven plus one caster; 4 for four-wheel).
	WheelCount() int

	// DrivenWheels reports how many wheels carry dynamics (2 or 4).
	DrivenWheels() int

	// StepKinematics advances the pose by explicit Euler under the commanded
	// velocities and refreshes the backward-difference accelerations.
	StepKinematics(prev State, v, omega, dt float64) State

	// ComputeDynamics evaluates per-wheel forces, torques and powers for the
	// current kinematic state under the given terrain inclination.
	ComputeDynamics(kin KinematicState, pitch, roll float64) Dynamics

	// GravitationalYawMoment is the Z-axis moment induced by gravity acting
	// at the offset center of mass on an inclined plane. Zero for centered
	// variants and on flat terrain.
	GravitationalYawMoment(pitch, roll float64) float64

	// LateralStability reports whether the lateral gravity component stays
	// within the friction budget of every driven wheel.
	LateralStability(pitch, roll float64) StabilityReport
}

// MotionProfile maps elapsed time to target body velocities. Implementations
// are immutable after construction.
type MotionProfile interface {
	// Target returns the commanded (v, omega) at time t in [0, Duration].
	Target(t float64) (v, omega float64)

	// Duration is the total profile span; past it the profile is exhausted.
	Duration() float64
}

// TerrainProfile maps a normalized travel fraction to terrain inclination.
type TerrainProfile interface {
	// Inclination returns (pitch, roll) at dRel in [0,1]; out-of-range
	// inputs clamp to the nearest edge.
	Inclination(dRel float64) (pitch, roll float64)
}
