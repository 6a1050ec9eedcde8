package rover

import (
	"errors"
	"fmt"
)

// Domain errors for robot construction and engine control.
var (
	// ErrInvalidGeometry indicates a physically impossible parameter set.
	ErrInvalidGeometry = errors.New("rover: invalid geometry")

	// ErrInvalidProfile indicates a malformed motion or terrain profile.
	ErrInvalidProfile = errors.New("rover: invalid profile")

	// ErrAlreadyRunning indicates Start was called on a non-idle engine.
	ErrAlreadyRunning = errors.New("rover: simulation already running")

	// ErrInvalidState indicates a control call illegal in the current phase.
	ErrInvalidState = errors.New("rover: invalid engine state")
)

// Fault wraps an unexpected numeric failure during a tick. It ends the
// current run only; the engine itself stays usable after a reset.
type Fault struct {
	Step    int
	Time    float64
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("simulation fault at step %d (t=%.4f): %s", f.Step, f.Time, f.Message)
}
