// Package sim runs the fixed-step simulation loop. An Engine owns one robot
// model, one motion profile and one terrain profile per run, integrates them
// on a background goroutine, and publishes progress to the caller through
// copied snapshots only. No engine-owned state is ever handed out mutable.
package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/roversim/internal/log"
	"github.com/san-kum/roversim/internal/metrics"
	"github.com/san-kum/roversim/internal/rover"
)

// Phase is the engine lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseStopped
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseStopped:
		return "stopped"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

const (
	// DefaultDt is the integration step (s).
	DefaultDt = 0.05
	// DefaultNotifyInterval throttles observer callbacks (simulated s).
	DefaultNotifyInterval = 0.1

	// massTolerance is the relative budget for the normal-force invariant.
	massTolerance = 1e-6
)

// Options configure one engine. The zero value gets usable defaults.
type Options struct {
	Dt             float64 // integration step, default DefaultDt
	NotifyInterval float64 // OnTick cadence in simulated seconds, default DefaultNotifyInterval
	RealTime       bool    // pace the loop against the wall clock
	HistoryCap     int     // snapshot bound, default rover.DefaultHistoryCap
}

// Callbacks receive run progress. Both are invoked on the loop goroutine;
// OnFinish fires exactly once per run. Either may be nil.
type Callbacks struct {
	OnTick   func(rover.View)
	OnFinish func(Outcome)
}

// Outcome summarizes one finished run.
type Outcome struct {
	RunID   string
	Success bool
	Reason  string
	Steps   int
	SimTime float64
	Metrics map[string]float64
	History rover.View
}

// Engine drives one run at a time through the phase machine
// Idle -> Running -> {Completed, Stopped, Failed} -> Idle (via Reset).
type Engine struct {
	opts Options

	mu      sync.Mutex
	phase   Phase
	paused  bool
	stop    chan struct{}
	runID   string
	latest  *rover.Snapshot
	final   rover.View
	metrics []metrics.Metric
}

// New returns an idle engine.
func New(opts Options) *Engine {
	if opts.Dt <= 0 {
		opts.Dt = DefaultDt
	}
	if opts.NotifyInterval <= 0 {
		opts.NotifyInterval = DefaultNotifyInterval
	}
	return &Engine{opts: opts, phase: PhaseIdle}
}

// AddMetric registers a per-run metric. Only legal while idle.
func (e *Engine) AddMetric(m metrics.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseIdle {
		e.metrics = append(e.metrics, m)
	}
}

// Phase reports the current lifecycle state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Latest returns a copy of the most recently published snapshot.
func (e *Engine) Latest() (rover.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest == nil {
		return rover.Snapshot{}, false
	}
	return e.latest.Clone(), true
}

// History returns the finished run's record. Empty while a run is active;
// observers follow the in-progress history through OnTick views instead.
func (e *Engine) History() rover.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := rover.View{Snapshots: make([]rover.Snapshot, len(e.final.Snapshots)), Dropped: e.final.Dropped}
	for i, s := range e.final.Snapshots {
		v.Snapshots[i] = s.Clone()
	}
	return v
}

// Start begins a run on a background goroutine. It fails with
// ErrAlreadyRunning while a run is active and with ErrInvalidState from a
// terminal phase that has not been reset.
func (e *Engine) Start(model rover.Model, mo rover.MotionProfile, terr rover.TerrainProfile, cb Callbacks) error {
	if model == nil || mo == nil || terr == nil {
		return fmt.Errorf("%w: engine needs a model, a motion profile and a terrain profile", rover.ErrInvalidState)
	}

	e.mu.Lock()
	switch e.phase {
	case PhaseRunning:
		e.mu.Unlock()
		return rover.ErrAlreadyRunning
	case PhaseIdle:
	default:
		e.mu.Unlock()
		return fmt.Errorf("%w: reset required after a %s run", rover.ErrInvalidState, e.phase)
	}

	e.phase = PhaseRunning
	e.paused = false
	e.stop = make(chan struct{})
	e.runID = uuid.NewString()
	runID, stop := e.runID, e.stop
	for _, m := range e.metrics {
		m.Reset()
	}
	e.mu.Unlock()

	log.Debug("run starting", "run", runID, "variant", model.Variant().String(), "dt", e.opts.Dt)
	go e.run(model, mo, terr, cb, runID, stop)
	return nil
}

// Stop requests cooperative cancellation. Safe from any goroutine; the loop
// observes it within one tick.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseRunning {
		return
	}
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// Pause suspends the loop without leaving the Running phase.
func (e *Engine) Pause() { e.setPaused(true) }

// Resume continues a paused run.
func (e *Engine) Resume() { e.setPaused(false) }

func (e *Engine) setPaused(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseRunning {
		e.paused = v
	}
}

func (e *Engine) isPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Reset clears the recorded history and returns the engine to Idle. It fails
// with ErrInvalidState while a run is active.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseRunning {
		return fmt.Errorf("%w: cannot reset while running", rover.ErrInvalidState)
	}
	e.phase = PhaseIdle
	e.latest = nil
	e.final = rover.View{}
	e.runID = ""
	return nil
}

func (e *Engine) run(model rover.Model, mo rover.MotionProfile, terr rover.TerrainProfile, cb Callbacks, runID string, stop <-chan struct{}) {
	hist := rover.NewHistory(e.opts.HistoryCap)
	dt := e.opts.Dt
	total := mo.Duration()
	steps := int(math.Round(total / dt))
	if steps == 0 {
		steps = 1
	}

	st := rover.State{}
	distance := 0.0
	lastNotify := math.Inf(-1)

	finish := func(phase Phase, success bool, reason string, stepCount int, simTime float64) {
		view := hist.View()
		vals := make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			vals[m.Name()] = m.Value()
		}

		e.mu.Lock()
		e.phase = phase
		e.paused = false
		e.final = view
		e.mu.Unlock()

		log.Info("run finished", "run", runID, "phase", phase.String(), "steps", stepCount, "sim_time", simTime, "reason", reason)
		if cb.OnFinish != nil {
			cb.OnFinish(Outcome{
				RunID:   runID,
				Success: success,
				Reason:  reason,
				Steps:   stepCount,
				SimTime: simTime,
				Metrics: vals,
				History: view,
			})
		}
	}

	for step := 0; step < steps; step++ {
		tickStart := time.Now()

		select {
		case <-stop:
			finish(PhaseStopped, false, "stopped_manually", step, float64(step)*dt)
			return
		default:
		}

		for e.isPaused() {
			select {
			case <-stop:
				finish(PhaseStopped, false, "stopped_manually", step, float64(step)*dt)
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		t := float64(step) * dt
		v, omega := mo.Target(t)
		pitch, roll := terr.Inclination(t / total)

		st = model.StepKinematics(st, v, omega, dt)
		if !st.IsValid() {
			fault := &rover.Fault{Step: step, Time: t, Message: "state diverged (NaN or Inf)"}
			log.Error("run fault", "run", runID, "err", fault)
			finish(PhaseFailed, false, fault.Error(), step, t)
			return
		}

		dyn := model.ComputeDynamics(st.Kin, pitch, roll)
		if err := checkMass(model.Params(), dyn, pitch); err != nil {
			fault := &rover.Fault{Step: step, Time: t, Message: err.Error()}
			log.Error("run fault", "run", runID, "err", fault)
			finish(PhaseFailed, false, fault.Error(), step, t)
			return
		}

		distance += math.Abs(v) * dt
		stability := model.LateralStability(pitch, roll)

		snap := rover.Snapshot{
			T:           t + dt,
			Distance:    distance,
			Pitch:       pitch,
			Roll:        roll,
			Pose:        st.Pose,
			Kin:         st.Kin,
			Wheels:      dyn.Wheels,
			TotalPower:  dyn.TotalPower,
			TipOverRisk: dyn.TipOverRisk,
			TipWheels:   dyn.TipWheels,
			YawMoment:   model.GravitationalYawMoment(pitch, roll),
			Stable:      stability.Stable,
			Margin:      stability.Margin,
		}
		hist.Append(snap)
		for _, m := range e.metrics {
			m.Observe(snap)
		}

		e.mu.Lock()
		clone := snap.Clone()
		e.latest = &clone
		e.mu.Unlock()

		if cb.OnTick != nil && t-lastNotify >= e.opts.NotifyInterval {
			cb.OnTick(hist.View())
			lastNotify = t
		}

		if e.opts.RealTime {
			if rest := time.Duration(dt*float64(time.Second)) - time.Since(tickStart); rest > 0 {
				select {
				case <-stop:
				case <-time.After(rest):
				}
			}
		}
	}

	finish(PhaseCompleted, true, "completed", steps, float64(steps)*dt)
}

// checkMass verifies the normal-force invariant: the per-wheel normals must
// sum to m*g*cos(pitch) to within floating tolerance. A violation is a
// modeling fault, never silently repaired.
func checkMass(p rover.ParameterSet, dyn rover.Dynamics, pitch float64) error {
	sum := 0.0
	for _, w := range dyn.Wheels {
		sum += w.Normal
	}
	want := p.Mass * p.Gravity * math.Cos(pitch)
	if want == 0 {
		return nil
	}
	if math.Abs(sum-want)/math.Abs(want) > massTolerance {
		return fmt.Errorf("normal forces sum to %.9g, want %.9g", sum, want)
	}
	return nil
}
