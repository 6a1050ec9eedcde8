package sim

import (
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/roversim/internal/motion"
	"github.com/san-kum/roversim/internal/physics"
	"github.com/san-kum/roversim/internal/rover"
	"github.com/san-kum/roversim/internal/terrain"
)

func testModel(t *testing.T) rover.Model {
	t.Helper()
	m, err := physics.New(rover.DifferentialCentered, rover.ParameterSet{
		Mass:        10,
		Friction:    0.6,
		WheelRadius: 0.08,
		Track:       0.5,
	})
	if err != nil {
		t.Fatalf("physics.New: %v", err)
	}
	return m
}

func waitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish in time")
		return Outcome{}
	}
}

// Straight line at 1 m/s for 10 s on flat ground: the robot ends 10 m down
// the x axis with equal wheel loads and no slip once the start transient has
// passed.
func TestRunStraightLine(t *testing.T) {
	prof, err := motion.NewFixedVelocity(1, 0, 10)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan Outcome, 1)
	eng := New(Options{})
	err = eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{
		OnFinish: func(o Outcome) { done <- o },
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	o := waitOutcome(t, done)
	if !o.Success || o.Reason != "completed" {
		t.Fatalf("outcome: success=%v reason=%q", o.Success, o.Reason)
	}
	if o.Steps != 200 || math.Abs(o.SimTime-10) > 1e-9 {
		t.Errorf("steps=%d simtime=%g, want 200 steps over 10 s", o.Steps, o.SimTime)
	}
	if eng.Phase() != PhaseCompleted {
		t.Errorf("phase %v, want completed", eng.Phase())
	}
	if o.RunID == "" {
		t.Error("missing run id")
	}

	last, ok := o.History.Last()
	if !ok {
		t.Fatal("empty history")
	}
	if math.Abs(last.Pose.X-10) > 1e-9 || math.Abs(last.Pose.Y) > 1e-12 {
		t.Errorf("final pose (%g, %g), want (10, 0)", last.Pose.X, last.Pose.Y)
	}
	if math.Abs(last.Distance-10) > 1e-9 {
		t.Errorf("distance %g, want 10", last.Distance)
	}

	for _, w := range last.Wheels {
		if math.Abs(w.Normal-49.05) > 1e-9 {
			t.Errorf("wheel %s: normal %g, want 49.05", w.Name, w.Normal)
		}
	}

	// The instantaneous velocity command makes the very first tick slip;
	// every tick after it must be clean.
	for _, s := range o.History.Snapshots[1:] {
		for _, w := range s.Wheels {
			if w.Slip {
				t.Fatalf("unexpected slip at t=%g on wheel %s", s.T, w.Name)
			}
		}
		if !s.Stable || s.Margin != 1 {
			t.Fatalf("flat ground must be fully stable, got margin %g at t=%g", s.Margin, s.T)
		}
	}

	if latest, ok := eng.Latest(); !ok || latest.T != last.T {
		t.Error("Latest should hold the final snapshot after completion")
	}
	if hv := eng.History(); len(hv.Snapshots) != 200 {
		t.Errorf("History() returned %d snapshots, want 200", len(hv.Snapshots))
	}
}

func TestStartPhaseMachine(t *testing.T) {
	prof, _ := motion.NewFixedVelocity(1, 0, 30)

	gate := make(chan struct{})
	done := make(chan Outcome, 1)
	eng := New(Options{NotifyInterval: 0.01})
	err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{
		OnTick:   func(rover.View) { <-gate },
		OnFinish: func(o Outcome) { done <- o },
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if eng.Phase() != PhaseRunning {
		t.Fatalf("phase %v after Start", eng.Phase())
	}

	if err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{}); !errors.Is(err, rover.ErrAlreadyRunning) {
		t.Errorf("second Start: want ErrAlreadyRunning, got %v", err)
	}
	if err := eng.Reset(); !errors.Is(err, rover.ErrInvalidState) {
		t.Errorf("Reset while running: want ErrInvalidState, got %v", err)
	}

	eng.Stop()
	eng.Stop() // idempotent
	close(gate)

	o := waitOutcome(t, done)
	if o.Success || o.Reason != "stopped_manually" {
		t.Errorf("outcome after Stop: success=%v reason=%q", o.Success, o.Reason)
	}
	if eng.Phase() != PhaseStopped {
		t.Errorf("phase %v, want stopped", eng.Phase())
	}

	// Terminal phases demand a reset before the next run.
	if err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{}); !errors.Is(err, rover.ErrInvalidState) {
		t.Errorf("Start from stopped: want ErrInvalidState, got %v", err)
	}
	if err := eng.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if eng.Phase() != PhaseIdle {
		t.Errorf("phase %v after Reset", eng.Phase())
	}
	if _, ok := eng.Latest(); ok {
		t.Error("Reset must clear the latest snapshot")
	}

	done2 := make(chan Outcome, 1)
	short, _ := motion.NewFixedVelocity(1, 0, 0.5)
	if err := eng.Start(testModel(t), short, terrain.Flat{}, Callbacks{OnFinish: func(o Outcome) { done2 <- o }}); err != nil {
		t.Fatalf("Start after Reset: %v", err)
	}
	if o := waitOutcome(t, done2); !o.Success {
		t.Errorf("rerun failed: %q", o.Reason)
	}
}

func TestStartRejectsNilInputs(t *testing.T) {
	eng := New(Options{})
	prof, _ := motion.NewFixedVelocity(1, 0, 1)
	if err := eng.Start(nil, prof, terrain.Flat{}, Callbacks{}); !errors.Is(err, rover.ErrInvalidState) {
		t.Errorf("nil model: want ErrInvalidState, got %v", err)
	}
	if err := eng.Start(testModel(t), nil, terrain.Flat{}, Callbacks{}); !errors.Is(err, rover.ErrInvalidState) {
		t.Errorf("nil motion: want ErrInvalidState, got %v", err)
	}
}

func TestOnFinishFiresOnce(t *testing.T) {
	prof, _ := motion.NewFixedVelocity(1, 0, 1)

	var calls atomic.Int32
	done := make(chan Outcome, 1)
	eng := New(Options{})
	err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{
		OnFinish: func(o Outcome) {
			calls.Add(1)
			done <- o
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	waitOutcome(t, done)

	eng.Stop() // no-op on a finished run
	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("OnFinish fired %d times", n)
	}
}

func TestHistoryBound(t *testing.T) {
	prof, _ := motion.NewFixedVelocity(1, 0, 10) // 200 steps

	done := make(chan Outcome, 1)
	eng := New(Options{HistoryCap: 50})
	if err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{OnFinish: func(o Outcome) { done <- o }}); err != nil {
		t.Fatal(err)
	}

	o := waitOutcome(t, done)
	if len(o.History.Snapshots) != 50 {
		t.Errorf("retained %d snapshots, want 50", len(o.History.Snapshots))
	}
	if o.History.Dropped != 150 {
		t.Errorf("dropped %d, want 150", o.History.Dropped)
	}
	// Retained snapshots are the newest ones.
	if o.History.Snapshots[0].T >= o.History.Snapshots[49].T {
		t.Error("history order lost")
	}
}

func TestPauseResume(t *testing.T) {
	prof, _ := motion.NewFixedVelocity(1, 0, 2)

	done := make(chan Outcome, 1)
	eng := New(Options{})
	if err := eng.Start(testModel(t), prof, terrain.Flat{}, Callbacks{OnFinish: func(o Outcome) { done <- o }}); err != nil {
		t.Fatal(err)
	}
	eng.Pause()
	eng.Resume()

	if o := waitOutcome(t, done); !o.Success {
		t.Errorf("run after pause/resume: %q", o.Reason)
	}
}

// faultyModel wraps a real model but corrupts its output to exercise the
// fault paths.
type faultyModel struct {
	rover.Model
	breakState   bool
	breakNormals bool
}

func (f *faultyModel) StepKinematics(prev rover.State, v, omega, dt float64) rover.State {
	st := f.Model.StepKinematics(prev, v, omega, dt)
	if f.breakState {
		st.Pose.X = math.NaN()
	}
	return st
}

func (f *faultyModel) ComputeDynamics(kin rover.KinematicState, pitch, roll float64) rover.Dynamics {
	dyn := f.Model.ComputeDynamics(kin, pitch, roll)
	if f.breakNormals && len(dyn.Wheels) > 0 {
		dyn.Wheels[0].Normal *= 2
	}
	return dyn
}

func TestRunFaults(t *testing.T) {
	for _, tc := range []struct {
		name   string
		model  *faultyModel
		reason string
	}{
		{"diverged state", &faultyModel{breakState: true}, "diverged"},
		{"broken normals", &faultyModel{breakNormals: true}, "normal forces"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.model.Model = testModel(t)
			prof, _ := motion.NewFixedVelocity(1, 0, 1)

			done := make(chan Outcome, 1)
			eng := New(Options{})
			if err := eng.Start(tc.model, prof, terrain.Flat{}, Callbacks{OnFinish: func(o Outcome) { done <- o }}); err != nil {
				t.Fatal(err)
			}

			o := waitOutcome(t, done)
			if o.Success {
				t.Fatal("faulty run reported success")
			}
			if eng.Phase() != PhaseFailed {
				t.Errorf("phase %v, want failed", eng.Phase())
			}
			if !strings.Contains(o.Reason, tc.reason) {
				t.Errorf("reason %q does not mention %q", o.Reason, tc.reason)
			}
		})
	}
}

func TestSweep(t *testing.T) {
	good := rover.ParameterSet{Mass: 10, Friction: 0.6, WheelRadius: 0.08, Track: 0.5}
	slick := good
	slick.Friction = 0.05

	ramp, err := motion.NewRampConstantRamp(5, 0, 0.5, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	fixed, _ := motion.NewFixedVelocity(1, 0, 2)

	cases := []Case{
		{Label: "baseline", Variant: rover.DifferentialCentered, Params: good, Motion: fixed, Terrain: terrain.Flat{}},
		{Label: "slippery", Variant: rover.DifferentialCentered, Params: slick, Motion: ramp, Terrain: terrain.Flat{}},
		{Label: "bad geometry", Variant: rover.DifferentialCentered, Params: rover.ParameterSet{}, Motion: fixed, Terrain: terrain.Flat{}},
	}

	results := Sweep(cases, Options{})
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, c := range cases {
		if results[i].Label != c.Label {
			t.Fatalf("result %d out of order: %q", i, results[i].Label)
		}
	}

	if !results[0].Outcome.Success {
		t.Errorf("baseline failed: %q", results[0].Outcome.Reason)
	}
	if results[0].Outcome.Metrics["slip_fraction"] >= 0.05 {
		t.Errorf("baseline slip fraction %g", results[0].Outcome.Metrics["slip_fraction"])
	}

	// An aggressive ramp on a near-frictionless surface slips through the
	// whole acceleration phase.
	if sf := results[1].Outcome.Metrics["slip_fraction"]; sf < 0.2 {
		t.Errorf("slippery case slip fraction %g, want a substantial fraction", sf)
	}

	if !errors.Is(results[2].Err, rover.ErrInvalidGeometry) {
		t.Errorf("bad case: want ErrInvalidGeometry, got %v", results[2].Err)
	}
}
