package sim

import (
	"sync"

	"github.com/san-kum/roversim/internal/metrics"
	"github.com/san-kum/roversim/internal/physics"
	"github.com/san-kum/roversim/internal/rover"
)

// Case is one entry of a parameter sweep: a label plus the fully-built
// inputs for a headless run.
type Case struct {
	Label   string
	Variant rover.Variant
	Params  rover.ParameterSet
	Motion  rover.MotionProfile
	Terrain rover.TerrainProfile
}

// CaseResult pairs a sweep case with its run outcome.
type CaseResult struct {
	Label   string
	Outcome Outcome
	Err     error
}

// Sweep runs every case concurrently on its own headless engine and returns
// results in case order. Each run gets the standard metric set.
func Sweep(cases []Case, opts Options) []CaseResult {
	opts.RealTime = false

	results := make([]CaseResult, len(cases))
	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		go func(i int, c Case) {
			defer wg.Done()
			results[i] = runCase(c, opts)
		}(i, c)
	}
	wg.Wait()
	return results
}

func runCase(c Case, opts Options) CaseResult {
	model, err := physics.New(c.Variant, c.Params)
	if err != nil {
		return CaseResult{Label: c.Label, Err: err}
	}

	eng := New(opts)
	for _, m := range metrics.Standard() {
		eng.AddMetric(m)
	}

	done := make(chan Outcome, 1)
	err = eng.Start(model, c.Motion, c.Terrain, Callbacks{
		OnFinish: func(o Outcome) { done <- o },
	})
	if err != nil {
		return CaseResult{Label: c.Label, Err: err}
	}
	return CaseResult{Label: c.Label, Outcome: <-done}
}
