package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/log"
	"github.com/san-kum/roversim/internal/metrics"
	"github.com/san-kum/roversim/internal/physics"
	"github.com/san-kum/roversim/internal/rover"
	"github.com/san-kum/roversim/internal/sim"
	"github.com/san-kum/roversim/internal/tui"
)

var (
	configFile string
	preset     string
	verbose    bool

	variant  string
	dt       float64
	duration float64

	velocity float64
	omega    float64
	tAcc     float64
	tConst   float64
	tDec     float64
	motKind  string

	terrainK string
	pitchDeg float64
	rollDeg  float64

	mass     float64
	friction float64
	offsetA  float64
	offsetB  float64

	frictions string
	plots     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roversim",
		Short: "wheeled mobile robot dynamics simulator",
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
	cobra.OnInitialize(func() {
		level := "info"
		if verbose {
			level = "debug"
		}
		log.Init(level)
	})

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation headless and print the summary",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&plots, "plots", true, "print ascii plots")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same scenario across a list of friction coefficients",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&frictions, "frictions", "0.1,0.3,0.5,0.7", "comma-separated friction values")

	presetsCmd := &cobra.Command{
		Use:   "presets [variant]",
		Short: "list available presets for a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for variant: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}

	variantsCmd := &cobra.Command{
		Use:   "variants",
		Short: "list robot model variants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, v := range rover.Variants() {
				fmt.Println(v)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, presetsCmd, variantsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&variant, "variant", "diff_centered", "robot variant")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration (fixed motion)")
	cmd.Flags().Float64Var(&velocity, "v", 1.0, "target linear velocity")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "target angular velocity")
	cmd.Flags().Float64Var(&tAcc, "t-acc", 2.0, "ramp-up duration")
	cmd.Flags().Float64Var(&tConst, "t-const", 5.0, "constant phase duration")
	cmd.Flags().Float64Var(&tDec, "t-dec", 2.0, "ramp-down duration")
	cmd.Flags().StringVar(&motKind, "motion", "ramp", "motion profile: ramp or fixed")
	cmd.Flags().StringVar(&terrainK, "terrain", "flat", "terrain: flat, simple or compound")
	cmd.Flags().Float64Var(&pitchDeg, "pitch", 0, "peak terrain pitch (deg)")
	cmd.Flags().Float64Var(&rollDeg, "roll", 0, "peak terrain roll (deg)")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "robot mass (kg)")
	cmd.Flags().Float64Var(&friction, "friction", config.DefaultFriction, "static friction coefficient")
	cmd.Flags().Float64Var(&offsetA, "offset-a", 0, "longitudinal CoM offset (m)")
	cmd.Flags().Float64Var(&offsetB, "offset-b", 0, "lateral CoM offset (m)")
}

// buildConfig layers preset, config file and explicit flags, in that order of
// increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(variant, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, variant, config.ListPresets(variant))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flagged := cmd.Flags().Changed
	if flagged("variant") {
		cfg.Variant = variant
	}
	if flagged("dt") {
		cfg.Dt = dt
	}
	if flagged("v") {
		cfg.Motion.V = velocity
	}
	if flagged("omega") {
		cfg.Motion.Omega = omega
	}
	if flagged("motion") {
		cfg.Motion.Kind = motKind
	}
	if flagged("time") {
		cfg.Motion.Duration = duration
	}
	if flagged("t-acc") {
		cfg.Motion.TAcc = tAcc
	}
	if flagged("t-const") {
		cfg.Motion.TConst = tConst
	}
	if flagged("t-dec") {
		cfg.Motion.TDec = tDec
	}
	if flagged("terrain") {
		cfg.Terrain.Kind = terrainK
	}
	if flagged("pitch") {
		cfg.Terrain.PitchDeg = pitchDeg
	}
	if flagged("roll") {
		cfg.Terrain.RollDeg = rollDeg
	}
	if flagged("mass") {
		cfg.Params.Mass = mass
	}
	if flagged("friction") {
		cfg.Params.Friction = friction
	}
	if flagged("offset-a") {
		cfg.Params.OffsetA = offsetA
	}
	if flagged("offset-b") {
		cfg.Params.OffsetB = offsetB
	}
	return cfg, nil
}

type runInputs struct {
	variant rover.Variant
	model   rover.Model
	motion  rover.MotionProfile
	terrain rover.TerrainProfile
	opts    sim.Options
}

func assemble(cfg *config.Config) (*runInputs, error) {
	v, err := rover.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	model, err := physics.New(v, cfg.ParameterSet())
	if err != nil {
		return nil, err
	}
	mo, err := cfg.BuildMotion()
	if err != nil {
		return nil, err
	}
	terr, err := cfg.BuildTerrain()
	if err != nil {
		return nil, err
	}
	return &runInputs{variant: v, model: model, motion: mo, terrain: terr, opts: cfg.EngineOptions()}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	in, err := assemble(cfg)
	if err != nil {
		return err
	}
	in.opts.RealTime = false

	eng := sim.New(in.opts)
	for _, m := range metrics.Standard() {
		eng.AddMetric(m)
	}

	fmt.Printf("running %s for %.1fs...\n", in.variant, in.motion.Duration())
	start := time.Now()

	done := make(chan sim.Outcome, 1)
	if err := eng.Start(in.model, in.motion, in.terrain, sim.Callbacks{
		OnFinish: func(o sim.Outcome) { done <- o },
	}); err != nil {
		return err
	}
	o := <-done

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", o.RunID)
	fmt.Printf("steps: %d  sim time: %.2fs\n", o.Steps, o.SimTime)
	if !o.Success {
		fmt.Printf("result: %s\n", o.Reason)
	}

	printSummary(o)
	if plots {
		printPlots(o.History)
	}
	return nil
}

func printSummary(o sim.Outcome) {
	last, ok := o.History.Last()
	if !ok {
		fmt.Println("no snapshots recorded")
		return
	}

	fmt.Printf("\nfinal pose: x=%.3f y=%.3f θ=%.3f  distance=%.3fm\n",
		last.Pose.X, last.Pose.Y, last.Pose.Theta, last.Distance)
	if last.YawMoment != 0 {
		fmt.Printf("yaw moment: %.4f N·m\n", last.YawMoment)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nWHEEL\tNORMAL\tFORCE\tTORQUE\tPOWER\tADHESION\tSTATE")
	for _, ws := range last.Wheels {
		state := "grip"
		if !ws.Contact {
			state = "lift"
		} else if ws.Slip {
			state = "slip"
		}
		fmt.Fprintf(w, "%s\t%.2fN\t%.3fN\t%.4fNm\t%.3fW\t%.0f%%\t%s\n",
			ws.Name, ws.Normal, ws.Tangential, ws.Torque, ws.Power, ws.Adherence*100, state)
	}
	w.Flush()

	fmt.Println("\nmetrics:")
	for name, val := range o.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
}

func printPlots(hist rover.View) {
	if len(hist.Snapshots) < 2 {
		return
	}

	series := []struct {
		name string
		get  func(rover.Snapshot) float64
	}{
		{"linear velocity (m/s)", func(s rover.Snapshot) float64 { return s.Kin.V }},
		{"total power (W)", func(s rover.Snapshot) float64 { return s.TotalPower }},
		{"stability margin", func(s rover.Snapshot) float64 { return s.Margin }},
		{"terrain pitch (deg)", func(s rover.Snapshot) float64 { return s.Pitch * 180 / math.Pi }},
	}

	for _, sp := range series {
		data := make([]float64, len(hist.Snapshots))
		for i, s := range hist.Snapshots {
			data[i] = sp.get(s)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(72),
			asciigraph.Caption(sp.name),
		))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	in, err := assemble(cfg)
	if err != nil {
		return err
	}
	in.opts.RealTime = true
	if in.opts.NotifyInterval > 0.05 {
		in.opts.NotifyInterval = 0.05
	}

	eng := sim.New(in.opts)
	for _, m := range metrics.Standard() {
		eng.AddMetric(m)
	}

	p := tea.NewProgram(tui.NewModel(eng, in.variant.String(), in.motion.Duration()))

	err = eng.Start(in.model, in.motion, in.terrain, sim.Callbacks{
		OnTick:   func(v rover.View) { p.Send(tui.TickMsg(v)) },
		OnFinish: func(o sim.Outcome) { p.Send(tui.FinishMsg(o)) },
	})
	if err != nil {
		return err
	}

	if _, err := p.Run(); err != nil {
		return err
	}
	eng.Stop()
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	v, err := rover.ParseVariant(cfg.Variant)
	if err != nil {
		return err
	}
	mo, err := cfg.BuildMotion()
	if err != nil {
		return err
	}
	terr, err := cfg.BuildTerrain()
	if err != nil {
		return err
	}

	var cases []sim.Case
	for _, field := range strings.Split(frictions, ",") {
		mu, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("bad friction value %q: %w", field, err)
		}
		params := cfg.ParameterSet()
		params.Friction = mu
		cases = append(cases, sim.Case{
			Label:   fmt.Sprintf("mu=%.2f", mu),
			Variant: v,
			Params:  params,
			Motion:  mo,
			Terrain: terr,
		})
	}

	fmt.Printf("sweeping %d cases on %s...\n", len(cases), v)
	results := sim.Sweep(cases, cfg.EngineOptions())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tRESULT\tDISTANCE\tSLIP\tPEAK POWER\tENERGY\tMIN MARGIN")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\t\t\n", r.Label, r.Err)
			continue
		}
		result := "ok"
		if !r.Outcome.Success {
			result = r.Outcome.Reason
		}
		m := r.Outcome.Metrics
		fmt.Fprintf(w, "%s\t%s\t%.2fm\t%.1f%%\t%.2fW\t%.2fJ\t%.0f%%\n",
			r.Label, result, m["distance"], m["slip_fraction"]*100,
			m["peak_power"], m["total_energy"], m["min_margin"]*100)
	}
	return w.Flush()
}
