// Package config defines the yaml run configuration, presets, and the
// assembly of validated simulation inputs from it.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/roversim/internal/motion"
	"github.com/san-kum/roversim/internal/rover"
	"github.com/san-kum/roversim/internal/sim"
	"github.com/san-kum/roversim/internal/terrain"
)

const (
	DefaultDt       = 0.05
	DefaultNotify   = 0.1
	DefaultMass     = 10.0
	DefaultFriction = 0.5
	DefaultRadius   = 0.08
	DefaultTrack    = 0.5
)

// Config is the full on-disk run description. Angles are degrees here and
// radians everywhere past Build.
type Config struct {
	Variant        string  `yaml:"variant"`
	Dt             float64 `yaml:"dt"`
	NotifyInterval float64 `yaml:"notify_interval"`
	RealTime       bool    `yaml:"real_time"`

	Params  ParamsConfig  `yaml:"params"`
	Motion  MotionConfig  `yaml:"motion"`
	Terrain TerrainConfig `yaml:"terrain"`
}

type ParamsConfig struct {
	Mass         float64 `yaml:"mass"`
	Friction     float64 `yaml:"friction"`
	Length       float64 `yaml:"length"`
	Width        float64 `yaml:"width"`
	WheelRadius  float64 `yaml:"wheel_radius"`
	Track        float64 `yaml:"track"`
	CasterOffset float64 `yaml:"caster_offset"`
	TrackWidth   float64 `yaml:"track_width"`
	Wheelbase    float64 `yaml:"wheelbase"`
	OffsetA      float64 `yaml:"offset_a"`
	OffsetB      float64 `yaml:"offset_b"`
	OffsetC      float64 `yaml:"offset_c"`
	WheelInertia float64 `yaml:"wheel_inertia"`
	WheelDamping float64 `yaml:"wheel_damping"`
}

type MotionConfig struct {
	Kind     string  `yaml:"kind"` // "ramp" or "fixed"
	V        float64 `yaml:"v"`
	Omega    float64 `yaml:"omega"`
	TAcc     float64 `yaml:"t_acc"`
	TConst   float64 `yaml:"t_const"`
	TDec     float64 `yaml:"t_dec"`
	Duration float64 `yaml:"duration"`
}

type TerrainConfig struct {
	Kind     string  `yaml:"kind"` // "flat", "simple" or "compound"
	PitchDeg float64 `yaml:"pitch_deg"`
	RollDeg  float64 `yaml:"roll_deg"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant:        rover.DifferentialCentered.String(),
		Dt:             DefaultDt,
		NotifyInterval: DefaultNotify,
		Params: ParamsConfig{
			Mass:         DefaultMass,
			Friction:     DefaultFriction,
			Length:       0.8,
			Width:        0.6,
			WheelRadius:  DefaultRadius,
			Track:        DefaultTrack,
			CasterOffset: 0.2,
			TrackWidth:   0.5,
			Wheelbase:    0.7,
			WheelInertia: 0.001,
			WheelDamping: 0.01,
		},
		Motion:  MotionConfig{Kind: "ramp", V: 1.0, Omega: 0.0, TAcc: 2, TConst: 5, TDec: 2},
		Terrain: TerrainConfig{Kind: "flat"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParameterSet maps the yaml fields onto the core parameter set.
func (c *Config) ParameterSet() rover.ParameterSet {
	p := c.Params
	return rover.ParameterSet{
		Mass:         p.Mass,
		Friction:     p.Friction,
		Length:       p.Length,
		Width:        p.Width,
		WheelRadius:  p.WheelRadius,
		Track:        p.Track,
		CasterOffset: p.CasterOffset,
		TrackWidth:   p.TrackWidth,
		Wheelbase:    p.Wheelbase,
		OffsetA:      p.OffsetA,
		OffsetB:      p.OffsetB,
		OffsetC:      p.OffsetC,
		WheelInertia: p.WheelInertia,
		WheelDamping: p.WheelDamping,
	}
}

// EngineOptions maps the loop settings.
func (c *Config) EngineOptions() sim.Options {
	return sim.Options{Dt: c.Dt, NotifyInterval: c.NotifyInterval, RealTime: c.RealTime}
}

// BuildMotion assembles the motion profile.
func (c *Config) BuildMotion() (rover.MotionProfile, error) {
	switch c.Motion.Kind {
	case "ramp", "":
		return motion.NewRampConstantRamp(c.Motion.V, c.Motion.Omega, c.Motion.TAcc, c.Motion.TConst, c.Motion.TDec)
	case "fixed":
		return motion.NewFixedVelocity(c.Motion.V, c.Motion.Omega, c.Motion.Duration)
	}
	return nil, fmt.Errorf("%w: unknown motion kind %q", rover.ErrInvalidProfile, c.Motion.Kind)
}

// BuildTerrain assembles the terrain profile. Angles are range-checked as a
// defensive boundary even though the caller validates user input upstream.
func (c *Config) BuildTerrain() (rover.TerrainProfile, error) {
	if math.Abs(c.Terrain.PitchDeg) > 90 || math.Abs(c.Terrain.RollDeg) > 90 {
		return nil, fmt.Errorf("%w: terrain angles must stay within +/-90 degrees", rover.ErrInvalidProfile)
	}
	pitch := c.Terrain.PitchDeg * math.Pi / 180
	roll := c.Terrain.RollDeg * math.Pi / 180

	switch c.Terrain.Kind {
	case "flat", "":
		return terrain.Flat{}, nil
	case "simple":
		return terrain.SimpleIncline{Pitch: pitch}, nil
	case "compound":
		return terrain.CompoundIncline{Pitch: pitch, Roll: roll}, nil
	}
	return nil, fmt.Errorf("%w: unknown terrain kind %q", rover.ErrInvalidProfile, c.Terrain.Kind)
}
