package config

// Presets are ready-made run configurations keyed by variant tag then name.
var Presets = map[string]map[string]*Config{
	"diff_centered": {
		"lab": {
			Variant: "diff_centered", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 10, Friction: 0.6, Length: 0.5, Width: 0.3,
				WheelRadius: 0.08, Track: 0.5, CasterOffset: 0.2, WheelInertia: 0.001, WheelDamping: 0.01},
			Motion:  MotionConfig{Kind: "fixed", V: 1.0, Duration: 10},
			Terrain: TerrainConfig{Kind: "flat"},
		},
		"hill": {
			Variant: "diff_centered", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 10, Friction: 0.6, Length: 0.5, Width: 0.3,
				WheelRadius: 0.08, Track: 0.5, CasterOffset: 0.2, WheelInertia: 0.001, WheelDamping: 0.01},
			Motion:  MotionConfig{Kind: "ramp", V: 0.8, TAcc: 2, TConst: 8, TDec: 2},
			Terrain: TerrainConfig{Kind: "simple", PitchDeg: 12},
		},
	},
	"diff_offset": {
		"skewed": {
			Variant: "diff_offset", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 12, Friction: 0.5, Length: 0.5, Width: 0.3,
				WheelRadius: 0.08, Track: 0.4, CasterOffset: 0.2,
				OffsetA: 0.05, OffsetB: 0.08, OffsetC: 0.02, WheelInertia: 0.001, WheelDamping: 0.01},
			Motion:  MotionConfig{Kind: "ramp", V: 1.0, Omega: 0.3, TAcc: 2, TConst: 5, TDec: 2},
			Terrain: TerrainConfig{Kind: "compound", PitchDeg: 8, RollDeg: 5},
		},
	},
	"four_centered": {
		"rover": {
			Variant: "four_centered", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 20, Friction: 0.7, Length: 0.9, Width: 0.6,
				WheelRadius: 0.1, TrackWidth: 0.5, Wheelbase: 0.7, WheelInertia: 0.002, WheelDamping: 0.02},
			Motion:  MotionConfig{Kind: "ramp", V: 1.5, TAcc: 3, TConst: 10, TDec: 3},
			Terrain: TerrainConfig{Kind: "simple", PitchDeg: 15},
		},
	},
	"four_offset": {
		"loaded": {
			Variant: "four_offset", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 20, Friction: 0.7, Length: 0.9, Width: 0.6,
				WheelRadius: 0.1, TrackWidth: 0.5, Wheelbase: 0.7,
				OffsetA: 0.1, OffsetB: 0.05, OffsetC: 0.05, WheelInertia: 0.002, WheelDamping: 0.02},
			Motion:  MotionConfig{Kind: "ramp", V: 1.2, TAcc: 2, TConst: 8, TDec: 2},
			Terrain: TerrainConfig{Kind: "compound", PitchDeg: 10, RollDeg: 8},
		},
		"slippery": {
			Variant: "four_offset", Dt: 0.05, NotifyInterval: 0.1,
			Params: ParamsConfig{Mass: 20, Friction: 0.05, Length: 0.9, Width: 0.6,
				WheelRadius: 0.1, TrackWidth: 0.5, Wheelbase: 0.7,
				OffsetA: 0.05, OffsetB: 0.02, WheelInertia: 0.002, WheelDamping: 0.02},
			Motion:  MotionConfig{Kind: "ramp", V: 5.0, TAcc: 0.5, TConst: 4, TDec: 0.5},
			Terrain: TerrainConfig{Kind: "flat"},
		},
	},
}

func GetPreset(variant, preset string) *Config {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	cfg, ok := variantPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(variant string) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	return names
}
