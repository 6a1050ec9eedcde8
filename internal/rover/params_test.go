package rover

import (
	"errors"
	"testing"
)

func validParams() ParameterSet {
	return ParameterSet{
		Mass:        10,
		Friction:    0.6,
		WheelRadius: 0.08,
		Track:       0.5,
		TrackWidth:  0.5,
		Wheelbase:   0.7,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		mutate  func(*ParameterSet)
		wantErr bool
	}{
		{"valid differential", DifferentialCentered, nil, false},
		{"valid four-wheel", FourWheelCentered, nil, false},
		{"zero mass", DifferentialCentered, func(p *ParameterSet) { p.Mass = 0 }, true},
		{"negative friction", DifferentialCentered, func(p *ParameterSet) { p.Friction = -0.1 }, true},
		{"zero friction ok", DifferentialCentered, func(p *ParameterSet) { p.Friction = 0 }, false},
		{"zero wheel radius", DifferentialCentered, func(p *ParameterSet) { p.WheelRadius = 0 }, true},
		{"negative inertia", DifferentialCentered, func(p *ParameterSet) { p.WheelInertia = -1 }, true},
		{"zero track", DifferentialCentered, func(p *ParameterSet) { p.Track = 0 }, true},
		{"zero wheelbase", FourWheelCentered, func(p *ParameterSet) { p.Wheelbase = 0 }, true},
		{"centered with offset", DifferentialCentered, func(p *ParameterSet) { p.OffsetB = 0.01 }, true},
		{"offset inside half-track", DifferentialOffset, func(p *ParameterSet) { p.OffsetB = 0.2 }, false},
		{"offset at half-track", DifferentialOffset, func(p *ParameterSet) { p.OffsetB = 0.25 }, true},
		{"offset past half-wheelbase", FourWheelOffset, func(p *ParameterSet) { p.OffsetA = -0.4 }, true},
		{"offset past half-track width", FourWheelOffset, func(p *ParameterSet) { p.OffsetB = 0.3 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			if tc.mutate != nil {
				tc.mutate(&p)
			}
			err := p.WithDefaults().Validate(tc.variant)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Errorf("want ErrInvalidGeometry, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithDefaults(t *testing.T) {
	p := validParams().WithDefaults()
	if p.Gravity != DefaultGravity {
		t.Errorf("gravity default %g, want %g", p.Gravity, DefaultGravity)
	}

	p.Gravity = 3.71 // keep an explicit value
	if got := p.WithDefaults().Gravity; got != 3.71 {
		t.Errorf("explicit gravity overwritten: %g", got)
	}
}

func TestWeight(t *testing.T) {
	p := validParams().WithDefaults()
	if w := p.Weight(); w != 10*DefaultGravity {
		t.Errorf("weight %g, want %g", w, 10*DefaultGravity)
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants() {
		got, err := ParseVariant(v.String())
		if err != nil || got != v {
			t.Errorf("round trip %q: got %v, %v", v.String(), got, err)
		}
	}
	if _, err := ParseVariant("hovercraft"); err == nil {
		t.Error("expected error for unknown variant name")
	}
}
