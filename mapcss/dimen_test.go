package mapcss

import (
	"math"
	"testing"
)

func TestParseDimen(t *testing.T) {
	cases := []struct {
		s    string
		x    float64
		unit Unit
	}{
		{"4", 4, UnitNone},
		{"2.5px", 2.5, UnitPixel},
		{"12m", 12, UnitMeter},
		{"-1", -1, UnitNone},
		{"3pt", 4, UnitPixel},
	}
	for _, c := range cases {
		d, err := ParseDimen(c.s)
		if err != nil {
			t.Errorf("%s: %v", c.s, err)
			continue
		}
		if math.Abs(d.Value()-c.x) > 1e-6 || d.Unit() != c.unit {
			t.Errorf("%s: expected %g%s, have %s", c.s, c.x, c.unit, d)
		}
	}
	for _, s := range []string{"px", "4em", "four"} {
		if _, err := ParseDimen(s); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestDimenMatch(t *testing.T) {
	var x float64
	d := Meters(20)
	switch m := d.Match(); m {
	case m.Pixels(&x):
		t.Errorf("meters matched as pixels")
	case m.Meters(&x):
		if x != 20 {
			t.Errorf("expected 20m, have %g", x)
		}
	default:
		t.Errorf("no match for %s", d)
	}
	if px := d.Resolve(2); px != 10 {
		t.Errorf("expected 20m at 2m/px to be 10px, have %g", px)
	}
	if px := Pixels(3).Resolve(2); px != 3 {
		t.Errorf("expected pixels to stay unscaled, have %g", px)
	}
}
