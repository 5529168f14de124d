package mapcss

import (
	"testing"
)

func TestParseHexColor(t *testing.T) {
	cases := map[string][4]uint8{
		"#ff0000":   {255, 0, 0, 255},
		"#F00":      {255, 0, 0, 255},
		"#f008":     {255, 0, 0, 0x88},
		"#00ff0080": {0, 255, 0, 0x80},
		"Red":       {255, 0, 0, 255},
		"steelblue": {70, 130, 180, 255},
	}
	for s, want := range cases {
		c, err := ParseColor(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		r, g, b, a := c.Bytes()
		if have := [4]uint8{r, g, b, a}; have != want {
			t.Errorf("%s: expected %v, have %v", s, want, have)
		}
	}
	for _, s := range []string{"#ff000", "#gg0000", "nocolor", ""} {
		if _, err := ParseColor(s); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestColorNormalized(t *testing.T) {
	c, _ := ParseColor("#ff0000")
	if c.R != 1.0 || c.G != 0 || c.B != 0 || c.A != 1.0 {
		t.Errorf("expected normalized red, have %v", c)
	}
	if c.String() != "#ff0000" {
		t.Errorf("expected #ff0000, have %s", c)
	}
}

func TestColorComponentsClamped(t *testing.T) {
	c, err := ColorFromComponents([]float64{300, -5, 50, 2}, []bool{false, false, true, false})
	if err != nil {
		t.Fatal(err)
	}
	if c != RGBA(1, 0, .5, 1) {
		t.Errorf("expected clamped components, have %+v", c)
	}
	if _, err := ColorFromComponents([]float64{1, 2}, []bool{false, false}); err == nil {
		t.Error("expected 2 components to be rejected")
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := RGB(1, 0, 0).WithAlpha(0.5)
	if c.A != 0.5 {
		t.Errorf("expected alpha 0.5, have %g", c.A)
	}
	if !Transparent.IsTransparent() || Black.IsTransparent() {
		t.Error("transparency predicate broken")
	}
}
