package mapcss

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is an RGBA color. Channels are normalized to [0, 1] and are not
// premultiplied.
type Color struct {
	R, G, B, A float64
}

// Transparent is the zero Color. It is returned for unset colors.
var Transparent = Color{}

// Black is the default for 'color' and the other line colors.
var Black = Color{A: 1}

// RGB creates an opaque color, clamping every channel to [0, 1].
func RGB(r, g, b float64) Color {
	return RGBA(r, g, b, 1)
}

// RGBA creates a color, clamping every channel to [0, 1].
func RGBA(r, g, b, a float64) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b), A: clamp01(a)}
}

// Bytes returns the channels as 0…255 values.
func (c Color) Bytes() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

// NRGBA converts to the standard library's non-premultiplied color type.
func (c Color) NRGBA() color.NRGBA {
	r, g, b, a := c.Bytes()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// WithAlpha returns c with alpha multiplied by opacity.
func (c Color) WithAlpha(opacity float64) Color {
	c.A = clamp01(c.A * opacity)
	return c
}

// IsTransparent is true for colors with zero alpha.
func (c Color) IsTransparent() bool {
	return c.A == 0
}

func (c Color) String() string {
	r, g, b, a := c.Bytes()
	if a == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// ParseColor parses a hex color (#rgb, #rgba, #rrggbb, #rrggbbaa) or a
// CSS/SVG color name. Functional notations rgb(…) and rgba(…) are handled
// by the stylesheet parser, see ColorFromComponents.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	name := strings.ToLower(s)
	if name == "transparent" {
		return Transparent, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return fromRGBA8(c.R, c.G, c.B, c.A), nil
	}
	return Transparent, fmt.Errorf("not a color: %q", s)
}

func parseHexColor(hex string) (Color, error) {
	var ch [4]uint64
	ch[3] = 0xff
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Transparent, fmt.Errorf("not a hex color: #%s", hex)
			}
			ch[i] = v * 17
		}
	case 6, 8:
		for i := 0; i < len(hex)/2; i++ {
			v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
			if err != nil {
				return Transparent, fmt.Errorf("not a hex color: #%s", hex)
			}
			ch[i] = v
		}
	default:
		return Transparent, fmt.Errorf("not a hex color: #%s", hex)
	}
	return fromRGBA8(uint8(ch[0]), uint8(ch[1]), uint8(ch[2]), uint8(ch[3])), nil
}

// ColorFromComponents creates a color from the arguments of rgb(…) or
// rgba(…). Color components are 0…255, or percentages if pct is set for
// the component; alpha is 0…1 or a percentage. Out-of-range components
// are clamped.
func ColorFromComponents(comps []float64, pct []bool) (Color, error) {
	if len(comps) != 3 && len(comps) != 4 {
		return Transparent, fmt.Errorf("expected 3 or 4 color components, have %d", len(comps))
	}
	var ch [4]float64
	ch[3] = 1
	for i, v := range comps {
		switch {
		case pct[i]:
			ch[i] = v / 100
		case i == 3:
			ch[i] = v
		default:
			ch[i] = v / 255
		}
	}
	return RGBA(ch[0], ch[1], ch[2], ch[3]), nil
}

func fromRGBA8(r, g, b, a uint8) Color {
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8(x float64) uint8 {
	return uint8(math.Round(clamp01(x) * 255))
}
