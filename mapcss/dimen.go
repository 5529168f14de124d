package mapcss

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/tyse/core/dimen"
)

// Unit is the unit of a numeric property value.
type Unit uint8

// Units for numeric values. Points are converted to pixels while parsing,
// meters are kept and resolved by the renderer, which knows the ground
// resolution of the zoom level.
const (
	UnitNone Unit = iota
	UnitPixel
	UnitMeter
)

func (u Unit) String() string {
	switch u {
	case UnitPixel:
		return "px"
	case UnitMeter:
		return "m"
	}
	return ""
}

// pxPerPt converts typographic points to CSS pixels (96dpi).
const pxPerPt = 96.0 / 72.0

// Dimen is a number with a unit.
type Dimen struct {
	x    float64
	unit Unit
}

// Number creates a unit-less dimension.
func Number(x float64) Dimen {
	return Dimen{x: x}
}

// Pixels creates a dimension in pixels.
func Pixels(x float64) Dimen {
	return Dimen{x: x, unit: UnitPixel}
}

// Meters creates a dimension in ground meters.
func Meters(x float64) Dimen {
	return Dimen{x: x, unit: UnitMeter}
}

// Points creates a dimension from typographic points. The value is rounded
// to scaled points and stored as pixels.
func Points(x float64) Dimen {
	du := dimen.DU(math.Round(x * float64(dimen.PT)))
	return Pixels(float64(du) / float64(dimen.PT) * pxPerPt)
}

// Value returns the magnitude, in pixels for everything but meters.
func (d Dimen) Value() float64 {
	return d.x
}

// Unit returns the unit. Unit-less numbers report UnitNone.
func (d Dimen) Unit() Unit {
	return d.unit
}

// Resolve returns the magnitude in pixels, given the ground resolution
// in meters per pixel.
func (d Dimen) Resolve(metersPerPixel float64) float64 {
	var x float64
	switch m := d.Match(); m {
	case m.Meters(&x):
		if metersPerPixel <= 0 {
			return 0
		}
		return x / metersPerPixel
	case m.Pixels(&x):
		return x
	}
	return 0
}

func (d Dimen) String() string {
	return strconv.FormatFloat(d.x, 'g', -1, 64) + d.unit.String()
}

// ParseDimen parses a number with an optional unit suffix: px, pt or m.
func ParseDimen(s string) (Dimen, error) {
	num, unit := splitUnit(s)
	x, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Dimen{}, fmt.Errorf("not a number: %q", s)
	}
	switch strings.ToLower(unit) {
	case "":
		return Number(x), nil
	case "px":
		return Pixels(x), nil
	case "pt":
		return Points(x), nil
	case "m":
		return Meters(x), nil
	}
	return Dimen{}, fmt.Errorf("unknown unit %q in %q", unit, s)
}

func splitUnit(s string) (string, string) {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i--
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// --- Matching --------------------------------------------------------------

// Match starts a pattern match on the unit of a dimension:
//
//	switch m := d.Match(); m {
//	case m.Meters(&x):
//	    …
//	case m.Pixels(&x):
//	    …
//	}
func (d Dimen) Match() *DimenMatcher {
	return &DimenMatcher{dimen: d}
}

// DimenMatcher is a helper type for matching dimensions.
type DimenMatcher struct {
	dimen Dimen
}

// Pixels matches pixel values and unit-less numbers.
func (m *DimenMatcher) Pixels(x *float64) *DimenMatcher {
	if m.dimen.unit == UnitMeter {
		return nil
	}
	if x != nil {
		*x = m.dimen.x
	}
	return m
}

// Meters matches ground distances.
func (m *DimenMatcher) Meters(x *float64) *DimenMatcher {
	if m.dimen.unit != UnitMeter {
		return nil
	}
	if x != nil {
		*x = m.dimen.x
	}
	return m
}
