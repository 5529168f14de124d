package mapcss

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueKind is the type tag of a declared value.
type ValueKind uint8

// Kinds of declared values.
const (
	ValueNone ValueKind = iota
	ValueColor
	ValueNumber
	ValueDashes
	ValueKeyword
	ValueString
)

func (vk ValueKind) String() string {
	switch vk {
	case ValueColor:
		return "color"
	case ValueNumber:
		return "number"
	case ValueDashes:
		return "dashes"
	case ValueKeyword:
		return "keyword"
	case ValueString:
		return "string"
	}
	return "none"
}

// DashPattern is a sequence of dash and gap lengths in pixels. A declared
// dash pattern is non-empty and all its lengths are > 0. A nil pattern
// denotes a solid line.
type DashPattern []float64

func (dp DashPattern) String() string {
	if len(dp) == 0 {
		return "none"
	}
	s := make([]string, len(dp))
	for i, d := range dp {
		s[i] = strconv.FormatFloat(d, 'g', -1, 64)
	}
	return strings.Join(s, ",")
}

// NewDashPattern checks the invariants of a dash pattern.
func NewDashPattern(lengths ...float64) (DashPattern, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("empty dash pattern")
	}
	for _, l := range lengths {
		if !(l > 0) {
			return nil, fmt.Errorf("dash length must be > 0, is %g", l)
		}
	}
	return DashPattern(slices.Clone(lengths)), nil
}

// Value is an immutable, typed property value.
type Value struct {
	kind   ValueKind
	color  Color
	dimen  Dimen
	dashes DashPattern
	str    string // keyword or string
}

// NoValue is returned for undeclared properties without a default.
var NoValue = Value{}

// ColorValue wraps a color.
func ColorValue(c Color) Value {
	return Value{kind: ValueColor, color: c}
}

// NumberValue wraps a dimension.
func NumberValue(d Dimen) Value {
	return Value{kind: ValueNumber, dimen: d}
}

// DashesValue wraps a dash pattern. A nil pattern declares a solid line.
func DashesValue(dp DashPattern) Value {
	return Value{kind: ValueDashes, dashes: slices.Clone(dp)}
}

// KeywordValue wraps an identifier, e.g. 'round'. Keywords are lower-cased.
func KeywordValue(kw string) Value {
	return Value{kind: ValueKeyword, str: strings.ToLower(kw)}
}

// StringValue wraps a string literal.
func StringValue(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Kind returns the type tag of v.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Color returns the color, if v is a color.
func (v Value) Color() (Color, bool) {
	return v.color, v.kind == ValueColor
}

// Dimen returns the number, if v is a number.
func (v Value) Dimen() (Dimen, bool) {
	return v.dimen, v.kind == ValueNumber
}

// Dashes returns a copy of the dash pattern, if v is a dash pattern.
func (v Value) Dashes() (DashPattern, bool) {
	return slices.Clone(v.dashes), v.kind == ValueDashes
}

// Keyword returns the keyword, if v is a keyword.
func (v Value) Keyword() (string, bool) {
	return v.str, v.kind == ValueKeyword
}

// Text returns the text of a string or of a keyword.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == ValueString || v.kind == ValueKeyword
}

// Equal compares type and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueColor:
		return v.color == other.color
	case ValueNumber:
		return v.dimen == other.dimen
	case ValueDashes:
		return slices.Equal(v.dashes, other.dashes)
	case ValueKeyword, ValueString:
		return v.str == other.str
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case ValueColor:
		return v.color.String()
	case ValueNumber:
		return v.dimen.String()
	case ValueDashes:
		return v.dashes.String()
	case ValueKeyword:
		return v.str
	case ValueString:
		return strconv.Quote(v.str)
	}
	return "<none>"
}
