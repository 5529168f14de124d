package mapcss

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Kind is the kind of a map feature, or, for selectors, the kind of features
// a selector applies to.
type Kind int8

// Feature kinds. KindAny is valid for selectors only and denotes the
// wildcard selector '*'.
const (
	KindAny Kind = iota
	KindNode
	KindWay
	KindArea
	KindCanvas
)

var kindNames = [...]string{"*", "node", "way", "area", "canvas"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindFromName returns the kind for a selector keyword. "point" and "line"
// are accepted as aliases for "node" and "way".
func KindFromName(name string) (Kind, bool) {
	switch strings.ToLower(name) {
	case "*":
		return KindAny, true
	case "node", "point":
		return KindNode, true
	case "way", "line":
		return KindWay, true
	case "area":
		return KindArea, true
	case "canvas":
		return KindCanvas, true
	}
	return KindAny, false
}

// admits is true if a selector of kind k applies to features of kind f.
// An area is a closed way, therefore 'way' selectors apply to areas as well.
// The wildcard never applies to the canvas.
func (k Kind) admits(f Kind) bool {
	switch k {
	case KindAny:
		return f != KindCanvas
	case KindWay:
		return f == KindWay || f == KindArea
	}
	return k == f
}

// weight is the contribution of the selector kind to specificity.
func (k Kind) weight() int {
	switch k {
	case KindAny:
		return 0
	case KindWay:
		return 1
	}
	return 2
}

// Tags is the tag set of a feature. Keys are unique; values are compared
// case-sensitively.
type Tags map[string]string

// Op is the operator of a tag test.
type Op int8

// Tag test operators.
const (
	OpExists     Op = iota // [key]
	OpNotExists            // [!key]
	OpEquals               // [key=value]
	OpNotEquals            // [key!=value]
	OpMatches              // [key=~/regex/]
	OpNotMatches           // [key!~/regex/]
)

var opSymbols = [...]string{"", "!", "=", "!=", "=~", "!~"}

func (op Op) String() string {
	switch op {
	case OpExists:
		return "exists"
	case OpNotExists:
		return "not-exists"
	}
	if op < 0 || int(op) >= len(opSymbols) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opSymbols[op]
}

// Test is a predicate on a single tag.
//
// Tests on a key which is absent from the tag set follow a fixed policy:
// absence is 'not equal' and 'not matching', so OpNotEquals and OpNotMatches
// succeed, while OpEquals and OpMatches fail.
type Test struct {
	Op    Op
	Key   string
	Value string         // operand for equals/not-equals, source text for regex tests
	re    *regexp.Regexp // compiled at parse time
}

// NewTest creates a tag test. For OpMatches and OpNotMatches the value is
// compiled as a regular expression.
func NewTest(op Op, key, value string) (Test, error) {
	t := Test{Op: op, Key: key, Value: value}
	if op == OpMatches || op == OpNotMatches {
		re, err := regexp.Compile(value)
		if err != nil {
			return t, fmt.Errorf("tag test [%s%s%s]: %w", key, op, value, err)
		}
		t.re = re
	}
	return t, nil
}

// Eval evaluates the test against a tag set. tags may be nil.
func (t Test) Eval(tags Tags) bool {
	v, ok := tags[t.Key]
	switch t.Op {
	case OpExists:
		return ok
	case OpNotExists:
		return !ok
	case OpEquals:
		return ok && v == t.Value
	case OpNotEquals:
		return !ok || v != t.Value
	case OpMatches:
		return ok && t.re.MatchString(v)
	case OpNotMatches:
		return !ok || !t.re.MatchString(v)
	}
	return false
}

func (t Test) String() string {
	switch t.Op {
	case OpExists:
		return "[" + t.Key + "]"
	case OpNotExists:
		return "[!" + t.Key + "]"
	case OpMatches, OpNotMatches:
		return "[" + t.Key + t.Op.String() + "/" + t.Value + "/]"
	}
	return "[" + t.Key + t.Op.String() + t.Value + "]"
}

func (t Test) equals(other Test) bool {
	return t.Op == other.Op && t.Key == other.Key && t.Value == other.Value
}

// ZoomRange is an inclusive range of zoom levels.
type ZoomRange struct {
	Min, Max int
}

// AllZooms is the zoom range of a selector without a zoom restriction.
// It contains every zoom level, including levels beyond MaxZoom.
var AllZooms = ZoomRange{Min: math.MinInt, Max: math.MaxInt}

// MaxZoom is the largest zoom level accepted in a zoom range literal.
// Open ends of a range, as in '|z18-', are unbounded.
const MaxZoom = 32

// Contains is true if min <= zoom <= max.
func (zr ZoomRange) Contains(zoom int) bool {
	return zoom >= zr.Min && zoom <= zr.Max
}

func (zr ZoomRange) String() string {
	switch {
	case zr == AllZooms:
		return ""
	case zr.Min == zr.Max:
		return fmt.Sprintf("|z%d", zr.Min)
	case zr.Min == math.MinInt:
		return fmt.Sprintf("|z-%d", zr.Max)
	case zr.Max == math.MaxInt:
		return fmt.Sprintf("|z%d-", zr.Min)
	}
	return fmt.Sprintf("|z%d-%d", zr.Min, zr.Max)
}

// Selector is a predicate over feature kind, tags and zoom level.
type Selector struct {
	Kind  Kind
	Zoom  ZoomRange
	Tests []Test
}

// Matches reports wether a selector applies to a feature of a given kind,
// with a given tag set, at a zoom level. It fails if the kind is excluded,
// if zoom is outside of the selector's zoom range, or if any tag test fails.
//
// Matches does not modify the selector and is safe for concurrent use.
func Matches(sel *Selector, kind Kind, tags Tags, zoom int) bool {
	if !sel.Kind.admits(kind) {
		return false
	}
	if !sel.Zoom.Contains(zoom) {
		return false
	}
	for _, t := range sel.Tests {
		if !t.Eval(tags) {
			return false
		}
	}
	return true
}

// Specificity orders competing rules. Rules with more tag tests are more
// specific; for an equal number of tests, explicit kinds beat 'way', which
// beats the wildcard. Zoom ranges do not contribute.
type Specificity struct {
	Tests int
	Kind  int
}

// Compare returns -1, 0 or +1, comparing the number of tests first.
func (s Specificity) Compare(other Specificity) int {
	switch {
	case s.Tests < other.Tests:
		return -1
	case s.Tests > other.Tests:
		return 1
	case s.Kind < other.Kind:
		return -1
	case s.Kind > other.Kind:
		return 1
	}
	return 0
}

// Specificity is derived from the selector every time it is requested.
func (sel *Selector) Specificity() Specificity {
	return Specificity{Tests: len(sel.Tests), Kind: sel.Kind.weight()}
}

// Equals is true for selectors with the same kind, zoom range and set of
// tag tests, regardless of test order.
func (sel *Selector) Equals(other *Selector) bool {
	if sel.Kind != other.Kind || sel.Zoom != other.Zoom || len(sel.Tests) != len(other.Tests) {
		return false
	}
outer:
	for _, t := range sel.Tests {
		for _, o := range other.Tests {
			if t.equals(o) {
				continue outer
			}
		}
		return false
	}
	return true
}

func (sel *Selector) String() string {
	var b strings.Builder
	b.WriteString(sel.Kind.String())
	for _, t := range sel.Tests {
		b.WriteString(t.String())
	}
	b.WriteString(sel.Zoom.String())
	return b.String()
}
