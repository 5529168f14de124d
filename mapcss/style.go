package mapcss

import (
	"sort"
)

// Style is the immutable result of the cascade for one feature.
//
// Style offers two sets of accessors. Color, Number, Dimen, DashPattern,
// Keyword and Text never fail: for a property not declared with a value of
// the requested kind they return the property's registered default, and
// the zero value ("unset") if there is none. The zero values are the
// transparent color, 0, a nil dash pattern and the empty string.
// The Lookup… accessors are strict and return ErrPropertyMissing or
// ErrTypeMismatch instead.
//
// A nil *Style is an empty style.
type Style struct {
	props map[string]Value
}

// Len returns the number of declared properties.
func (s *Style) Len() int {
	if s == nil {
		return 0
	}
	return len(s.props)
}

// IsDeclared is true if a property has been declared by a matching rule.
func (s *Style) IsDeclared(name string) bool {
	_, ok := s.Value(name)
	return ok
}

// Value returns the declared value of a property.
func (s *Style) Value(name string) (Value, bool) {
	if s == nil {
		return NoValue, false
	}
	v, ok := s.props[name]
	return v, ok
}

// Properties returns the names of the declared properties, sorted.
func (s *Style) Properties() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.props))
	for n := range s.props {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Equal is true if both styles declare the same properties with equal values.
func (s *Style) Equal(other *Style) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, n := range s.Properties() {
		v, _ := s.Value(n)
		w, ok := other.Value(n)
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// valueOf returns the declared value if it is of kind vk, else the default.
func (s *Style) valueOf(name string, vk ValueKind) Value {
	if v, ok := s.Value(name); ok && v.Kind() == vk {
		return v
	}
	if v := DefaultValue(name); v.Kind() == vk {
		return v
	}
	return NoValue
}

// Color returns a color property.
func (s *Style) Color(name string) Color {
	c, _ := s.valueOf(name, ValueColor).Color()
	return c
}

// Number returns the magnitude of a numeric property. For values in meters
// see Dimen.
func (s *Style) Number(name string) float64 {
	d, _ := s.valueOf(name, ValueNumber).Dimen()
	return d.Value()
}

// Dimen returns a numeric property together with its unit.
func (s *Style) Dimen(name string) Dimen {
	d, _ := s.valueOf(name, ValueNumber).Dimen()
	return d
}

// DashPattern returns a dash pattern property. A nil pattern is a solid line.
func (s *Style) DashPattern(name string) DashPattern {
	dp, _ := s.valueOf(name, ValueDashes).Dashes()
	return dp
}

// Keyword returns a keyword property, e.g. 'linecap'.
func (s *Style) Keyword(name string) string {
	kw, _ := s.valueOf(name, ValueKeyword).Keyword()
	return kw
}

// Text returns a string property. Keywords are returned as strings.
func (s *Style) Text(name string) string {
	if v, ok := s.Value(name); ok {
		if str, ok := v.Text(); ok {
			return str
		}
	}
	str, _ := DefaultValue(name).Text()
	return str
}

// --- Strict accessors ------------------------------------------------------

func (s *Style) lookup(name string, vk ValueKind) (Value, error) {
	v, ok := s.Value(name)
	if !ok {
		return NoValue, missing(name)
	}
	if v.Kind() != vk {
		return NoValue, mismatch(name, vk, v.Kind())
	}
	return v, nil
}

// LookupColor returns a declared color.
func (s *Style) LookupColor(name string) (Color, error) {
	v, err := s.lookup(name, ValueColor)
	c, _ := v.Color()
	return c, err
}

// LookupNumber returns the magnitude of a declared number.
func (s *Style) LookupNumber(name string) (float64, error) {
	v, err := s.lookup(name, ValueNumber)
	d, _ := v.Dimen()
	return d.Value(), err
}

// LookupDimen returns a declared number together with its unit.
func (s *Style) LookupDimen(name string) (Dimen, error) {
	v, err := s.lookup(name, ValueNumber)
	d, _ := v.Dimen()
	return d, err
}

// LookupDashPattern returns a declared dash pattern.
func (s *Style) LookupDashPattern(name string) (DashPattern, error) {
	v, err := s.lookup(name, ValueDashes)
	dp, _ := v.Dashes()
	return dp, err
}

// LookupKeyword returns a declared keyword.
func (s *Style) LookupKeyword(name string) (string, error) {
	v, err := s.lookup(name, ValueKeyword)
	kw, _ := v.Keyword()
	return kw, err
}

// LookupString returns a declared string.
func (s *Style) LookupString(name string) (string, error) {
	v, err := s.lookup(name, ValueString)
	str, _ := v.Text()
	return str, err
}
