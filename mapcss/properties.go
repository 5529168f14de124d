package mapcss

import "sort"

// PropertyDef describes a property known to the style engine: the kind of
// value it takes, the group it belongs to, and its default value.
type PropertyDef struct {
	Name     string
	Kind     ValueKind
	Group    string
	Default  Value    // NoValue if there is no default
	Keywords []string // admissible keywords, for Kind == ValueKeyword
	Negative bool     // numbers may be negative
}

// Symbolic names for property groups.
const (
	PGLine   = "Line"
	PGCasing = "Casing"
	PGFill   = "Fill"
	PGSymbol = "Symbol"
	PGText   = "Text"
	PGLayer  = "Layer"
	PGX      = "X"
)

var lineCaps = []string{"none", "butt", "round", "square"}
var lineJoins = []string{"round", "miter", "bevel"}

var knownProperties = map[string]*PropertyDef{}

func def(name string, kind ValueKind, group string, dflt Value) *PropertyDef {
	d := &PropertyDef{Name: name, Kind: kind, Group: group, Default: dflt}
	knownProperties[name] = d
	return d
}

func init() {
	def("width", ValueNumber, PGLine, NumberValue(Pixels(1)))
	def("color", ValueColor, PGLine, ColorValue(Black))
	def("opacity", ValueNumber, PGLine, NumberValue(Number(1)))
	def("dashes", ValueDashes, PGLine, NoValue)
	def("linecap", ValueKeyword, PGLine, KeywordValue("none")).Keywords = lineCaps
	def("linejoin", ValueKeyword, PGLine, KeywordValue("round")).Keywords = lineJoins

	def("casing-width", ValueNumber, PGCasing, NumberValue(Pixels(0)))
	def("casing-color", ValueColor, PGCasing, ColorValue(Black))
	def("casing-opacity", ValueNumber, PGCasing, NumberValue(Number(1)))
	def("casing-dashes", ValueDashes, PGCasing, NoValue)
	def("casing-linecap", ValueKeyword, PGCasing, KeywordValue("none")).Keywords = lineCaps
	def("casing-linejoin", ValueKeyword, PGCasing, KeywordValue("round")).Keywords = lineJoins

	def("fill-color", ValueColor, PGFill, ColorValue(RGB(.5, .5, .5)))
	def("fill-opacity", ValueNumber, PGFill, NumberValue(Number(1)))

	def("symbol-size", ValueNumber, PGSymbol, NumberValue(Pixels(0)))
	def("symbol-fill-color", ValueColor, PGSymbol, ColorValue(Black))
	def("symbol-fill-opacity", ValueNumber, PGSymbol, NumberValue(Number(1)))

	def("text", ValueString, PGText, NoValue)
	def("font-family", ValueString, PGText, StringValue("DejaVu"))
	def("font-size", ValueNumber, PGText, NumberValue(Pixels(12)))
	def("text-color", ValueColor, PGText, ColorValue(Black))
	def("text-opacity", ValueNumber, PGText, NumberValue(Number(1)))
	def("text-offset", ValueNumber, PGText, NumberValue(Pixels(0))).Negative = true
	def("text-halo-color", ValueColor, PGText, ColorValue(Black))
	def("text-halo-radius", ValueNumber, PGText, NumberValue(Pixels(0)))

	def("z-index", ValueNumber, PGLayer, NumberValue(Number(0))).Negative = true
}

// LookupProperty returns the definition of a known property.
func LookupProperty(name string) (*PropertyDef, bool) {
	d, ok := knownProperties[name]
	return d, ok
}

// KnownProperties returns the names of all known properties, sorted.
func KnownProperties() []string {
	names := make([]string, 0, len(knownProperties))
	for n := range knownProperties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GroupNameFromPropertyKey returns the property group name for a
// property. Example:
//
//	GroupNameFromPropertyKey("casing-width") => "Casing"
//
// Unknown property keys will return a group name of "X".
func GroupNameFromPropertyKey(key string) string {
	if d, ok := knownProperties[key]; ok {
		return d.Group
	}
	return PGX
}

// DefaultValue returns the registered default of a property, or NoValue.
func DefaultValue(key string) Value {
	if d, ok := knownProperties[key]; ok {
		return d.Default
	}
	return NoValue
}

// admits checks a parsed value against the property definition. Strings
// are accepted for keyword properties and keywords for string properties;
// the value is converted accordingly.
func (d *PropertyDef) admits(v Value) (Value, bool) {
	switch d.Kind {
	case ValueKeyword:
		s, ok := v.Text()
		if !ok {
			return v, false
		}
		kw := KeywordValue(s)
		if len(d.Keywords) == 0 {
			return kw, true
		}
		for _, k := range d.Keywords {
			if k == kw.str {
				return kw, true
			}
		}
		return v, false
	case ValueString:
		s, ok := v.Text()
		if !ok {
			return v, false
		}
		return StringValue(s), true
	case ValueNumber:
		dim, ok := v.Dimen()
		if !ok || (!d.Negative && dim.Value() < 0) {
			return v, false
		}
		return v, true
	}
	return v, v.kind == d.Kind
}
