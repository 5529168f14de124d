package mapcss

import (
	"cmp"
	"slices"
)

// Winners returns the rules matching a feature, ordered by ascending
// precedence: by specificity first, then by source index. The last rule
// of the result wins every property it declares.
//
// Winners is a pure function over its arguments.
func Winners(rules []*Rule, kind Kind, tags Tags, zoom int) []*Rule {
	var matched []*Rule
	for _, r := range rules {
		if Matches(&r.Selector, kind, tags, zoom) {
			matched = append(matched, r)
		}
	}
	slices.SortStableFunc(matched, func(a, b *Rule) int {
		if c := a.Specificity().Compare(b.Specificity()); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	return matched
}

// Resolve merges the declarations of all matching rules into a Style.
// Properties are merged independently of each other; for every property,
// the declaration of the rule with the highest precedence wins, regardless
// of the kind of its value. An empty set of matching rules results in a
// Style without declared properties.
func Resolve(rules []*Rule, kind Kind, tags Tags, zoom int) *Style {
	winners := Winners(rules, kind, tags, zoom)
	props := make(map[string]Value)
	for _, r := range winners {
		for _, d := range r.Declarations {
			props[d.Property] = d.Value
		}
	}
	if len(winners) > 0 {
		tracer().Debugf("%s%v@z%d: %d rules, %d properties", kind, tags, zoom, len(winners), len(props))
	}
	return &Style{props: props}
}
