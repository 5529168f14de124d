/*
Package mapcss implements a MapCSS-like styling engine for map features.

A stylesheet is a sequence of rules. Every rule consists of a selector and a
block of declarations:

	way[highway=motorway]|z10-20 { color: #ff0000; width: 4; dashes: 4,2; }

Selectors test the kind of a feature (node, way, area, canvas or the wildcard
'*'), its tags and the zoom level a map is rendered at. For a given feature,
the cascade collects every matching rule, orders the rules by specificity and
source order, and merges their declarations into an immutable Style.
Later rules win over earlier rules of equal specificity, and properties are
merged independently of each other.

Status

The grammar is a subset of MapCSS 0.2. There are no pseudo-classes, no
eval-expressions and no @import. Percentages are accepted for opacities,
e.g. 'opacity: 50%', and within rgb() and rgba().

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mapcss

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vtile.mapcss'.
func tracer() tracing.Trace {
	return tracing.Select("vtile.mapcss")
}
