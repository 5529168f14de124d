/*
Package tile provides access to the features of a vector tile.

A tile is a sequence of layers, a layer is a sequence of features. Both
sequences are lazy: features are decoded while they are iterated over, and
a malformed feature is reported as a *DecodeError in place of the feature,
without ending the sequence. Only errors which leave the rest of the data
undecodable end a sequence; they are flagged as fatal.

DecodeMVT reads tiles in the Mapbox Vector Tile format (protocol buffers,
optionally gzip-compressed). Memory is a tile assembled in memory.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vtile.tile'.
func tracer() tracing.Trace {
	return tracing.Select("vtile.tile")
}
