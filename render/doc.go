/*
Package render draws vector tiles onto raster surfaces.

A Renderer iterates over the layers and features of a tile, resolves the
style of every feature with a stylesheet, and issues draw calls to a
Surface. Rendering is driven by a Scheduler: a render job is split into
steps, and every step is posted to the scheduler after the previous one has
finished. A job yields after every layer and after a configurable number of
features, and it is cancelled cooperatively at feature boundaries.

	r := render.New(render.WithScheduler(loop))
	h := r.RenderAsync(surface, tile, stylesheet, 14, func(res render.Result) {
	    switch m := res.Match(); m {
	    case m.Success():
	        …
	    case m.Failure(&err):
	        …
	    }
	})

Draw calls for one tile are issued in decode order, layer by layer, from one
step at a time. Surfaces therefore need not be safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package render

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'vtile.render'.
func tracer() tracing.Trace {
	return tracing.Select("vtile.render")
}
