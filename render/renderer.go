package render

import (
	"context"
	"fmt"
	"math"

	"github.com/npillmayer/vtile/mapcss"
	"github.com/npillmayer/vtile/tile"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// StyleSource resolves the style of a feature. *mapcss.Stylesheet is a
// StyleSource. Implementations must be safe for concurrent use if render
// jobs run concurrently.
type StyleSource interface {
	GetStyle(kind mapcss.Kind, tags mapcss.Tags, zoom int) *mapcss.Style
}

// ConfiguredZoom makes a render call use the zoom level of the renderer's
// options.
const ConfiguredZoom = -1

// earthCircumference is the equatorial circumference in meters.
const earthCircumference = 40075016.686

// Renderer renders tiles. A Renderer holds configuration only and may be
// shared between jobs.
type Renderer struct {
	opts options
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{opts: o}
}

// TileSize returns the configured tile size in pixels.
func (r *Renderer) TileSize() int {
	return r.opts.tileSize
}

// ZoomLevel returns the configured zoom level.
func (r *Renderer) ZoomLevel() int {
	return r.opts.zoom
}

// NewSurface creates a raster surface of the configured tile size.
func (r *Renderer) NewSurface() *GGSurface {
	return NewGGSurface(r.opts.tileSize, r.opts.tileSize)
}

// RenderAsync starts rendering a tile and returns immediately. The first
// step of the job is posted to the scheduler; done is called exactly once,
// from a step posted to the scheduler, never from within RenderAsync.
//
// The surface is owned by the job until done has been called. The tile and
// the styles must outlive the job.
func (r *Renderer) RenderAsync(surface Surface, t tile.Tile, styles StyleSource, zoom int,
	done func(Result)) *Handle {
	//
	return r.start(r.opts.scheduler, surface, t, styles, zoom, done)
}

// Render renders a tile and waits for the result. Steps run on the calling
// goroutine. If ctx is done before the job finishes, the job is cancelled.
func (r *Renderer) Render(ctx context.Context, surface Surface, t tile.Tile, styles StyleSource,
	zoom int) Result {
	//
	loop := NewLoop()
	var result Result
	h := r.start(loop, surface, t, styles, zoom, func(res Result) {
		result = res
	})
	for {
		select {
		case <-h.Done():
			return result
		case <-ctx.Done():
			h.Cancel()
		default:
		}
		loop.RunPending()
	}
}

func (r *Renderer) start(sched Scheduler, surface Surface, t tile.Tile, styles StyleSource, zoom int,
	done func(Result)) *Handle {
	//
	if zoom < 0 {
		zoom = r.opts.zoom
	}
	j := &job{
		opts:     &r.opts,
		sched:    sched,
		surface:  surface,
		tile:     t,
		styles:   styles,
		zoom:     zoom,
		callback: done,
		handle:   newHandle(),
	}
	j.post()
	return j.handle
}

// --- Drawing ---------------------------------------------------------------

// transform maps tile coordinates to device coordinates.
type transform struct {
	m matrix.Matrix
}

func newTransform(width, height, extent int) transform {
	if extent <= 0 {
		extent = tile.DefaultExtent
	}
	return transform{
		m: matrix.Scale(float64(width)/float64(extent), float64(height)/float64(extent)),
	}
}

func (tr transform) apply(v vec.Vec2) vec.Vec2 {
	m := tr.m
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

func (tr transform) path(p path.Path) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [3]vec.Vec2
		for cmd, pts := range p {
			out := buf[:0]
			for _, v := range pts {
				out = append(out, tr.apply(v))
			}
			if !yield(cmd, out) {
				return
			}
		}
	}
}

// metersPerPixel is the ground resolution at the equator for a surface
// of the given width.
func metersPerPixel(width, zoom int) float64 {
	if width <= 0 {
		return 0
	}
	return earthCircumference / (float64(width) * math.Exp2(float64(zoom)))
}

func kindOf(gt tile.GeomType) mapcss.Kind {
	switch gt {
	case tile.GeomPoint:
		return mapcss.KindNode
	case tile.GeomPolygon:
		return mapcss.KindArea
	}
	return mapcss.KindWay
}

// background paints the canvas if the stylesheet declares a fill color
// for it.
func (j *job) background() error {
	style := j.styles.GetStyle(mapcss.KindCanvas, nil, j.zoom)
	if !style.IsDeclared("fill-color") {
		return nil
	}
	w, h := j.surface.Size()
	c := style.Color("fill-color").WithAlpha(style.Number("fill-opacity"))
	rect := func(yield func(path.Command, []vec.Vec2) bool) {
		_ = yield(path.CmdMoveTo, []vec.Vec2{{X: 0, Y: 0}}) &&
			yield(path.CmdLineTo, []vec.Vec2{{X: float64(w), Y: 0}}) &&
			yield(path.CmdLineTo, []vec.Vec2{{X: float64(w), Y: float64(h)}}) &&
			yield(path.CmdLineTo, []vec.Vec2{{X: 0, Y: float64(h)}}) &&
			yield(path.CmdClose, nil)
	}
	j.stats.Draws++
	return j.surface.Fill(rect, c)
}

// draw issues the draw calls for a feature: areas are filled and then
// outlined, ways get an optional casing below their stroke, nodes get a
// marker per point. Features without declared properties are not drawn.
func (j *job) draw(f *tile.Feature) error {
	kind := kindOf(f.Type)
	style := j.styles.GetStyle(kind, f.Tags, j.zoom)
	if style.Len() == 0 {
		j.stats.Unstyled++
		return nil
	}
	w, _ := j.surface.Size()
	mpp := metersPerPixel(w, j.zoom)
	p := j.xform.path(f.Path())
	var err error
	switch kind {
	case mapcss.KindArea:
		c := style.Color("fill-color").WithAlpha(style.Number("fill-opacity"))
		if !c.IsTransparent() {
			err = j.surface.Fill(p, c)
			j.stats.Draws++
		}
		if err == nil && (style.IsDeclared("color") || style.IsDeclared("width")) {
			err = j.stroke(p, lineStyle(style, "", mpp))
		}
	case mapcss.KindWay:
		line := lineStyle(style, "", mpp)
		if cw := style.Dimen("casing-width").Resolve(mpp); cw > 0 {
			casing := lineStyle(style, "casing-", mpp)
			casing.Width = line.Width + 2*cw
			err = j.stroke(p, casing)
		}
		if err == nil {
			err = j.stroke(p, line)
		}
	case mapcss.KindNode:
		r := style.Dimen("symbol-size").Resolve(mpp) / 2
		c := style.Color("symbol-fill-color").WithAlpha(style.Number("symbol-fill-opacity"))
		if r <= 0 || c.IsTransparent() {
			break
		}
	markers:
		for _, part := range f.Geometry {
			for _, v := range part {
				if err = j.surface.Marker(j.xform.apply(v), r, c); err != nil {
					break markers
				}
				j.stats.Draws++
			}
		}
	}
	if err != nil {
		return fmt.Errorf("drawing %s: %w", f, err)
	}
	return nil
}

func (j *job) stroke(p path.Path, st StrokeStyle) error {
	if st.Width <= 0 || st.Color.IsTransparent() {
		return nil
	}
	j.stats.Draws++
	return j.surface.Stroke(p, st)
}

// lineStyle collects the stroke properties with a prefix, either "" for
// the line itself or "casing-". The width of a casing is relative to the
// line and is set by the caller.
func lineStyle(style *mapcss.Style, prefix string, mpp float64) StrokeStyle {
	return StrokeStyle{
		Color:  style.Color(prefix + "color").WithAlpha(style.Number(prefix + "opacity")),
		Width:  style.Dimen(prefix + "width").Resolve(mpp),
		Dashes: style.DashPattern(prefix + "dashes"),
		Cap:    lineCap(style.Keyword(prefix + "linecap")),
		Join:   lineJoin(style.Keyword(prefix + "linejoin")),
	}
}
