package render

import (
	"github.com/npillmayer/vtile/mapcss"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Surface is a drawing target. Paths are in device coordinates.
type Surface interface {
	Size() (width, height int)
	Fill(p path.Path, c mapcss.Color) error
	Stroke(p path.Path, st StrokeStyle) error
	Marker(center vec.Vec2, radius float64, c mapcss.Color) error
}

// LineCap is the shape of the end points of a stroke.
type LineCap uint8

// Line caps. CapNone is drawn like CapButt.
const (
	CapNone LineCap = iota
	CapButt
	CapRound
	CapSquare
)

// LineJoin is the shape of the corners of a stroke.
type LineJoin uint8

// Line joins.
const (
	JoinRound LineJoin = iota
	JoinMiter
	JoinBevel
)

// StrokeStyle holds the parameters of a stroke. Width and dash lengths are
// in pixels; a nil dash pattern is a solid line.
type StrokeStyle struct {
	Color  mapcss.Color
	Width  float64
	Dashes mapcss.DashPattern
	Cap    LineCap
	Join   LineJoin
}

func lineCap(kw string) LineCap {
	switch kw {
	case "butt":
		return CapButt
	case "round":
		return CapRound
	case "square":
		return CapSquare
	}
	return CapNone
}

func lineJoin(kw string) LineJoin {
	switch kw {
	case "miter":
		return JoinMiter
	case "bevel":
		return JoinBevel
	}
	return JoinRound
}
