package render

import (
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/npillmayer/vtile/mapcss"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// GGSurface is a raster surface backed by a gg drawing context.
type GGSurface struct {
	dc *gg.Context
}

var _ Surface = (*GGSurface)(nil)

// NewGGSurface creates a transparent surface of the given size.
func NewGGSurface(width, height int) *GGSurface {
	return &GGSurface{dc: gg.NewContext(width, height)}
}

// Size returns the size in pixels.
func (s *GGSurface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

// Clear fills the whole surface with a color.
func (s *GGSurface) Clear(c mapcss.Color) {
	s.dc.ClearWithColor(gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}

func (s *GGSurface) trace(p path.Path) {
	s.dc.ClearPath()
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			s.dc.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			s.dc.LineTo(pts[0].X, pts[0].Y)
		case path.CmdClose:
			s.dc.ClosePath()
		}
	}
}

// Fill fills a path with the non-zero rule.
func (s *GGSurface) Fill(p path.Path, c mapcss.Color) error {
	s.trace(p)
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	return s.dc.Fill()
}

// Stroke strokes a path.
func (s *GGSurface) Stroke(p path.Path, st StrokeStyle) error {
	s.trace(p)
	s.dc.SetRGBA(st.Color.R, st.Color.G, st.Color.B, st.Color.A)
	s.dc.SetLineWidth(st.Width)
	if len(st.Dashes) > 0 {
		s.dc.SetDash(st.Dashes...)
	} else {
		s.dc.ClearDash()
	}
	switch st.Cap {
	case CapRound:
		s.dc.SetLineCap(gg.LineCapRound)
	case CapSquare:
		s.dc.SetLineCap(gg.LineCapSquare)
	default:
		s.dc.SetLineCap(gg.LineCapButt)
	}
	switch st.Join {
	case JoinMiter:
		s.dc.SetLineJoin(gg.LineJoinMiter)
	case JoinBevel:
		s.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		s.dc.SetLineJoin(gg.LineJoinRound)
	}
	return s.dc.Stroke()
}

// Marker draws a filled circle.
func (s *GGSurface) Marker(center vec.Vec2, radius float64, c mapcss.Color) error {
	s.dc.ClearPath()
	s.dc.DrawCircle(center.X, center.Y, radius)
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	return s.dc.Fill()
}

// Image returns the rendered image.
func (s *GGSurface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (s *GGSurface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// SavePNG writes the surface to a PNG file.
func (s *GGSurface) SavePNG(filename string) error {
	return s.dc.SavePNG(filename)
}

// Close releases the drawing context.
func (s *GGSurface) Close() error {
	return s.dc.Close()
}
