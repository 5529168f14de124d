package tile

import (
	"fmt"
	"iter"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// GeomType is the geometry type of a feature.
type GeomType uint8

// Geometry types, numbered as in the MVT format.
const (
	GeomUnknown GeomType = iota
	GeomPoint
	GeomLineString
	GeomPolygon
)

func (gt GeomType) String() string {
	switch gt {
	case GeomPoint:
		return "point"
	case GeomLineString:
		return "linestring"
	case GeomPolygon:
		return "polygon"
	}
	return "unknown"
}

// Feature is a single map entity of a layer. Geometry is in tile
// coordinates, with the origin in the upper left corner and y pointing
// down. For points, every part holds a single point; for line strings
// every part is a line; for polygons every part is a ring, the first ring
// of a polygon being its exterior. Rings are implicitly closed.
type Feature struct {
	ID       uint64
	Type     GeomType
	Tags     map[string]string
	Geometry [][]vec.Vec2
}

// Path returns the geometry as a path. Polygon rings are closed, points
// become single MoveTo commands.
func (f *Feature) Path() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, part := range f.Geometry {
			if len(part) == 0 {
				continue
			}
			if !yield(path.CmdMoveTo, part[:1]) {
				return
			}
			for i := 1; i < len(part); i++ {
				if !yield(path.CmdLineTo, part[i:i+1]) {
					return
				}
			}
			if f.Type == GeomPolygon {
				if !yield(path.CmdClose, nil) {
					return
				}
			}
		}
	}
}

// Points returns the number of points of the geometry.
func (f *Feature) Points() int {
	n := 0
	for _, part := range f.Geometry {
		n += len(part)
	}
	return n
}

func (f *Feature) String() string {
	return fmt.Sprintf("feature #%d (%s, %d parts, %d tags)", f.ID, f.Type, len(f.Geometry), len(f.Tags))
}

// Tile is a sequence of layers. Iterating over the layers may yield an
// error in place of a layer; a fatal *DecodeError ends the sequence.
type Tile interface {
	Layers() iter.Seq2[Layer, error]
}

// Layer is a named sequence of features.
type Layer interface {
	Name() string
	Extent() int // size of the tile in tile coordinates
	Features() iter.Seq2[*Feature, error]
}

// DefaultExtent is the extent of layers which do not declare one.
const DefaultExtent = 4096

// DecodeError reports a malformed feature or layer. If Fatal is set, the
// remaining data cannot be decoded and the sequence ends; otherwise only the
// feature at Index is lost. Index is -1 for errors of the layer itself.
type DecodeError struct {
	Layer string
	Index int
	Err   error
	Fatal bool
}

func (e *DecodeError) Error() string {
	where := fmt.Sprintf("layer %q", e.Layer)
	if e.Index >= 0 {
		where += fmt.Sprintf(", feature %d", e.Index)
	}
	if e.Fatal {
		return "fatal decode error in " + where + ": " + e.Err.Error()
	}
	return "decode error in " + where + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
