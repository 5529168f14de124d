package tile

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
	"seehuhn.de/go/geom/vec"
)

// Field numbers of the vector tile protocol buffer messages.
const (
	tileLayers = 3

	layerName     = 1
	layerFeatures = 2
	layerKeys     = 3
	layerValues   = 4
	layerExtent   = 5
	layerVersion  = 15

	featureID       = 1
	featureTags     = 2
	featureType     = 3
	featureGeometry = 4

	valueString = 1
	valueFloat  = 2
	valueDouble = 3
	valueInt    = 4
	valueUint   = 5
	valueSint   = 6
	valueBool   = 7
)

// Geometry commands.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// MVT is a tile in Mapbox Vector Tile format. The tile is split into
// layers when it is opened; layers are decoded on iteration, features
// while iterating over a layer.
type MVT struct {
	layers [][]byte
}

var errTruncated = errors.New("truncated message")

// DecodeMVT opens a vector tile. Gzip-compressed data is decompressed.
// DecodeMVT fails if the framing of the tile is corrupt.
func DecodeMVT(data []byte) (*MVT, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("vector tile: %w", err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("vector tile: %w", err)
		}
	}
	t := &MVT{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("vector tile: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if num == tileLayers && typ == protowire.BytesType {
			layer, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("vector tile: layer %d: %w", len(t.layers), protowire.ParseError(n))
			}
			t.layers = append(t.layers, layer)
			data = data[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("vector tile: %w", protowire.ParseError(n))
		}
		data = data[n:]
	}
	tracer().Debugf("vector tile with %d layers", len(t.layers))
	return t, nil
}

// OpenMVT reads a vector tile from a file.
func OpenMVT(path string) (*MVT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeMVT(data)
}

// LayerCount returns the number of layers.
func (t *MVT) LayerCount() int {
	return len(t.layers)
}

// Layers decodes the layers in order. A layer which cannot be decoded
// yields a fatal *DecodeError and ends the sequence.
func (t *MVT) Layers() iter.Seq2[Layer, error] {
	return func(yield func(Layer, error) bool) {
		for i, raw := range t.layers {
			l, err := decodeLayer(raw)
			if err != nil {
				name := strconv.Itoa(i)
				if l != nil && l.name != "" {
					name = l.name
				}
				yield(nil, &DecodeError{Layer: name, Index: -1, Err: err, Fatal: true})
				return
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}

type mvtLayer struct {
	name     string
	extent   int
	version  int
	keys     []string
	values   []string
	features [][]byte
}

func (l *mvtLayer) Name() string {
	return l.name
}

func (l *mvtLayer) Extent() int {
	return l.extent
}

// Version returns the MVT version the layer declares.
func (l *mvtLayer) Version() int {
	return l.version
}

// Features decodes features in order. Malformed features yield a
// non-fatal *DecodeError.
func (l *mvtLayer) Features() iter.Seq2[*Feature, error] {
	return func(yield func(*Feature, error) bool) {
		for i, raw := range l.features {
			f, err := l.decodeFeature(raw)
			if err != nil {
				tracer().Infof("layer %s: skipping feature %d: %v", l.name, i, err)
				if !yield(nil, &DecodeError{Layer: l.name, Index: i, Err: err}) {
					return
				}
				continue
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

func decodeLayer(b []byte) (*mvtLayer, error) {
	l := &mvtLayer{extent: DefaultExtent, version: 1}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return l, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == layerName && typ == protowire.BytesType:
			var s []byte
			s, n = protowire.ConsumeBytes(b)
			l.name = string(s)
		case num == layerFeatures && typ == protowire.BytesType:
			var f []byte
			f, n = protowire.ConsumeBytes(b)
			l.features = append(l.features, f)
		case num == layerKeys && typ == protowire.BytesType:
			var s []byte
			s, n = protowire.ConsumeBytes(b)
			l.keys = append(l.keys, string(s))
		case num == layerValues && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				s, err := decodeValue(v)
				if err != nil {
					return l, fmt.Errorf("value %d: %w", len(l.values), err)
				}
				l.values = append(l.values, s)
			}
		case num == layerExtent && typ == protowire.VarintType:
			var x uint64
			x, n = protowire.ConsumeVarint(b)
			l.extent = int(x)
		case num == layerVersion && typ == protowire.VarintType:
			var x uint64
			x, n = protowire.ConsumeVarint(b)
			l.version = int(x)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return l, protowire.ParseError(n)
		}
		b = b[n:]
	}
	if l.extent <= 0 {
		return l, fmt.Errorf("invalid extent %d", l.extent)
	}
	return l, nil
}

// decodeValue converts a Value message to its string representation.
func decodeValue(b []byte) (string, error) {
	var s string
	found := false
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == valueString && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			s = string(v)
		case num == valueFloat && typ == protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			s = strconv.FormatFloat(float64(math.Float32frombits(v)), 'g', -1, 32)
		case num == valueDouble && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			s = strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)
		case num == valueInt && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			s = strconv.FormatInt(int64(v), 10)
		case num == valueUint && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			s = strconv.FormatUint(v, 10)
		case num == valueSint && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			s = strconv.FormatInt(protowire.DecodeZigZag(v), 10)
		case num == valueBool && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			s = strconv.FormatBool(v != 0)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return "", protowire.ParseError(n)
		}
		found = true
		b = b[n:]
	}
	if !found {
		return "", errors.New("empty value")
	}
	return s, nil
}

func (l *mvtLayer) decodeFeature(b []byte) (*Feature, error) {
	f := &Feature{}
	var tags, geom []uint32
	var gtype uint64
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == featureID && typ == protowire.VarintType:
			f.ID, n = protowire.ConsumeVarint(b)
		case num == featureType && typ == protowire.VarintType:
			gtype, n = protowire.ConsumeVarint(b)
		case num == featureTags && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				if tags, err = unpack(tags, packed); err != nil {
					return nil, fmt.Errorf("tags: %w", err)
				}
			}
		case num == featureGeometry && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				if geom, err = unpack(geom, packed); err != nil {
					return nil, fmt.Errorf("geometry: %w", err)
				}
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	if gtype < uint64(GeomPoint) || gtype > uint64(GeomPolygon) {
		return nil, fmt.Errorf("unsupported geometry type %d", gtype)
	}
	f.Type = GeomType(gtype)
	if f.Tags, err = l.resolveTags(tags); err != nil {
		return nil, err
	}
	if f.Geometry, err = decodeGeometry(f.Type, geom); err != nil {
		return nil, err
	}
	return f, nil
}

func unpack(dst []uint32, packed []byte) ([]uint32, error) {
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return dst, protowire.ParseError(n)
		}
		if v > math.MaxUint32 {
			return dst, fmt.Errorf("value out of range: %d", v)
		}
		dst = append(dst, uint32(v))
		packed = packed[n:]
	}
	return dst, nil
}

func (l *mvtLayer) resolveTags(tags []uint32) (map[string]string, error) {
	if len(tags)%2 != 0 {
		return nil, fmt.Errorf("odd number of tag indices: %d", len(tags))
	}
	m := make(map[string]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		k, v := int(tags[i]), int(tags[i+1])
		if k >= len(l.keys) {
			return nil, fmt.Errorf("tag key index %d out of range", k)
		}
		if v >= len(l.values) {
			return nil, fmt.Errorf("tag value index %d out of range", v)
		}
		m[l.keys[k]] = l.values[v]
	}
	return m, nil
}

// decodeGeometry interprets a command stream. Coordinates are zigzag
// encoded deltas to the previous cursor position.
func decodeGeometry(gt GeomType, cmds []uint32) ([][]vec.Vec2, error) {
	var parts [][]vec.Vec2
	var part []vec.Vec2
	var x, y int64
	point := func(i int) (vec.Vec2, error) {
		if i+1 >= len(cmds) {
			return vec.Vec2{}, errTruncated
		}
		x += protowire.DecodeZigZag(uint64(cmds[i]))
		y += protowire.DecodeZigZag(uint64(cmds[i+1]))
		return vec.Vec2{X: float64(x), Y: float64(y)}, nil
	}
	flush := func() {
		if len(part) > 0 {
			parts = append(parts, part)
			part = nil
		}
	}
	for i := 0; i < len(cmds); {
		id, count := cmds[i]&0x7, int(cmds[i]>>3)
		i++
		switch id {
		case cmdMoveTo:
			if count == 0 || (gt != GeomPoint && count != 1) {
				return nil, fmt.Errorf("MoveTo with count %d", count)
			}
			for c := 0; c < count; c++ {
				p, err := point(i)
				if err != nil {
					return nil, err
				}
				i += 2
				flush()
				part = []vec.Vec2{p}
			}
		case cmdLineTo:
			if gt == GeomPoint || len(part) == 0 || count == 0 {
				return nil, errors.New("LineTo without MoveTo")
			}
			for c := 0; c < count; c++ {
				p, err := point(i)
				if err != nil {
					return nil, err
				}
				i += 2
				part = append(part, p)
			}
		case cmdClosePath:
			if gt != GeomPolygon || count != 1 || len(part) < 3 {
				return nil, errors.New("misplaced ClosePath")
			}
			flush()
		default:
			return nil, fmt.Errorf("unknown geometry command %d", id)
		}
	}
	flush()
	if len(parts) == 0 {
		return nil, errors.New("empty geometry")
	}
	if gt == GeomLineString {
		for _, p := range parts {
			if len(p) < 2 {
				return nil, errors.New("line with less than 2 points")
			}
		}
	}
	return parts, nil
}
