package tile

import (
	"bytes"
	"compress/gzip"
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// --- Encoding helpers ------------------------------------------------------

func command(id, count uint32) uint32 {
	return id&0x7 | count<<3
}

func zz(x int64) uint32 {
	return uint32(protowire.EncodeZigZag(x))
}

func packed(b []byte, num protowire.Number, vals []uint32) []byte {
	var p []byte
	for _, v := range vals {
		p = protowire.AppendVarint(p, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, p)
}

func encodeFeature(id uint64, gt GeomType, tags, geom []uint32) []byte {
	var b []byte
	b = protowire.AppendTag(b, featureID, protowire.VarintType)
	b = protowire.AppendVarint(b, id)
	if len(tags) > 0 {
		b = packed(b, featureTags, tags)
	}
	b = protowire.AppendTag(b, featureType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(gt))
	return packed(b, featureGeometry, geom)
}

func stringValue(s string) []byte {
	var b []byte
	b = protowire.AppendTag(b, valueString, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func encodeLayer(name string, extent int, keys []string, values [][]byte, features ...[]byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, layerVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, 2)
	b = protowire.AppendTag(b, layerName, protowire.BytesType)
	b = protowire.AppendString(b, name)
	for _, f := range features {
		b = protowire.AppendTag(b, layerFeatures, protowire.BytesType)
		b = protowire.AppendBytes(b, f)
	}
	for _, k := range keys {
		b = protowire.AppendTag(b, layerKeys, protowire.BytesType)
		b = protowire.AppendString(b, k)
	}
	for _, v := range values {
		b = protowire.AppendTag(b, layerValues, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	if extent > 0 {
		b = protowire.AppendTag(b, layerExtent, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(extent))
	}
	return b
}

func encodeTile(layers ...[]byte) []byte {
	var b []byte
	for _, l := range layers {
		b = protowire.AppendTag(b, tileLayers, protowire.BytesType)
		b = protowire.AppendBytes(b, l)
	}
	return b
}

// a line from (2,2) to (10,2) to (10,10)
var lineGeom = []uint32{command(cmdMoveTo, 1), zz(2), zz(2), command(cmdLineTo, 2), zz(8), zz(0), zz(0), zz(8)}

// a square with corners (0,0) and (4,4)
var squareGeom = []uint32{command(cmdMoveTo, 1), zz(0), zz(0), command(cmdLineTo, 3),
	zz(4), zz(0), zz(0), zz(4), zz(-4), zz(0), command(cmdClosePath, 1)}

func sampleTile() []byte {
	var intValue []byte
	intValue = protowire.AppendTag(intValue, valueInt, protowire.VarintType)
	intValue = protowire.AppendVarint(intValue, 3)
	roads := encodeLayer("roads", 0,
		[]string{"highway", "lanes"},
		[][]byte{stringValue("motorway"), intValue},
		encodeFeature(1, GeomLineString, []uint32{0, 0, 1, 1}, lineGeom),
		encodeFeature(2, GeomLineString, []uint32{0, 7}, lineGeom), // bad value index
		encodeFeature(3, GeomPolygon, nil, []uint32{command(5, 1), 0, 0}),
	)
	buildings := encodeLayer("buildings", 256, nil, nil,
		encodeFeature(10, GeomPolygon, nil, squareGeom),
		encodeFeature(11, GeomPoint, nil, []uint32{command(cmdMoveTo, 2), zz(1), zz(1), zz(2), zz(2)}),
	)
	return encodeTile(roads, buildings)
}

// --- Tests -----------------------------------------------------------------

func collect(t *testing.T, tile Tile) (map[string][]*Feature, []error) {
	t.Helper()
	features := map[string][]*Feature{}
	var errs []error
	for layer, err := range tile.Layers() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for f, err := range layer.Features() {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			features[layer.Name()] = append(features[layer.Name()], f)
		}
	}
	return features, errs
}

func TestDecodeMVT(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vtile.tile")
	defer teardown()
	//
	mvt, err := DecodeMVT(sampleTile())
	require.NoError(t, err)
	assert.Equal(t, 2, mvt.LayerCount())
	features, errs := collect(t, mvt)
	require.Len(t, features["roads"], 1)
	road := features["roads"][0]
	assert.Equal(t, uint64(1), road.ID)
	assert.Equal(t, GeomLineString, road.Type)
	assert.Equal(t, map[string]string{"highway": "motorway", "lanes": "3"}, road.Tags)
	assert.Equal(t, [][]vec.Vec2{{{X: 2, Y: 2}, {X: 10, Y: 2}, {X: 10, Y: 10}}}, road.Geometry)

	require.Len(t, errs, 2)
	for i, err := range errs {
		var derr *DecodeError
		require.True(t, errors.As(err, &derr))
		assert.False(t, derr.Fatal)
		assert.Equal(t, "roads", derr.Layer)
		assert.Equal(t, i+1, derr.Index)
		t.Logf("%v", err)
	}

	require.Len(t, features["buildings"], 2)
	square := features["buildings"][0]
	assert.Equal(t, 4, square.Points())
	point := features["buildings"][1]
	assert.Equal(t, [][]vec.Vec2{{{X: 1, Y: 1}}, {{X: 3, Y: 3}}}, point.Geometry)
}

func TestLayerExtent(t *testing.T) {
	mvt, err := DecodeMVT(sampleTile())
	require.NoError(t, err)
	var extents []int
	for layer, err := range mvt.Layers() {
		require.NoError(t, err)
		extents = append(extents, layer.Extent())
	}
	assert.Equal(t, []int{DefaultExtent, 256}, extents)
}

func TestDecodeGzipped(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(sampleTile())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	mvt, err := DecodeMVT(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, mvt.LayerCount())
}

func TestCorruptTileFraming(t *testing.T) {
	data := sampleTile()
	_, err := DecodeMVT(data[:len(data)-3])
	assert.Error(t, err, "truncated tile must not open")
}

func TestCorruptLayerIsFatal(t *testing.T) {
	good := encodeLayer("good", 0, nil, nil, encodeFeature(1, GeomPoint, nil, []uint32{command(cmdMoveTo, 1), 0, 0}))
	bad := []byte{0x0a, 0x20, 'x'} // name field claims 32 bytes
	mvt, err := DecodeMVT(encodeTile(good, bad, good))
	require.NoError(t, err)
	features, errs := collect(t, mvt)
	assert.Len(t, features["good"], 1, "layers after a fatal error are not decoded")
	require.Len(t, errs, 1)
	var derr *DecodeError
	require.True(t, errors.As(errs[0], &derr))
	assert.True(t, derr.Fatal)
	assert.Equal(t, -1, derr.Index)
}

func TestGeometryErrors(t *testing.T) {
	cases := map[string]struct {
		gt   GeomType
		geom []uint32
	}{
		"truncated":      {GeomLineString, []uint32{command(cmdMoveTo, 1), 0}},
		"lineto first":   {GeomLineString, []uint32{command(cmdLineTo, 1), 0, 0}},
		"single point":   {GeomLineString, []uint32{command(cmdMoveTo, 1), 0, 0}},
		"close in line":  {GeomLineString, append(append([]uint32{}, lineGeom...), command(cmdClosePath, 1))},
		"empty":          {GeomPolygon, nil},
		"multi moveto":   {GeomPolygon, []uint32{command(cmdMoveTo, 2), 0, 0, 1, 1}},
		"unknown cmd":    {GeomPoint, []uint32{command(3, 1), 0, 0}},
		"point lineto":   {GeomPoint, []uint32{command(cmdMoveTo, 1), 0, 0, command(cmdLineTo, 1), 2, 2}},
	}
	for name, c := range cases {
		if _, err := decodeGeometry(c.gt, c.geom); err == nil {
			t.Errorf("%s: expected geometry to be rejected", name)
		}
	}
}

func TestGeometryTypeOutOfRange(t *testing.T) {
	l := &mvtLayer{name: "test", extent: DefaultExtent}
	for _, gt := range []uint64{0, 4, 257} {
		var b []byte
		b = protowire.AppendTag(b, featureType, protowire.VarintType)
		b = protowire.AppendVarint(b, gt)
		b = packed(b, featureGeometry, []uint32{command(cmdMoveTo, 1), 0, 0})
		if _, err := l.decodeFeature(b); err == nil {
			t.Errorf("type %d: expected feature to be rejected", gt)
		}
	}
	f, err := l.decodeFeature(encodeFeature(1, GeomPoint, nil, []uint32{command(cmdMoveTo, 1), zz(2), zz(3)}))
	require.NoError(t, err)
	assert.Equal(t, GeomPoint, f.Type)
	assert.Equal(t, vec.Vec2{X: 2, Y: 3}, f.Geometry[0][0])
}

func TestFeaturePath(t *testing.T) {
	f := &Feature{Type: GeomPolygon, Geometry: [][]vec.Vec2{{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}}}}
	var cmds []path.Command
	for cmd := range f.Path() {
		cmds = append(cmds, cmd)
	}
	assert.Equal(t, []path.Command{path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo, path.CmdClose}, cmds)
	f.Type = GeomLineString
	cmds = cmds[:0]
	for cmd := range f.Path() {
		cmds = append(cmds, cmd)
	}
	assert.Equal(t, []path.Command{path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo}, cmds)
}

func TestMemoryTile(t *testing.T) {
	m := NewMemory(NewMemoryLayer("a", &Feature{ID: 1, Type: GeomPoint}))
	m.Add(&MemoryLayer{LayerName: "b", Size: 512})
	features, errs := collect(t, m)
	assert.Empty(t, errs)
	assert.Len(t, features["a"], 1)
	var names []string
	for l := range m.Layers() {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
}
