package mapcss

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const motorway = `way[highway=motorway]|z10-20 { color: #ff0000; width: 4; casing-color: #990000; dashes: 4,2; }`

func TestMotorwayScenario(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vtile.mapcss")
	defer teardown()
	//
	ss := NewStylesheet()
	require.NoError(t, ss.Load(motorway))
	style := ss.GetStyle(KindWay, Tags{"highway": "motorway"}, 14)
	c, err := style.LookupColor("color")
	require.NoError(t, err)
	assert.Equal(t, RGB(1, 0, 0), c)
	r, g, b, a := c.Bytes()
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
	assert.Equal(t, 4.0, style.Number("width"))
	assert.Equal(t, DashPattern{4, 2}, style.DashPattern("dashes"))
	r, g, b, _ = style.Color("casing-color").Bytes()
	assert.Equal(t, [3]uint8{0x99, 0, 0}, [3]uint8{r, g, b})
	t.Logf("\n%s", ss.Tree().String())
}

func TestMotorwayOutOfZoom(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(motorway))
	style := ss.GetStyle(KindWay, Tags{"highway": "motorway"}, 5)
	assert.Equal(t, 0, style.Len())
	assert.False(t, style.IsDeclared("color"))
	_, err := style.LookupColor("color")
	assert.True(t, errors.Is(err, ErrPropertyMissing))
	// non-strict access falls back to the registered default
	assert.Equal(t, Black, style.Color("color"))
	assert.Equal(t, 1.0, style.Number("width"))
	assert.Nil(t, style.DashPattern("dashes"))
	assert.Equal(t, Transparent, style.Color("no-such-color"))
}

func TestCascadeTieBreak(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(`way[highway] { color: red; width: 2; }`))
	require.NoError(t, ss.Load(`way[highway] { color: blue; }`))
	style := ss.GetStyle(KindWay, Tags{"highway": "primary"}, 12)
	assert.Equal(t, RGB(0, 0, 1), style.Color("color"))
	assert.Equal(t, 2.0, style.Number("width"))
	winners := Winners(ss.Rules(), KindWay, Tags{"highway": "primary"}, 12)
	require.Len(t, winners, 2)
	assert.Less(t, winners[0].Source, winners[1].Source)
}

func TestCascadeSpecificity(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(`
		way[highway=primary] { color: red; }
		way { color: blue; width: 5; }
		* { width: 1; opacity: 0.5; }
		area { width: 3; }
		way { width: 2; }
	`))
	way := ss.GetStyle(KindWay, Tags{"highway": "primary"}, 12)
	assert.Equal(t, RGB(1, 0, 0), way.Color("color"), "more tag tests win over source order")
	assert.Equal(t, 2.0, way.Number("width"))
	assert.Equal(t, 0.5, way.Number("opacity"))
	area := ss.GetStyle(KindArea, nil, 12)
	assert.Equal(t, 3.0, area.Number("width"), "'area' is more specific than 'way'")
	assert.Equal(t, RGB(0, 0, 1), area.Color("color"))
	node := ss.GetStyle(KindNode, nil, 12)
	assert.Equal(t, []string{"opacity", "width"}, node.Properties())
	canvas := ss.GetStyle(KindCanvas, nil, 12)
	assert.Equal(t, 0, canvas.Len(), "'*' does not apply to the canvas")
}

func TestConflictingValueTypes(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(`node { x-size: 4; } node { x-size: big; }`))
	style := ss.GetStyle(KindNode, nil, 1)
	assert.Equal(t, "big", style.Keyword("x-size"))
	_, err := style.LookupNumber("x-size")
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Equal(t, 0.0, style.Number("x-size"))
}

func TestResolveIdempotent(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(motorway+`way { linecap: round; } way[ref] { width: 6; }`))
	tags := Tags{"highway": "motorway", "ref": "A9"}
	s1 := ss.GetStyle(KindWay, tags, 12)
	s2 := ss.GetStyle(KindWay, tags, 12)
	assert.NotSame(t, s1, s2)
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(ss.GetStyle(KindWay, tags, 5)))
}

func TestLoadIsAtomic(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(motorway))
	err := ss.Load("node { color: red; }\nway { width: }")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, ss.Len())
	require.NoError(t, ss.LoadReader(strings.NewReader("node { color: red; }")))
	rules := ss.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, 1, rules[1].Source)
	ss.Reset()
	assert.Equal(t, 0, ss.Len())
	assert.Len(t, rules, 2, "snapshots survive a reset")
}

func TestLoadFileMissing(t *testing.T) {
	ss := NewStylesheet()
	err := ss.LoadFile("testdata/does-not-exist.mapcss")
	assert.Error(t, err)
}

func TestConcurrentGetStyle(t *testing.T) {
	ss := NewStylesheet()
	require.NoError(t, ss.Load(motorway))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(zoom int) {
			defer wg.Done()
			style := ss.GetStyle(KindWay, Tags{"highway": "motorway"}, zoom)
			if zoom >= 10 && !style.IsDeclared("color") {
				t.Errorf("zoom %d: expected color to be declared", zoom)
			}
		}(8 + i)
	}
	wg.Wait()
}
