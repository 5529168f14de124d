package mapcss

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMotorwayRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "vtile.mapcss")
	defer teardown()
	//
	rules, err := Parse(`way[highway=motorway]|z10-20 { color: #ff0000; width: 4; casing-color: #990000; dashes: 4,2; }`, 0)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	r := rules[0]
	assert.Equal(t, KindWay, r.Selector.Kind)
	assert.Equal(t, ZoomRange{10, 20}, r.Selector.Zoom)
	require.Len(t, r.Selector.Tests, 1)
	assert.Equal(t, OpEquals, r.Selector.Tests[0].Op)
	assert.Equal(t, "highway", r.Selector.Tests[0].Key)
	assert.Equal(t, "motorway", r.Selector.Tests[0].Value)
	require.Len(t, r.Declarations, 4)
	assert.Equal(t, "dashes", r.Declarations[3].Property)
	dp, ok := r.Declarations[3].Value.Dashes()
	assert.True(t, ok)
	assert.Equal(t, DashPattern{4, 2}, dp)
	t.Logf("rule = %s", r)
}

func TestParseZoomForms(t *testing.T) {
	cases := map[string]ZoomRange{
		"node|z12 {}":      {12, 12},
		"node|z12- {}":     {12, math.MaxInt},
		"node|z-8 {}":      {math.MinInt, 8},
		"node|z3-5 {}":     {3, 5},
		"node {}":          AllZooms,
		"node|z3-5[a] {}":  {3, 5},
		"node[a]|z3-5 { }": {3, 5},
	}
	for text, zr := range cases {
		rules, err := Parse(text, 0)
		if err != nil {
			t.Errorf("%q: %v", text, err)
			continue
		}
		if rules[0].Selector.Zoom != zr {
			t.Errorf("%q: expected zoom %v, have %v", text, zr, rules[0].Selector.Zoom)
		}
	}
	for _, text := range []string{"node|z5-3 {}", "node|zz {}", "node|z {}", "node|z1|z2 {}", "node|z33 {}"} {
		if _, err := Parse(text, 0); err == nil {
			t.Errorf("%q: expected zoom range to be rejected", text)
		}
	}
}

func TestParseTestOperators(t *testing.T) {
	rules, err := Parse(`way[highway][!name][ref!=A9][name:en=Main][lanes=2] {}
		area[name=~/^Auto/][landuse!~"^farm"] {}`, 0)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	ops := []Op{OpExists, OpNotExists, OpNotEquals, OpEquals, OpEquals}
	require.Len(t, rules[0].Selector.Tests, len(ops))
	for i, op := range ops {
		assert.Equal(t, op, rules[0].Selector.Tests[i].Op, "test %d", i)
	}
	assert.Equal(t, "name:en", rules[0].Selector.Tests[3].Key)
	assert.Equal(t, "2", rules[0].Selector.Tests[4].Value)
	tests := rules[1].Selector.Tests
	require.Len(t, tests, 2)
	assert.Equal(t, OpMatches, tests[0].Op)
	assert.Equal(t, "^Auto", tests[0].Value)
	assert.True(t, tests[0].Eval(Tags{"name": "Autobahn"}))
	assert.Equal(t, OpNotMatches, tests[1].Op)
	assert.True(t, tests[1].Eval(Tags{"landuse": "forest"}))
}

func TestParseRegexForms(t *testing.T) {
	rules, err := Parse(`way[name=~^A] {} way[name!~^A] {} way[name=~/^A/] {} way[name=~"^A"] {}`, 0)
	require.NoError(t, err)
	require.Len(t, rules, 4)
	ops := []Op{OpMatches, OpNotMatches, OpMatches, OpMatches}
	for i, r := range rules {
		require.Len(t, r.Selector.Tests, 1)
		test := r.Selector.Tests[0]
		assert.Equal(t, ops[i], test.Op, "rule %d", i)
		assert.Equal(t, "^A", test.Value, "rule %d", i)
		assert.Equal(t, ops[i] == OpMatches, test.Eval(Tags{"name": "Autobahn"}), "rule %d", i)
	}
	// '/*' inside slashes starts a comment
	_, err = Parse(`way[name=~/a/*b*/] {}`, 0)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Msg, "quote the regular expression")
	rules, err = Parse(`way[name=~"a/*b"] {}`, 0)
	require.NoError(t, err)
	assert.True(t, rules[0].Selector.Tests[0].Eval(Tags{"name": "a//b"}))
}

func TestParseOpacityPercentage(t *testing.T) {
	rules, err := Parse(`way { opacity: 50%; casing-opacity: 0.25; fill-opacity: 100%; }`, 0)
	require.NoError(t, err)
	style := Resolve(rules, KindWay, nil, 12)
	assert.InDelta(t, 0.5, style.Number("opacity"), 1e-9)
	assert.InDelta(t, 0.25, style.Number("casing-opacity"), 1e-9)
	assert.InDelta(t, 1.0, style.Number("fill-opacity"), 1e-9)
	_, err = Parse(`way { width: 50%; }`, 0)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "50%", perr.Token)
}

func TestParseSelectorList(t *testing.T) {
	rules, err := Parse("node, area[building] { color: red; }\nway { width: 2 }", 5)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, KindNode, rules[0].Selector.Kind)
	assert.Equal(t, KindArea, rules[1].Selector.Kind)
	assert.Equal(t, []int{5, 6, 7}, []int{rules[0].Source, rules[1].Source, rules[2].Source})
}

func TestParseValues(t *testing.T) {
	rules, err := Parse(`
		/* all kinds of values */
		area {
			fill-color: rgba(255, 0, 0, 0.5);
			color: steelblue;
			width: 3pt;
			casing-width: 2m;
			z-index: -1;
			linecap: Round;
			font-family: "Open Sans";
			text: name;
			dashes: none;
			x-custom: foo;
		}`, 0)
	require.NoError(t, err)
	s := &Style{props: map[string]Value{}}
	for _, d := range rules[0].Declarations {
		s.props[d.Property] = d.Value
	}
	assert.Equal(t, RGBA(1, 0, 0, .5), s.Color("fill-color"))
	r, g, b, _ := s.Color("color").Bytes()
	assert.Equal(t, []uint8{70, 130, 180}, []uint8{r, g, b})
	assert.InDelta(t, 4.0, s.Number("width"), 1e-6)
	assert.Equal(t, UnitMeter, s.Dimen("casing-width").Unit())
	assert.Equal(t, -1.0, s.Number("z-index"))
	assert.Equal(t, "round", s.Keyword("linecap"))
	assert.Equal(t, "Open Sans", s.Text("font-family"))
	assert.Equal(t, "name", s.Text("text"))
	assert.True(t, s.IsDeclared("dashes"))
	assert.Nil(t, s.DashPattern("dashes"))
	assert.Equal(t, "foo", s.Keyword("x-custom"))
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("way { color: red; }\nnode { width: ; }", 0)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, ";", perr.Token)
	assert.True(t, strings.HasPrefix(err.Error(), "unexpected token ';' at 2:"), err.Error())
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"road { }",
		"way { color: 4 }",
		"way { width: red }",
		"way { width: -1 }",
		"way { dashes: 4,0 }",
		"way { linecap: wobbly }",
		"way { color: notacolor }",
		"way { color: red",
		"way[highway { }",
		"way[name=~/(/] { }",
		"way { width: 4, 2 }",
	} {
		_, err := Parse(text, 0)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: expected a parse error, have %v", text, err)
			continue
		}
		t.Logf("%q: %v", text, err)
	}
}
