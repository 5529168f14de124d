package mapcss

import (
	"math"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
)

// Rule is a parsed rule: a selector and its declarations. Rules created from
// a selector list share their declarations.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Source       int // position in the stylesheet, monotonic across loads
}

// Declaration is a single 'property: value' pair.
type Declaration struct {
	Property string
	Value    Value
}

// Specificity of the rule's selector.
func (r *Rule) Specificity() Specificity {
	return r.Selector.Specificity()
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Selector.String())
	b.WriteString(" {")
	for _, d := range r.Declarations {
		b.WriteString(" ")
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value.String())
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}

// Parse parses stylesheet text into rules. Source indices start at base.
// Parse either returns all rules of the input or a *ParseError.
func Parse(text string, base int) ([]*Rule, error) {
	p := &parser{scan: scanner.New(text)}
	return p.parseRules(base)
}

type parser struct {
	scan   *scanner.Scanner
	tokens []*scanner.Token
}

// --- Token handling --------------------------------------------------------

// peekRaw returns the next token without skipping whitespace.
func (p *parser) peekRaw() *scanner.Token {
	if len(p.tokens) == 0 {
		p.tokens = append(p.tokens, p.scan.Next())
	}
	return p.tokens[0]
}

func (p *parser) shiftRaw() *scanner.Token {
	tok := p.peekRaw()
	if tok.Type != scanner.TokenEOF {
		p.tokens = p.tokens[1:]
	}
	return tok
}

func ignorable(tok *scanner.Token) bool {
	switch tok.Type {
	case scanner.TokenS, scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
		return true
	}
	return false
}

func (p *parser) skipIgnorable() {
	for ignorable(p.peekRaw()) {
		p.shiftRaw()
	}
}

// peek returns the next significant token.
func (p *parser) peek() *scanner.Token {
	p.skipIgnorable()
	return p.peekRaw()
}

// next consumes the next significant token.
func (p *parser) next() *scanner.Token {
	p.skipIgnorable()
	return p.shiftRaw()
}

func isChar(tok *scanner.Token, c string) bool {
	return tok.Type == scanner.TokenChar && tok.Value == c
}

func (p *parser) peekChar(c string) bool {
	return isChar(p.peek(), c)
}

func (p *parser) expectChar(c string) error {
	tok := p.next()
	if !isChar(tok, c) {
		return unexpected(tok, "'"+c+"'", "")
	}
	return nil
}

func unexpected(tok *scanner.Token, expected, msg string) *ParseError {
	e := &ParseError{
		Line:     tok.Line,
		Column:   tok.Column,
		Expected: expected,
		Msg:      msg,
	}
	if tok.Type != scanner.TokenEOF {
		e.Token = tok.Value
	}
	if tok.Type == scanner.TokenError && msg == "" {
		e.Msg = "invalid input"
	}
	return e
}

// --- Rules and selectors ---------------------------------------------------

func (p *parser) parseRules(base int) ([]*Rule, error) {
	var rules []*Rule
	for p.peek().Type != scanner.TokenEOF {
		var sels []Selector
		for {
			sel, err := p.parseSelector()
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)
			if !p.peekChar(",") {
				break
			}
			p.next()
		}
		decls, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		for _, sel := range sels {
			rules = append(rules, &Rule{
				Selector:     sel,
				Declarations: decls,
				Source:       base + len(rules),
			})
		}
	}
	return rules, nil
}

func (p *parser) parseSelector() (Selector, error) {
	sel := Selector{Zoom: AllZooms}
	tok := p.next()
	var name string
	switch {
	case isChar(tok, "*"):
		name = "*"
	case tok.Type == scanner.TokenIdent:
		name = tok.Value
	default:
		return sel, unexpected(tok, "selector", "")
	}
	kind, ok := KindFromName(name)
	if !ok {
		return sel, unexpected(tok, "node, way, area, canvas or *", "unknown selector type")
	}
	sel.Kind = kind
	zoomSeen := false
	// tests and zoom range follow the kind without white space
	for {
		tok := p.peekRaw()
		switch {
		case isChar(tok, "["):
			p.shiftRaw()
			test, err := p.parseTest()
			if err != nil {
				return sel, err
			}
			sel.Tests = append(sel.Tests, test)
		case isChar(tok, "|"):
			p.shiftRaw()
			ztok := p.shiftRaw()
			if zoomSeen {
				return sel, unexpected(ztok, "", "duplicate zoom range")
			}
			zr, err := parseZoom(ztok)
			if err != nil {
				return sel, err
			}
			sel.Zoom = zr
			zoomSeen = true
		default:
			return sel, nil
		}
	}
}

// parseZoom parses z10-14, z10, z10- and z-14. Open ends are unbounded.
func parseZoom(tok *scanner.Token) (ZoomRange, error) {
	bad := func(msg string) (ZoomRange, error) {
		return AllZooms, unexpected(tok, "zoom range", msg)
	}
	if tok.Type != scanner.TokenIdent || len(tok.Value) < 2 || (tok.Value[0] != 'z' && tok.Value[0] != 'Z') {
		return bad("")
	}
	spec := tok.Value[1:]
	zr := AllZooms
	lo, hi, isRange := strings.Cut(spec, "-")
	num := func(s string, dflt int) (int, bool) {
		if s == "" {
			return dflt, true
		}
		n, err := strconv.Atoi(s)
		return n, err == nil && n >= 0 && n <= MaxZoom
	}
	var ok bool
	if zr.Min, ok = num(lo, math.MinInt); !ok {
		return bad("invalid zoom level")
	}
	if !isRange {
		if lo == "" {
			return bad("invalid zoom level")
		}
		zr.Max = zr.Min
		return zr, nil
	}
	if lo == "" && hi == "" {
		return bad("invalid zoom level")
	}
	if zr.Max, ok = num(hi, math.MaxInt); !ok {
		return bad("invalid zoom level")
	}
	if zr.Min > zr.Max {
		return bad("empty zoom range")
	}
	return zr, nil
}

// parseTest parses a tag test after the opening bracket.
func (p *parser) parseTest() (Test, error) {
	negated := false
	if p.peekChar("!") {
		p.next()
		negated = true
	}
	key, err := p.parseKey()
	if err != nil {
		return Test{}, err
	}
	tok := p.next()
	if isChar(tok, "]") {
		if negated {
			return NewTest(OpNotExists, key, "")
		}
		return NewTest(OpExists, key, "")
	}
	if negated {
		return Test{}, unexpected(tok, "']'", "")
	}
	var op Op
	switch {
	case isChar(tok, "="):
		op = OpEquals
		if isChar(p.peekRaw(), "~") {
			p.shiftRaw()
			op = OpMatches
		}
	case isChar(tok, "!"):
		t2 := p.shiftRaw()
		switch {
		case isChar(t2, "="):
			op = OpNotEquals
		case isChar(t2, "~"):
			op = OpNotMatches
		default:
			return Test{}, unexpected(t2, "'=' or '~'", "")
		}
	default:
		return Test{}, unexpected(tok, "']' or operator", "")
	}
	var value string
	vtok := p.peek()
	if op == OpMatches || op == OpNotMatches {
		value, err = p.parseRegex()
	} else {
		value, err = p.parseTestValue()
	}
	if err != nil {
		return Test{}, err
	}
	if err := p.expectChar("]"); err != nil {
		return Test{}, err
	}
	test, err := NewTest(op, key, value)
	if err != nil {
		return test, unexpected(vtok, "regular expression", err.Error())
	}
	return test, nil
}

// parseKey concatenates identifiers, numbers and colons, e.g. 'name:en'.
func (p *parser) parseKey() (string, error) {
	var b strings.Builder
	for {
		tok := p.peekRaw()
		switch {
		case tok.Type == scanner.TokenIdent, tok.Type == scanner.TokenNumber,
			tok.Type == scanner.TokenDimension, isChar(tok, ":"):
			b.WriteString(tok.Value)
			p.shiftRaw()
			continue
		case tok.Type == scanner.TokenString:
			if b.Len() > 0 {
				return "", unexpected(tok, "key", "")
			}
			p.shiftRaw()
			return unquote(tok.Value), nil
		case ignorable(tok) && b.Len() == 0:
			p.shiftRaw()
			continue
		}
		if b.Len() == 0 {
			return "", unexpected(tok, "key", "")
		}
		return b.String(), nil
	}
}

// parseTestValue concatenates tokens up to the closing bracket.
func (p *parser) parseTestValue() (string, error) {
	tok := p.peek()
	if tok.Type == scanner.TokenString {
		p.next()
		return unquote(tok.Value), nil
	}
	var b strings.Builder
	for {
		tok := p.peekRaw()
		switch {
		case isChar(tok, "]"):
			return strings.TrimSpace(b.String()), nil
		case tok.Type == scanner.TokenEOF, tok.Type == scanner.TokenError,
			isChar(tok, "["), isChar(tok, "{"), isChar(tok, "}"):
			return "", unexpected(tok, "']'", "")
		}
		b.WriteString(tok.Value)
		p.shiftRaw()
	}
}

// parseRegex reads a regular expression in one of three forms: quoted,
// slash-delimited, or bare up to the closing bracket. A bare expression
// cannot contain brackets. Within a slash-delimited expression '/*' starts
// a comment, so such expressions have to be quoted.
func (p *parser) parseRegex() (string, error) {
	tok := p.peek()
	if !isChar(tok, "/") {
		return p.parseTestValue()
	}
	p.next()
	var b strings.Builder
	for {
		tok := p.shiftRaw()
		switch {
		case isChar(tok, "/"):
			return b.String(), nil
		case tok.Type == scanner.TokenComment:
			return "", unexpected(tok, "'/'", "'/*' starts a comment, quote the regular expression")
		case tok.Type == scanner.TokenEOF, tok.Type == scanner.TokenError:
			return "", unexpected(tok, "'/'", "unterminated regular expression")
		}
		b.WriteString(tok.Value)
	}
}

// --- Declarations ----------------------------------------------------------

func (p *parser) parseBlock() ([]Declaration, error) {
	if err := p.expectChar("{"); err != nil {
		return nil, err
	}
	var decls []Declaration
	for {
		tok := p.next()
		switch {
		case isChar(tok, "}"):
			return decls, nil
		case isChar(tok, ";"):
			continue
		case tok.Type == scanner.TokenIdent:
			if err := p.expectChar(":"); err != nil {
				return nil, err
			}
			v, err := p.parseValue(tok.Value)
			if err != nil {
				return nil, err
			}
			decls = setDeclaration(decls, tok.Value, v)
		default:
			return nil, unexpected(tok, "property name or '}'", "")
		}
	}
}

// setDeclaration replaces an earlier declaration of the same property
// within a block.
func setDeclaration(decls []Declaration, prop string, v Value) []Declaration {
	for i := range decls {
		if decls[i].Property == prop {
			decls[i].Value = v
			return decls
		}
	}
	return append(decls, Declaration{Property: prop, Value: v})
}

// item is a single component of a declaration value.
type item struct {
	tok   *scanner.Token
	value Value
	num   bool
	pct   bool
	ident string
}

func (p *parser) parseValue(prop string) (Value, error) {
	start := p.peek()
	var items []item
	commas := 0
	for {
		tok := p.peek()
		if isChar(tok, ";") || isChar(tok, "}") {
			break
		}
		if len(items) > 0 {
			if !isChar(tok, ",") {
				return NoValue, unexpected(tok, "',', ';' or '}'", "")
			}
			p.next()
			commas++
		}
		it, err := p.parseItem()
		if err != nil {
			return NoValue, err
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return NoValue, unexpected(start, "value", "")
	}
	for _, it := range items {
		if it.pct && !strings.HasSuffix(prop, "opacity") {
			return NoValue, unexpected(it.tok, "number", "percentages are allowed for opacities only")
		}
	}
	pdef, known := LookupProperty(prop)
	v, err := p.combine(prop, pdef, items)
	if err != nil {
		return NoValue, err
	}
	if !known {
		return v, nil
	}
	if w, ok := pdef.admits(v); ok {
		return w, nil
	}
	return NoValue, unexpected(start, pdef.Kind.String(), "unexpected type for "+prop)
}

func (p *parser) parseItem() (item, error) {
	tok := p.next()
	switch tok.Type {
	case scanner.TokenHash:
		c, err := ParseColor(tok.Value)
		if err != nil {
			return item{}, unexpected(tok, "color", err.Error())
		}
		return item{tok: tok, value: ColorValue(c)}, nil
	case scanner.TokenNumber, scanner.TokenDimension:
		d, err := ParseDimen(tok.Value)
		if err != nil {
			return item{}, unexpected(tok, "number", err.Error())
		}
		return item{tok: tok, value: NumberValue(d), num: true}, nil
	case scanner.TokenPercentage:
		x, err := strconv.ParseFloat(strings.TrimSuffix(tok.Value, "%"), 64)
		if err != nil {
			return item{}, unexpected(tok, "percentage", "")
		}
		return item{tok: tok, value: NumberValue(Number(x / 100)), num: true, pct: true}, nil
	case scanner.TokenString:
		return item{tok: tok, value: StringValue(unquote(tok.Value))}, nil
	case scanner.TokenIdent:
		return item{tok: tok, value: KeywordValue(tok.Value), ident: tok.Value}, nil
	case scanner.TokenFunction:
		fn := strings.ToLower(strings.TrimSuffix(tok.Value, "("))
		if fn != "rgb" && fn != "rgba" {
			return item{}, unexpected(tok, "value", "unsupported function "+fn)
		}
		c, err := p.parseColorFunction(tok)
		if err != nil {
			return item{}, err
		}
		return item{tok: tok, value: ColorValue(c)}, nil
	case scanner.TokenChar:
		if tok.Value == "-" {
			ntok := p.shiftRaw()
			if ntok.Type == scanner.TokenNumber || ntok.Type == scanner.TokenDimension {
				d, err := ParseDimen("-" + ntok.Value)
				if err != nil {
					return item{}, unexpected(ntok, "number", err.Error())
				}
				return item{tok: tok, value: NumberValue(d), num: true}, nil
			}
			return item{}, unexpected(ntok, "number", "")
		}
	}
	return item{}, unexpected(tok, "value", "")
}

func (p *parser) parseColorFunction(fn *scanner.Token) (Color, error) {
	var comps []float64
	var pct []bool
	for {
		tok := p.next()
		neg := 1.0
		if isChar(tok, "-") {
			neg = -1
			tok = p.shiftRaw()
		}
		switch tok.Type {
		case scanner.TokenNumber:
			x, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return Transparent, unexpected(tok, "number", "")
			}
			comps = append(comps, neg*x)
			pct = append(pct, false)
		case scanner.TokenPercentage:
			x, err := strconv.ParseFloat(strings.TrimSuffix(tok.Value, "%"), 64)
			if err != nil {
				return Transparent, unexpected(tok, "percentage", "")
			}
			comps = append(comps, neg*x)
			pct = append(pct, true)
		default:
			return Transparent, unexpected(tok, "color component", "")
		}
		sep := p.next()
		if isChar(sep, ")") {
			break
		}
		if !isChar(sep, ",") {
			return Transparent, unexpected(sep, "',' or ')'", "")
		}
	}
	c, err := ColorFromComponents(comps, pct)
	if err != nil {
		return Transparent, unexpected(fn, "color", err.Error())
	}
	return c, nil
}

// combine turns the items of a declaration into a single value, using the
// kind of a known property to interpret identifiers and number lists.
func (p *parser) combine(prop string, pdef *PropertyDef, items []item) (Value, error) {
	want := ValueNone
	if pdef != nil {
		want = pdef.Kind
	}
	if len(items) == 1 {
		it := items[0]
		switch {
		case want == ValueDashes && it.num:
			return dashes(items)
		case want == ValueDashes && strings.EqualFold(it.ident, "none"):
			return DashesValue(nil), nil
		case want == ValueColor && it.ident != "":
			c, err := ParseColor(it.ident)
			if err != nil {
				return NoValue, unexpected(it.tok, "color", err.Error())
			}
			return ColorValue(c), nil
		}
		return it.value, nil
	}
	for _, it := range items {
		if !it.num {
			return NoValue, unexpected(it.tok, "number", "lists are allowed for dash patterns only")
		}
	}
	if want != ValueNone && want != ValueDashes {
		return NoValue, unexpected(items[0].tok, want.String(), "unexpected type for "+prop)
	}
	return dashes(items)
}

func dashes(items []item) (Value, error) {
	lengths := make([]float64, len(items))
	for i, it := range items {
		d, _ := it.value.Dimen()
		if d.Unit() == UnitMeter {
			return NoValue, unexpected(it.tok, "length in pixels", "dash lengths in meters are not supported")
		}
		lengths[i] = d.Value()
	}
	dp, err := NewDashPattern(lengths...)
	if err != nil {
		return NoValue, unexpected(items[0].tok, "dash pattern", err.Error())
	}
	return DashesValue(dp), nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	esc := false
	for _, r := range s {
		if r == '\\' && !esc {
			esc = true
			continue
		}
		esc = false
		b.WriteRune(r)
	}
	return b.String()
}
