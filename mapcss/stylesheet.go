package mapcss

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xlab/treeprint"
)

// Stylesheet is an ordered collection of rules. Rules are appended by
// calls to Load; insertion order is source order.
//
// A Stylesheet is safe for concurrent use. GetStyle calls may run in
// parallel; Load and Reset wait for them to finish.
type Stylesheet struct {
	mu    sync.RWMutex
	rules []*Rule
	next  int // source index of the next rule
}

// NewStylesheet creates an empty stylesheet.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{}
}

// Load parses text and appends its rules. Load is atomic: if text is
// malformed, a *ParseError is returned and the stylesheet is unchanged.
func (ss *Stylesheet) Load(text string) error {
	rules, err := Parse(text, 0)
	if err != nil {
		tracer().Errorf("stylesheet: %v", err)
		return err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, r := range rules {
		r.Source += ss.next
	}
	ss.rules = append(ss.rules, rules...)
	ss.next += len(rules)
	tracer().Infof("stylesheet: loaded %d rules, %d total", len(rules), len(ss.rules))
	return nil
}

// LoadReader loads a stylesheet from r.
func (ss *Stylesheet) LoadReader(r io.Reader) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stylesheet: %w", err)
	}
	return ss.Load(string(text))
}

// LoadFile loads a stylesheet from a file.
func (ss *Stylesheet) LoadFile(path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading stylesheet: %w", err)
	}
	if err := ss.Load(string(text)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Reset removes all rules.
func (ss *Stylesheet) Reset() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.rules = nil
	ss.next = 0
}

// Len returns the number of rules.
func (ss *Stylesheet) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.rules)
}

// Rules returns a snapshot of the rules in source order. Later loads do not
// affect the snapshot. Rules must not be modified.
func (ss *Stylesheet) Rules() []*Rule {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.rules[:len(ss.rules):len(ss.rules)]
}

// GetStyle resolves the style of a feature. It never fails; if no rule
// matches, the style has no declared properties.
func (ss *Stylesheet) GetStyle(kind Kind, tags Tags, zoom int) *Style {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return Resolve(ss.rules, kind, tags, zoom)
}

// Tree returns a printable tree of the rules, grouped by selector.
func (ss *Stylesheet) Tree() treeprint.Tree {
	tree := treeprint.New()
	for _, r := range ss.Rules() {
		spec := r.Specificity()
		branch := tree.AddMetaBranch(fmt.Sprintf("#%d %d/%d", r.Source, spec.Tests, spec.Kind), r.Selector.String())
		for _, d := range r.Declarations {
			branch.AddMetaNode(GroupNameFromPropertyKey(d.Property), d.Property+": "+d.Value.String())
		}
	}
	return tree
}
