package render

import (
	"errors"
	"fmt"
)

// ErrCancelled is the error of cancelled render jobs.
var ErrCancelled = errors.New("render job cancelled")

// Status is the outcome of a render job.
type Status int8

// Outcomes of render jobs.
const (
	StatusSuccess Status = iota
	StatusCancelled
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	}
	return "failure"
}

// Stats counts what a render job did.
type Stats struct {
	Layers   int // layers completed
	Features int // features decoded
	Draws    int // draw calls issued
	Skipped  int // malformed features
	Unstyled int // features without declared properties
}

// Result is passed to the completion callback of a render job. Err is
// ErrCancelled for cancelled jobs and the cause for failed ones.
type Result struct {
	Status Status
	Err    error
	Stats  Stats
}

func (r Result) String() string {
	if r.Err != nil && r.Status == StatusFailure {
		return fmt.Sprintf("%s: %v (%+v)", r.Status, r.Err, r.Stats)
	}
	return fmt.Sprintf("%s (%+v)", r.Status, r.Stats)
}

// --- Matching --------------------------------------------------------------

// Match starts a pattern match on the status of a result:
//
//	switch m := res.Match(); m {
//	case m.Success():
//	    …
//	case m.Cancelled():
//	    …
//	case m.Failure(&err):
//	    …
//	}
func (r Result) Match() *ResultMatcher {
	return &ResultMatcher{result: r}
}

// ResultMatcher is a helper type for matching results.
type ResultMatcher struct {
	result Result
}

// Success matches completed jobs.
func (m *ResultMatcher) Success() *ResultMatcher {
	if m.result.Status != StatusSuccess {
		return nil
	}
	return m
}

// Cancelled matches cancelled jobs.
func (m *ResultMatcher) Cancelled() *ResultMatcher {
	if m.result.Status != StatusCancelled {
		return nil
	}
	return m
}

// Failure matches failed jobs and extracts the cause.
func (m *ResultMatcher) Failure(err *error) *ResultMatcher {
	if m.result.Status != StatusFailure {
		return nil
	}
	if err != nil {
		*err = m.result.Err
	}
	return m
}
