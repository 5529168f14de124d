package render

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/npillmayer/vtile/tile"
)

// State is the state of a render job.
//
//	Pending ──▶ Running ──▶ Completed
//	   │           ├──────▶ Cancelled
//	   └───────────┴──────▶ Failed / Cancelled
type State int8

// States of render jobs.
const (
	Pending State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "failed"
}

// Final is true for Completed, Cancelled and Failed.
func (s State) Final() bool {
	return s >= Completed
}

// Handle controls a render job.
type Handle struct {
	mu        sync.Mutex
	state     State
	cancelled bool
	result    Result
	done      chan struct{}
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Cancel requests cancellation. The job stops before its next feature.
// Draw calls already issued are not undone. Cancel has no effect on
// finished jobs.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
}

// State returns the current state of the job.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed after the completion callback has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the result of a finished job.
func (h *Handle) Result() (Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.state.Final()
}

// Wait blocks until the job is done or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		res, _ := h.Result()
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// begin moves a pending job to Running. It returns false if the job has
// been cancelled before its first step.
func (h *Handle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Pending && !h.cancelled {
		h.state = Running
	}
	return h.state == Running && !h.cancelled
}

func (h *Handle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// finish records the result exactly once.
func (h *Handle) finish(res Result) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Final() {
		return false
	}
	switch res.Status {
	case StatusSuccess:
		h.state = Completed
	case StatusCancelled:
		h.state = Cancelled
	default:
		h.state = Failed
	}
	h.result = res
	return true
}

// --- Jobs ------------------------------------------------------------------

// job is the transient state of one render call. Layers and features are
// pulled from the tile's sequences, so that iteration can be suspended
// between steps.
type job struct {
	opts     *options
	sched    Scheduler
	surface  Surface
	tile     tile.Tile
	styles   StyleSource
	zoom     int
	callback func(Result)
	handle   *Handle

	nextLayer    func() (tile.Layer, error, bool)
	stopLayers   func()
	layer        tile.Layer
	nextFeature  func() (*tile.Feature, error, bool)
	stopFeatures func()
	xform        transform

	stats Stats
}

func (j *job) post() {
	j.sched.Post(j.step)
}

// step processes features until the layer ends or the step budget is
// exhausted, then posts the next step.
func (j *job) step() {
	if j.nextLayer == nil {
		if !j.handle.begin() {
			j.finish(Result{Status: StatusCancelled, Err: ErrCancelled})
			return
		}
		tracer().Debugf("render job started at zoom %d", j.zoom)
		j.nextLayer, j.stopLayers = iter.Pull2(j.tile.Layers())
		if err := j.background(); err != nil {
			j.finish(Result{Status: StatusFailure, Err: err})
			return
		}
	}
	for budget := j.opts.step; budget > 0; {
		if j.handle.isCancelled() {
			j.finish(Result{Status: StatusCancelled, Err: ErrCancelled})
			return
		}
		if j.nextFeature == nil {
			layer, err, ok := j.nextLayer()
			if !ok {
				j.finish(Result{Status: StatusSuccess})
				return
			}
			if err != nil {
				if fatal(err) {
					j.finish(Result{Status: StatusFailure, Err: err})
					return
				}
				j.opts.diagnostics(err)
				continue
			}
			j.startLayer(layer)
		}
		f, err, ok := j.nextFeature()
		if !ok {
			j.endLayer()
			j.post()
			return
		}
		budget--
		if err != nil {
			if fatal(err) {
				j.finish(Result{Status: StatusFailure, Err: err})
				return
			}
			j.stats.Skipped++
			j.opts.diagnostics(err)
			continue
		}
		j.stats.Features++
		if err := j.draw(f); err != nil {
			j.finish(Result{Status: StatusFailure, Err: err})
			return
		}
	}
	j.post()
}

func (j *job) startLayer(layer tile.Layer) {
	j.layer = layer
	j.nextFeature, j.stopFeatures = iter.Pull2(layer.Features())
	w, h := j.surface.Size()
	j.xform = newTransform(w, h, layer.Extent())
	tracer().Debugf("layer %s, extent %d", layer.Name(), layer.Extent())
}

func (j *job) endLayer() {
	j.stopFeatures()
	j.nextFeature, j.stopFeatures = nil, nil
	j.stats.Layers++
}

// finish releases the tile sequences and posts the completion callback.
func (j *job) finish(res Result) {
	if j.stopFeatures != nil {
		j.stopFeatures()
		j.nextFeature, j.stopFeatures = nil, nil
	}
	if j.stopLayers != nil {
		j.stopLayers()
	}
	res.Stats = j.stats
	if !j.handle.finish(res) {
		return
	}
	tracer().Infof("render job finished: %s", res)
	j.sched.Post(func() {
		defer close(j.handle.done)
		if j.callback != nil {
			j.callback(res)
		}
	})
}

// fatal is true for errors which end the tile: fatal decode errors and
// errors other than decode errors.
func fatal(err error) bool {
	var derr *tile.DecodeError
	if errors.As(err, &derr) {
		return derr.Fatal
	}
	return true
}
