package render

import (
	"context"
	"sync"
)

// Scheduler runs render steps. Post must not run step synchronously.
type Scheduler interface {
	Post(step func())
}

// GoScheduler runs every step on a goroutine of its own. Steps of one job
// never overlap, as a job posts its next step at the end of the current one.
type GoScheduler struct{}

// Post starts a goroutine for step.
func (GoScheduler) Post(step func()) {
	go step()
}

// Loop is a cooperative scheduler for hosts with an event loop of their
// own. Posted steps are queued in FIFO order and run by the host, either
// tick by tick with RunPending or continuously with Run.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues a step. Post is safe for concurrent use.
func (l *Loop) Post(step func()) {
	l.mu.Lock()
	l.queue = append(l.queue, step)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued steps.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunPending runs the steps queued at the time of the call, but not steps
// they post. It returns the number of steps run.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	steps := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, step := range steps {
		step()
	}
	return len(steps)
}

// Run runs steps as they are posted until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.RunPending() > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
