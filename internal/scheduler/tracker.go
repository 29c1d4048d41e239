package scheduler

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
)

// ResultHook is called inside the RecordResult critical section each time a
// task finishes. Its errors and panics are logged and otherwise ignored.
type ResultHook func(ctx context.Context, taskID string) error

// Option configures a Tracker.
type Option func(*Tracker)

// WithResultHook registers a progress hook.
func WithResultHook(h ResultHook) Option {
	return func(t *Tracker) {
		t.hook = h
	}
}

// Tracker is the shared readiness state of one job execution.
type Tracker struct {
	plan *job.Plan
	hook ResultHook

	mu      sync.Mutex
	cond    *sync.Cond
	pending []string
	results map[string]any
	errs    []error
}

// New creates a tracker with every task of plan pending.
func New(plan *job.Plan, opts ...Option) *Tracker {
	t := &Tracker{
		plan:    plan,
		pending: plan.Order(),
		results: make(map[string]any, plan.Len()),
	}
	t.cond = sync.NewCond(&t.mu)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Next removes and returns the first ready pending task. It blocks while
// tasks are pending but none is ready. The second result is false once
// nothing is pending or an error has been recorded.
func (t *Tracker) Next(ctx context.Context) (string, bool) {
	stop := context.AfterFunc(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.cond.Broadcast()
	})
	defer stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.pending) > 0 {
		if err := ctx.Err(); err != nil && len(t.errs) == 0 {
			t.errs = append(t.errs, err)
		}
		if len(t.errs) > 0 {
			return "", false
		}
		for i, id := range t.pending {
			if t.plan.Ready(id, t.hasResult) {
				t.pending = slices.Delete(t.pending, i, i+1)
				return id, true
			}
		}
		t.cond.Wait()
	}
	return "", false
}

// hasResult must be called with mu held.
func (t *Tracker) hasResult(id string) bool {
	_, ok := t.results[id]
	return ok
}

// RecordResult stores the output of a finished task and wakes all waiters.
func (t *Tracker) RecordResult(ctx context.Context, id string, v any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.results[id] = v
	if t.hook != nil {
		t.runHook(ctx, id)
	}
	t.cond.Broadcast()
}

func (t *Tracker) runHook(ctx context.Context, id string) {
	logger := ctxlog.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Task finished hook panicked.", "task", id, "panic", fmt.Sprint(r))
		}
	}()
	if err := t.hook(ctx, id); err != nil {
		logger.Warn("Task finished hook failed.", "task", id, "error", err)
	}
}

// RecordError stores a failure and wakes all waiters so they can abort.
func (t *Tracker) RecordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errs = append(t.errs, err)
	t.cond.Broadcast()
}

// Result returns the output of task id if it has finished.
func (t *Tracker) Result(id string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.results[id]
	return v, ok
}

// Err returns the first recorded error, or nil.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.errs) == 0 {
		return nil
	}
	return t.errs[0]
}

// Results returns a copy of every recorded result.
func (t *Tracker) Results() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()

	return maps.Clone(t.results)
}

// Pending returns the number of tasks not yet handed out.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.pending)
}
