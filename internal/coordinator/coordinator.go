package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/transport"
)

// DefaultSeed seeds the capacity generator so fleets are reproducible.
const DefaultSeed int64 = 21_42_84

// DefaultMaxCapacity bounds randomly assigned worker capacities.
const DefaultMaxCapacity = 2

var (
	// ErrNoWorkers is returned when no worker is registered, including when
	// the last one is lost while a task waits for a slot.
	ErrNoWorkers = errors.New("no workers available")
	// ErrDuplicateWorker is returned when a worker name is registered twice.
	ErrDuplicateWorker = errors.New("worker already registered")
	// ErrInvalidCapacity is returned for a capacity below one.
	ErrInvalidCapacity = errors.New("worker capacity must be at least 1")
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy sets the worker selection policy. The default is Equity.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

// WithSeed seeds the random capacity generator.
func WithSeed(seed int64) Option {
	return func(c *Coordinator) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithCatalog sets the catalog used to run jobs submitted by name.
func WithCatalog(cat *job.Catalog) Option {
	return func(c *Coordinator) {
		c.catalog = cat
	}
}

// WithMaxCapacity bounds RandomWorkerCapacity to [1, n].
func WithMaxCapacity(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxCapacity = n
		}
	}
}

// Coordinator tracks registered workers and dispatches tasks to them.
type Coordinator struct {
	dir         transport.Directory
	catalog     *job.Catalog
	policy      Policy
	maxCapacity int

	mu      sync.Mutex
	cond    *sync.Cond
	workers []*WorkerRef

	rngMu    sync.Mutex
	rng      *rand.Rand
	nextName atomic.Int64
}

// New creates a coordinator resolving worker handles through dir.
func New(dir transport.Directory, opts ...Option) *Coordinator {
	c := &Coordinator{
		dir:         dir,
		catalog:     job.NewCatalog(),
		policy:      Equity,
		maxCapacity: DefaultMaxCapacity,
		rng:         rand.New(rand.NewSource(DefaultSeed)),
	}
	c.cond = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the jobs this coordinator can run by name.
func (c *Coordinator) Catalog() *job.Catalog {
	return c.catalog
}

// Policy returns the selection policy in use.
func (c *Coordinator) Policy() Policy {
	return c.policy
}

// UniqueWorkerName returns a name no other worker of this coordinator got.
func (c *Coordinator) UniqueWorkerName() string {
	return fmt.Sprintf("tracker-%d", c.nextName.Add(1)-1)
}

// RandomWorkerCapacity returns a capacity in [1, max capacity].
func (c *Coordinator) RandomWorkerCapacity() int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.Intn(c.maxCapacity) + 1
}

// RegisterWorker looks up the worker's handle and adds it with a random
// capacity, which is returned.
func (c *Coordinator) RegisterWorker(ctx context.Context, name string) (int, error) {
	capacity := c.RandomWorkerCapacity()
	if err := c.RegisterWorkerWithCapacity(ctx, name, capacity); err != nil {
		return 0, err
	}
	return capacity, nil
}

// RegisterWorkerWithCapacity adds a worker with a known capacity.
func (c *Coordinator) RegisterWorkerWithCapacity(ctx context.Context, name string, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	h, err := c.dir.Lookup(name)
	if err != nil {
		return fmt.Errorf("register worker %q: %w", name, err)
	}

	c.mu.Lock()
	if slices.ContainsFunc(c.workers, func(w *WorkerRef) bool { return w.name == name }) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateWorker, name)
	}
	c.workers = append(c.workers, newWorkerRef(name, capacity, h))
	c.cond.Broadcast()
	c.mu.Unlock()

	ctxlog.FromContext(ctx).Info("Worker registered.", "worker", name, "capacity", capacity)
	return nil
}

// Deregister removes the named worker. It reports whether it was present.
func (c *Coordinator) Deregister(ctx context.Context, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.workers, func(w *WorkerRef) bool { return w.name == name })
	if i < 0 {
		return false
	}
	c.workers = slices.Delete(c.workers, i, i+1)
	c.cond.Broadcast()
	ctxlog.FromContext(ctx).Info("Worker deregistered.", "worker", name)
	return true
}

// Workers returns a snapshot of every registered worker in registration order.
func (c *Coordinator) Workers() []WorkerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]WorkerStatus, len(c.workers))
	for i, w := range c.workers {
		out[i] = WorkerStatus{Name: w.name, Capacity: w.capacity, InFlight: w.InFlight()}
	}
	return out
}

// ExecuteOnFreeWorker runs req on a worker with a free slot, blocking until
// one is available. Workers that lose their connection are dropped and the
// request is retried on another one. A failure of the task itself is
// returned as a *transport.RemoteError.
func (c *Coordinator) ExecuteOnFreeWorker(ctx context.Context, req transport.Request) (any, error) {
	logger := ctxlog.FromContext(ctx).With("job", req.JobName, "task", req.TaskID)

	stop := context.AfterFunc(ctx, c.wake)
	defer stop()

	for {
		w, err := c.reserve(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("Dispatching task to worker.", "worker", w.name, "policy", c.policy)

		v, err := w.handle.ExecuteTask(ctx, req)
		switch {
		case err == nil:
			c.releaseSlot(w)
			return v, nil
		case errors.Is(err, transport.ErrConnection):
			logger.Warn("Worker lost, retrying task elsewhere.", "worker", w.name, "error", err)
			c.drop(w)
		default:
			c.releaseSlot(w)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var remote *transport.RemoteError
			if errors.As(err, &remote) {
				return nil, remote
			}
			return nil, &transport.RemoteError{Worker: w.name, Task: req.TaskID, Message: err.Error(), Err: err}
		}
	}
}

// reserve blocks until a worker is selected and its slot taken.
func (c *Coordinator) reserve(ctx context.Context) (*WorkerRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if len(c.workers) == 0 {
			return nil, ErrNoWorkers
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if w := c.policy.pick(c.workers); w != nil {
			w.acquire()
			return w, nil
		}
		c.cond.Wait()
	}
}

func (c *Coordinator) releaseSlot(w *WorkerRef) {
	w.release()
	c.wake()
}

// drop removes a lost worker without releasing its slot.
func (c *Coordinator) drop(w *WorkerRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.workers = slices.DeleteFunc(c.workers, func(x *WorkerRef) bool { return x == w })
	c.cond.Broadcast()
}

func (c *Coordinator) wake() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cond.Broadcast()
}
