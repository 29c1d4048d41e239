package coordinator

import (
	"sync"

	"github.com/vk/jobgraph/internal/transport"
)

// WorkerRef is the coordinator's view of one registered worker.
type WorkerRef struct {
	name     string
	capacity int
	handle   transport.Handle

	mu       sync.Mutex
	inFlight int
}

func newWorkerRef(name string, capacity int, h transport.Handle) *WorkerRef {
	return &WorkerRef{name: name, capacity: capacity, handle: h}
}

// Name returns the worker name.
func (w *WorkerRef) Name() string { return w.name }

// Capacity returns the number of slots.
func (w *WorkerRef) Capacity() int { return w.capacity }

// InFlight returns the number of reserved slots.
func (w *WorkerRef) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

func (w *WorkerRef) ratio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return float64(w.inFlight) / float64(w.capacity)
}

func (w *WorkerRef) hasFreeSlot() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight < w.capacity
}

func (w *WorkerRef) acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight++
}

func (w *WorkerRef) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight--
}

// WorkerStatus is a point-in-time snapshot of a WorkerRef.
type WorkerStatus struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	InFlight int    `json:"in_flight"`
}
