package transport

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// LocalDirectory is an in-process Directory. It maps worker names to handles
// living in the same process, mostly for tests and single-binary setups.
type LocalDirectory struct {
	handles *xsync.MapOf[string, Handle]
}

// NewLocalDirectory creates an empty directory.
func NewLocalDirectory() *LocalDirectory {
	return &LocalDirectory{handles: xsync.NewMapOf[string, Handle]()}
}

// Bind publishes h under name, replacing any previous handle.
func (d *LocalDirectory) Bind(name string, h Handle) {
	d.handles.Store(name, h)
}

// Unbind removes name.
func (d *LocalDirectory) Unbind(name string) {
	d.handles.Delete(name)
}

// Lookup implements Directory.
func (d *LocalDirectory) Lookup(name string) (Handle, error) {
	h, ok := d.handles.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorker, name)
	}
	return h, nil
}

// Switchable wraps a Handle so a test can cut the connection to it.
type Switchable struct {
	name string
	next Handle
	down atomic.Bool
}

// NewSwitchable wraps next under the worker name.
func NewSwitchable(name string, next Handle) *Switchable {
	return &Switchable{name: name, next: next}
}

// Disconnect makes every later call fail with a ConnectionError.
func (s *Switchable) Disconnect() {
	s.down.Store(true)
}

// ExecuteTask implements Handle.
func (s *Switchable) ExecuteTask(ctx context.Context, req Request) (any, error) {
	if s.down.Load() {
		return nil, &ConnectionError{Worker: s.name}
	}
	return s.next.ExecuteTask(ctx, req)
}
