package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/worker"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultDialTimeout bounds the initial connection.
const DefaultDialTimeout = 15 * time.Second

// ErrDisconnected is returned when the coordinator connection drops.
var ErrDisconnected = errors.New("disconnected from coordinator")

// ErrJobFailed wraps the failure message of a submitted job.
var ErrJobFailed = errors.New("job failed")

// Client is the worker and submitter side of the transport.
type Client struct {
	io   *socket.Socket
	done chan struct{}

	submissions *xsync.MapOf[string, *submission]
}

// submission reports each finished task of one remote job exactly once,
// whether it learns of it from a notification or from the final result.
type submission struct {
	finished func(task string)
	result   chan jobResultMsg

	mu        sync.Mutex
	delivered map[string]struct{}
	closed    bool
}

func newSubmission(finished func(task string)) *submission {
	return &submission{
		finished:  finished,
		result:    make(chan jobResultMsg, 1),
		delivered: make(map[string]struct{}),
	}
}

func (s *submission) deliver(task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.finished == nil {
		return
	}
	if _, ok := s.delivered[task]; ok {
		return
	}
	s.delivered[task] = struct{}{}
	s.finished(task)
}

// close delivers the tasks that were reported only in the result, in
// order, and ignores every later notification.
func (s *submission) close(finished []string) {
	for _, task := range finished {
		s.deliver(task)
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Dial connects to the coordinator at rawURL, e.g. http://localhost:7070.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)

	c := &Client{
		io:          io,
		done:        make(chan struct{}),
		submissions: xsync.NewMapOf[string, *submission](),
	}

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to coordinator.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})
	io.Once(types.EventName("disconnect"), func(reason ...any) {
		logger.Info("Disconnected from coordinator.", "reason", fmt.Sprint(reason...))
		close(c.done)
	})
	io.On(types.EventName(eventJobTaskFinished), func(args ...any) {
		var msg finishedMsg
		if err := decode(args, &msg); err != nil {
			return
		}
		if sub, ok := c.submissions.Load(msg.ID); ok {
			sub.deliver(msg.Task)
		}
	})
	io.On(types.EventName(eventJobResult), func(args ...any) {
		var msg jobResultMsg
		if err := decode(args, &msg); err != nil {
			return
		}
		// Packets may be handled out of order, so the submission stays
		// registered until Submit has drained it.
		if sub, ok := c.submissions.Load(msg.ID); ok {
			select {
			case sub.result <- msg:
			default:
			}
		}
	})

	io.Connect()

	timer := time.NewTimer(DefaultDialTimeout)
	defer timer.Stop()
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", DefaultDialTimeout)
	}
}

// Close disconnects from the coordinator.
func (c *Client) Close() {
	c.io.Disconnect()
}

// Done is closed when the connection drops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ServeWorker registers as a worker and executes task requests until ctx
// ends or the connection drops. A capacity of zero lets the coordinator pick
// one. The name and capacity assigned by the coordinator are reported to
// onRegistered when it is not nil.
func (c *Client) ServeWorker(ctx context.Context, cat *job.Catalog, capacity int, onRegistered func(name string, capacity int), opts ...worker.Option) error {
	logger := ctxlog.FromContext(ctx)

	registered := make(chan registeredMsg, 1)
	ready := make(chan struct{})
	var w *worker.Worker

	c.io.Once(types.EventName(eventWorkerRegistered), func(args ...any) {
		var msg registeredMsg
		if err := decode(args, &msg); err != nil {
			msg.Error = err.Error()
		}
		registered <- msg
	})
	c.io.On(types.EventName(eventTaskExecute), func(args ...any) {
		var msg executeMsg
		if err := decode(args, &msg); err != nil {
			logger.Warn("Malformed task request.", "error", err)
			return
		}
		go func() {
			select {
			case <-ready:
			case <-ctx.Done():
				return
			}
			c.io.Emit(eventTaskResult, encode(c.execute(ctx, w, msg)))
		}()
	})

	c.io.Emit(eventWorkerRegister, encode(registerMsg{Capacity: capacity}))

	select {
	case msg := <-registered:
		if msg.Error != "" {
			return fmt.Errorf("worker registration failed: %s", msg.Error)
		}
		w = worker.New(msg.Name, cat, opts...)
		close(ready)
		logger.Info("Registered as worker.", "worker", msg.Name, "capacity", msg.Capacity)
		if onRegistered != nil {
			onRegistered(msg.Name, msg.Capacity)
		}
	case <-ctx.Done():
		return nil
	case <-c.done:
		return ErrDisconnected
	}

	select {
	case <-ctx.Done():
		return nil
	case <-c.done:
		return ErrDisconnected
	}
}

func (c *Client) execute(ctx context.Context, w *worker.Worker, msg executeMsg) resultMsg {
	reply := resultMsg{ID: msg.ID}
	v, err := w.ExecuteTask(ctx, msg.Request)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	b, err := json.Marshal(v)
	if err != nil {
		reply.Error = fmt.Sprintf("encode result: %v", err)
		return reply
	}
	reply.Value = b
	return reply
}

// Submit asks the coordinator to run the catalogued job name and waits for
// its results, encoded as JSON. onFinished, when not nil, is called once
// for each task that completed, before Submit returns.
func (c *Client) Submit(ctx context.Context, name string, mode coordinator.Mode, onFinished func(task string)) (map[string]json.RawMessage, error) {
	id := uuid.NewString()
	sub := newSubmission(onFinished)
	c.submissions.Store(id, sub)
	defer c.submissions.Delete(id)
	defer sub.close(nil)

	c.io.Emit(eventJobSubmit, encode(submitMsg{ID: id, Job: name, Mode: string(mode)}))

	select {
	case res := <-sub.result:
		sub.close(res.Finished)
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, res.Error)
		}
		return res.Results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrDisconnected
	}
}
