package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/executor"
	"github.com/vk/jobgraph/internal/transport"
	"github.com/zishang520/socket.io/v2/socket"
)

// Path is where the socket.io endpoint is mounted.
const Path = "/socket.io/"

var errClosed = errors.New("socket closed")

// Server is the coordinator side of the transport. It is the coordinator's
// transport.Directory: every registered worker socket is reachable by name.
type Server struct {
	ctx   context.Context
	io    *socket.Server
	coord *coordinator.Coordinator

	workers *xsync.MapOf[string, *workerConn]
}

var _ transport.Directory = (*Server)(nil)

// NewServer creates a socket.io server. ctx carries the logger and bounds
// every job submitted through the server. Attach must be called before the
// handler serves traffic.
func NewServer(ctx context.Context) *Server {
	s := &Server{
		ctx:     ctx,
		io:      socket.NewServer(nil, nil),
		workers: xsync.NewMapOf[string, *workerConn](),
	}
	s.io.On("connection", func(clients ...any) {
		if len(clients) == 0 {
			return
		}
		if sock, ok := clients[0].(*socket.Socket); ok {
			s.accept(sock)
		}
	})
	return s
}

// Attach binds the coordinator that receives registrations and submissions.
func (s *Server) Attach(c *coordinator.Coordinator) {
	s.coord = c
}

// Handler returns the socket.io endpoint, to be mounted at Path.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Lookup implements transport.Directory.
func (s *Server) Lookup(name string) (transport.Handle, error) {
	conn, ok := s.workers.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", transport.ErrUnknownWorker, name)
	}
	return conn, nil
}

// Close disconnects every socket.
func (s *Server) Close() {
	s.workers.Range(func(_ string, conn *workerConn) bool {
		conn.close(errClosed)
		return true
	})
	s.io.Close(nil)
}

// accept wires the events of one client socket. The same socket may act as a
// worker, a submitter, or both.
func (s *Server) accept(sock *socket.Socket) {
	ctx, cancel := context.WithCancel(s.ctx)
	logger := ctxlog.FromContext(ctx).With("sid", string(sock.Id()))
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Socket connected.")

	var (
		mu   sync.Mutex
		conn *workerConn
	)

	sock.On(eventWorkerRegister, func(args ...any) {
		var msg registerMsg
		if err := decode(args, &msg); err != nil {
			logger.Warn("Malformed worker registration.", "error", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if conn != nil {
			logger.Warn("Socket registered twice, ignoring.", "worker", conn.name)
			return
		}
		conn = s.register(ctx, sock, msg)
	})

	sock.On(eventTaskResult, func(args ...any) {
		var msg resultMsg
		if err := decode(args, &msg); err != nil {
			logger.Warn("Malformed task result.", "error", err)
			return
		}
		mu.Lock()
		c := conn
		mu.Unlock()
		if c != nil {
			c.deliver(msg)
		}
	})

	sock.On(eventJobSubmit, func(args ...any) {
		var msg submitMsg
		if err := decode(args, &msg); err != nil {
			logger.Warn("Malformed job submission.", "error", err)
			return
		}
		go s.submit(ctx, sock, msg)
	})

	sock.On("disconnect", func(reason ...any) {
		logger.Info("Socket disconnected.", "reason", fmt.Sprint(reason...))
		cancel()
		mu.Lock()
		c := conn
		mu.Unlock()
		if c == nil {
			return
		}
		c.close(errClosed)
		s.workers.Delete(c.name)
		s.coord.Deregister(ctx, c.name)
	})
}

func (s *Server) register(ctx context.Context, sock *socket.Socket, msg registerMsg) *workerConn {
	name := s.coord.UniqueWorkerName()
	capacity := msg.Capacity
	if capacity <= 0 {
		capacity = s.coord.RandomWorkerCapacity()
	}
	conn := newWorkerConn(name, sock)
	s.workers.Store(name, conn)

	// The worker learns its name before the coordinator may dispatch to it.
	sock.Emit(eventWorkerRegistered, encode(registeredMsg{Name: name, Capacity: capacity}))
	if err := s.coord.RegisterWorkerWithCapacity(ctx, name, capacity); err != nil {
		ctxlog.FromContext(ctx).Error("Worker registration failed.", "worker", name, "error", err)
		s.workers.Delete(name)
		sock.Emit(eventWorkerRegistered, encode(registeredMsg{Name: name, Error: err.Error()}))
		return nil
	}
	return conn
}

func (s *Server) submit(ctx context.Context, sock *socket.Socket, msg submitMsg) {
	logger := ctxlog.FromContext(ctx).With("submission", msg.ID, "job", msg.Job)
	reply := jobResultMsg{ID: msg.ID}

	mode, err := coordinator.ParseMode(msg.Mode)
	if err != nil {
		reply.Error = err.Error()
		sock.Emit(eventJobResult, encode(reply))
		return
	}

	var finishedMu sync.Mutex
	notifier := executor.NotifierFunc(func(_ context.Context, taskID string) error {
		finishedMu.Lock()
		reply.Finished = append(reply.Finished, taskID)
		finishedMu.Unlock()
		sock.Emit(eventJobTaskFinished, encode(finishedMsg{ID: msg.ID, Task: taskID}))
		return nil
	})

	logger.Info("Job submitted.", "mode", mode)
	results, err := s.coord.Submit(ctx, msg.Job, mode, notifier)
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.Results = make(map[string]json.RawMessage, len(results))
		for id, v := range results {
			b, err := json.Marshal(v)
			if err != nil {
				reply.Results = nil
				reply.Error = fmt.Sprintf("encode result of %q: %v", id, err)
				break
			}
			reply.Results[id] = b
		}
	}
	finishedMu.Lock()
	sock.Emit(eventJobResult, encode(reply))
	finishedMu.Unlock()
	logger.Info("Job result delivered.", "failed", reply.Error != "")
}

// workerConn is the transport.Handle of one registered worker socket.
type workerConn struct {
	name    string
	sock    *socket.Socket
	pending *xsync.MapOf[string, chan resultMsg]

	once   sync.Once
	done   chan struct{}
	reason error
}

func newWorkerConn(name string, sock *socket.Socket) *workerConn {
	return &workerConn{
		name:    name,
		sock:    sock,
		pending: xsync.NewMapOf[string, chan resultMsg](),
		done:    make(chan struct{}),
	}
}

// ExecuteTask implements transport.Handle.
func (w *workerConn) ExecuteTask(ctx context.Context, req transport.Request) (any, error) {
	select {
	case <-w.done:
		return nil, &transport.ConnectionError{Worker: w.name, Err: w.reason}
	default:
	}

	id := uuid.NewString()
	ch := make(chan resultMsg, 1)
	w.pending.Store(id, ch)
	defer w.pending.Delete(id)

	payload, err := encodeRequest(executeMsg{ID: id, Request: req})
	if err != nil {
		return nil, err
	}
	w.sock.Emit(eventTaskExecute, payload)

	select {
	case res := <-ch:
		if res.Error != "" {
			return nil, &transport.RemoteError{Worker: w.name, Task: req.TaskID, Message: res.Error}
		}
		if len(res.Value) == 0 {
			return nil, nil
		}
		return res.Value, nil
	case <-w.done:
		return nil, &transport.ConnectionError{Worker: w.name, Err: w.reason}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *workerConn) deliver(msg resultMsg) {
	if ch, ok := w.pending.LoadAndDelete(msg.ID); ok {
		ch <- msg
	}
}

// close fails every pending and future call.
func (w *workerConn) close(reason error) {
	w.once.Do(func() {
		w.reason = reason
		close(w.done)
	})
}
