// Package session owns one connection to the sdwdate-gui server: it performs
// the handshake, frames incoming bytes into commands, and forwards local
// status changes as reports until the connection ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whonix/sdwdate-gui/internal/fsm"
	"github.com/whonix/sdwdate-gui/internal/ipc"
	"github.com/whonix/sdwdate-gui/internal/rpc"
)

// Reason describes why a Session ended.
type Reason string

const (
	ReasonConnectFailed   Reason = "connect_failed"
	ReasonHandshakeFailed Reason = "handshake_failed"
	ReasonPeerClosed      Reason = "peer_closed"
	ReasonKicked          Reason = "kicked"
	ReasonLocal           Reason = "local"
)

const readChunkSize = 4096

// Result is the lifecycle summary returned by one Run invocation.
type Result struct {
	ID               string
	State            fsm.State
	Reason           Reason
	Err              error
	Handshake        HandshakeStrategy
	FramesDispatched int
	ReportsSent      int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// StatusSource produces the reports a Session forwards to the server.
type StatusSource interface {
	// Snapshot returns the current state, sent once the Session is active.
	Snapshot() []rpc.Report
	// Subscribe delivers one report per status change observed after the
	// call, until the returned cancel func runs.
	Subscribe() (<-chan rpc.Report, func())
}

// Config controls connection setup for one Session.
type Config struct {
	SocketPath        string
	PollInterval      time.Duration
	SocketWaitTimeout time.Duration
	ConnectTimeout    time.Duration
	WriteTimeout      time.Duration
	MaxFrameSize      int
	Handshake         HandshakeStrategy
	// ClientName resolves the name announced during a self-identify handshake.
	ClientName func(context.Context) string
}

// Session is a single connection lifetime. It is not reusable; the
// reconnection controller builds a fresh one for every attempt.
type Session struct {
	id         string
	cfg        Config
	logger     *slog.Logger
	dispatcher *rpc.Dispatcher
	source     StatusSource

	mu    sync.RWMutex
	state fsm.State

	conn   net.Conn
	buf    *ipc.Buffer
	result Result

	done     chan struct{}
	doneOnce sync.Once
}

// New constructs an idle Session.
func New(cfg Config, dispatcher *rpc.Dispatcher, source StatusSource, logger *slog.Logger) *Session {
	if dispatcher == nil {
		dispatcher = rpc.NewDispatcher(nil, nil, logger)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()
	return &Session{
		id:         id,
		cfg:        cfg,
		logger:     logger.With("session", id),
		dispatcher: dispatcher,
		source:     source,
		state:      fsm.StateIdle,
		buf:        ipc.NewBuffer(cfg.MaxFrameSize),
		done:       make(chan struct{}),
	}
}

// ID returns the identifier attached to this Session's log lines.
func (s *Session) ID() string {
	return s.id
}

// State returns the current FSM state snapshot.
func (s *Session) State() fsm.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Done is closed exactly once, when the Session has released its socket.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// transition applies one FSM event to the session state.
func (s *Session) transition(event fsm.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fsm.Transition(s.state, event)
	if err != nil {
		s.logger.Debug("ignored state transition", "error", err.Error())
		return
	}
	s.state = next
}

// Run connects, serves the connection, and returns once it has ended.
// It must be called at most once.
func (s *Session) Run(ctx context.Context) Result {
	s.result = Result{ID: s.id, Handshake: s.cfg.Handshake, StartedAt: time.Now()}
	defer s.finish()

	s.transition(fsm.EventStart)
	if err := ipc.WaitForSocket(ctx, s.cfg.SocketPath, s.cfg.PollInterval, s.cfg.SocketWaitTimeout); err != nil {
		return s.fail(ctx, err)
	}

	s.transition(fsm.EventDial)
	conn, err := ipc.Dial(ctx, s.cfg.SocketPath, s.cfg.ConnectTimeout)
	if err != nil {
		s.logger.Error("could not connect to sdwdate-gui server",
			"socket", s.cfg.SocketPath,
			"failure", ipc.DialFailure(err),
			"error", err.Error(),
		)
		return s.fail(ctx, err)
	}
	s.conn = conn
	s.transition(fsm.EventEstablished)
	s.logger.Info("connected to sdwdate-gui server", "socket", s.cfg.SocketPath, "handshake", s.cfg.Handshake.String())

	if s.cfg.Handshake == HandshakeSelfIdentify {
		if err := s.handshake(ctx); err != nil {
			s.logger.Error("handshake failed", "error", err.Error())
			return s.disconnect(ReasonHandshakeFailed, err)
		}
	}

	s.transition(fsm.EventActivate)
	return s.serve(ctx)
}

// handshake sends the start-of-stream marker followed by the client name.
func (s *Session) handshake(ctx context.Context) error {
	if err := s.write([]byte{0}); err != nil {
		return fmt.Errorf("send stream marker: %w", err)
	}

	name := ""
	if s.cfg.ClientName != nil {
		name = s.cfg.ClientName(ctx)
	}
	if err := s.Report(rpc.SetClientName{Name: name}); err != nil {
		return fmt.Errorf("send client name: %w", err)
	}
	s.transition(fsm.EventHandshake)
	return nil
}

// serve runs the event loop of an active Session. Frames, status updates and
// local cancellation are all handled on this goroutine, in arrival order.
func (s *Session) serve(ctx context.Context) Result {
	incoming := make(chan []byte)
	readErr := make(chan error, 1)
	go s.readLoop(incoming, readErr)

	// Subscribe before the snapshot so no change falls between the two.
	var updates <-chan rpc.Report
	if s.source != nil {
		var unsubscribe func()
		updates, unsubscribe = s.source.Subscribe()
		defer unsubscribe()
		for _, r := range s.source.Snapshot() {
			s.forward(r)
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("disconnecting on local request")
			return s.disconnect(ReasonLocal, ctx.Err())
		case chunk := <-incoming:
			if err := s.buf.Feed(chunk, s.dispatch); err != nil {
				return s.kick(err)
			}
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				s.logger.Warn("server disconnected")
				return s.disconnect(ReasonPeerClosed, nil)
			}
			s.logger.Warn("server connection lost", "error", err.Error())
			return s.disconnect(ReasonPeerClosed, err)
		case r, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.forward(r)
		}
	}
}

// readLoop copies socket data to the event loop until the socket fails.
func (s *Session) readLoop(incoming chan<- []byte, readErr chan<- error) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case incoming <- chunk:
			case <-s.done:
				return
			}
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

func (s *Session) dispatch(frame []byte) error {
	if err := s.dispatcher.Dispatch(frame); err != nil {
		return err
	}
	s.result.FramesDispatched++
	return nil
}

// forward sends one status report; failures are logged and the report dropped.
func (s *Session) forward(r rpc.Report) {
	if err := s.Report(r); err != nil {
		s.logger.Warn("status report not sent", "error", err.Error())
	}
}

// Report frames r and writes it to the server. It is a no-op unless the
// socket is connected, and must only be called from the goroutine running Run.
func (s *Session) Report(r rpc.Report) error {
	if s.conn == nil || !fsm.Connected(s.State()) {
		return nil
	}

	payload, err := r.Payload()
	if err != nil {
		return err
	}
	s.setWriteDeadline()
	if err := ipc.WriteFrame(s.conn, payload); err != nil {
		return fmt.Errorf("report to server: %w", err)
	}
	s.result.ReportsSent++
	return nil
}

func (s *Session) setWriteDeadline() {
	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
}

func (s *Session) write(b []byte) error {
	s.setWriteDeadline()
	for len(b) > 0 {
		n, err := s.conn.Write(b)
		if err != nil {
			return fmt.Errorf("write to server: %w", err)
		}
		b = b[n:]
	}
	return nil
}

// kick severs the connection after a protocol violation by the server.
func (s *Session) kick(err error) Result {
	s.logger.Error("server sent invalid data; disconnecting", "error", err.Error())
	return s.disconnect(ReasonKicked, err)
}

func (s *Session) disconnect(reason Reason, err error) Result {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.transition(fsm.EventDisconnect)
	s.result.Reason = reason
	s.result.Err = err
	return s.snapshot()
}

func (s *Session) fail(ctx context.Context, err error) Result {
	s.transition(fsm.EventFail)
	s.result.Reason = ReasonConnectFailed
	if ctx.Err() != nil {
		s.result.Reason = ReasonLocal
	}
	s.result.Err = err
	return s.snapshot()
}

func (s *Session) snapshot() Result {
	s.result.State = s.State()
	s.result.FinishedAt = time.Now()
	return s.result
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}
