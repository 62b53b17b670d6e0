package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mirroir/internal/logging"
)

// errLineTooLong is returned by readBoundedLine when a peer sends more
// than MaxLineSize bytes without a newline.
var errLineTooLong = errors.New("ipc: line exceeds maximum size")

// readBoundedLine reads one newline-terminated line from r, whose buffer
// was sized to MaxLineSize at construction. bufio.Reader.ReadBytes grows
// its own accumulation unboundedly across fills looking for the
// delimiter; ReadSlice instead reports bufio.ErrBufferFull the moment its
// fixed-size buffer fills without finding one, so the cap is enforced
// during accumulation rather than only after an oversized read already
// completed. On ErrBufferFull the buffered data is discarded, and the
// loop keeps consuming (without retaining) further reads until a
// newline resynchronizes the stream, per spec.md's "discard the buffer
// if it grows past a maximum (64 KB) without a newline".
func readBoundedLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err == nil {
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, errLineTooLong
	}
	return nil, err
}

// Handler dispatches a decoded Command and produces a Response. Exactly
// one Command is in flight at a time, daemon-wide — see Server for how
// that invariant is enforced.
type Handler interface {
	HandleCommand(ctx context.Context, cmd *Command) *Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd *Command) *Response

func (f HandlerFunc) HandleCommand(ctx context.Context, cmd *Command) *Response { return f(ctx, cmd) }

// DaemonSession is the per-accepted-connection state: a session id, peer
// uid, and an idle-timeout counter.
type DaemonSession struct {
	ID           string
	PeerUID      int
	idleTimeouts int
}

// ServerConfig configures the daemon socket server.
type ServerConfig struct {
	SocketPath      string
	RecvTimeout     time.Duration
	IdleMaxTimeouts int
}

// Server is the daemon's accept loop. It processes exactly one client
// session at a time by construction: acceptLoop only calls Accept again
// after the previous session's handleSession returns, so a second
// connecting client blocks in the kernel's listen backlog until the first
// session ends.
type Server struct {
	cfg     ServerConfig
	handler Handler
	log     *logging.Logger

	listener *net.UnixListener
	running  atomic.Bool
	done     chan struct{}
}

// NewServer creates a daemon socket server.
func NewServer(cfg ServerConfig, handler Handler, log *logging.Logger) *Server {
	return &Server{cfg: cfg, handler: handler, log: log, done: make(chan struct{})}
}

// Start performs the socket setup sequence: unlink any
// stale socket, bind, resolve the console user and set ownership/mode
// accordingly (0000 when unresolvable, so no action is permitted until
// someone logs in), then begin accepting.
//
// Go's net package does not expose a way to request a specific listen
// backlog; the kernel default is used. This does not affect the
// single-client invariant, which is enforced by serial Accept calls, not
// by backlog size.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.SocketPath), 0755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if IsSocketListening(s.cfg.SocketPath) {
		return fmt.Errorf("another daemon is already listening on %s", s.cfg.SocketPath)
	}
	if err := CleanupSocket(s.cfg.SocketPath); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("resolve socket address: %w", err)
	}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	s.listener = listener

	if err := s.applySocketOwnership(); err != nil {
		listener.Close()
		return fmt.Errorf("set socket ownership: %w", err)
	}

	s.running.Store(true)
	go s.acceptLoop()
	return nil
}

func (s *Server) applySocketOwnership() error {
	uid, ok := ConsoleUID()
	if !ok {
		s.log.Warn("no console user resolvable at startup, locking socket")
		return SetSocketPermissions(s.cfg.SocketPath, 0000)
	}
	if err := os.Chown(s.cfg.SocketPath, uid, -1); err != nil {
		return err
	}
	return SetSocketPermissions(s.cfg.SocketPath, 0600)
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.done)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	os.Remove(s.cfg.SocketPath)
	return err
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string { return s.cfg.SocketPath }

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.log.Warn("accept failed", "error", err)
				continue
			}
		}
		s.handleSession(conn)
	}
}

// handleSession runs the per-client loop for exactly one connection, to
// completion, before acceptLoop calls Accept again.
func (s *Server) handleSession(conn *net.UnixConn) {
	defer conn.Close()

	consoleUID, _ := ConsoleUID()
	allowed, peerUID, err := VerifyPeerIsAllowed(conn, consoleUID)
	if err != nil {
		s.log.Warn("peer credential check failed", "error", err)
		return
	}
	if !allowed {
		s.log.Warn("rejected peer", "peer_uid", peerUID, "console_uid", consoleUID)
		return
	}

	session := &DaemonSession{ID: uuid.NewString(), PeerUID: peerUID}
	s.log.Info("client connected", "session_id", session.ID, "peer_uid", peerUID)
	defer s.log.Info("client disconnected", "session_id", session.ID)

	recvTimeout := s.cfg.RecvTimeout
	if recvTimeout <= 0 {
		recvTimeout = 5 * time.Second
	}
	idleMax := s.cfg.IdleMaxTimeouts
	if idleMax <= 0 {
		idleMax = 4
	}

	reader := bufio.NewReaderSize(conn, MaxLineSize)

	for {
		conn.SetReadDeadline(time.Now().Add(recvTimeout))
		line, err := readBoundedLine(reader)

		if err != nil {
			if errors.Is(err, errLineTooLong) {
				session.idleTimeouts = 0
				s.writeResponse(conn, Failure(errLineTooLong))
				continue
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				session.idleTimeouts++
				if session.idleTimeouts >= idleMax {
					s.log.Info("dropping idle client", "session_id", session.ID)
					return
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			s.log.Info("session read error, closing", "session_id", session.ID, "error", err)
			return
		}
		session.idleTimeouts = 0

		cmd, err := DecodeCommand(line)
		if err != nil {
			s.writeResponse(conn, Failure(err))
			continue
		}

		resp := s.handler.HandleCommand(context.Background(), cmd)

		conn.SetWriteDeadline(time.Now().Add(recvTimeout))
		if err := s.writeResponse(conn, resp); err != nil {
			s.log.Info("session write error, closing", "session_id", session.ID, "error", err)
			return
		}
	}
}

func (s *Server) writeResponse(conn *net.UnixConn, resp *Response) error {
	data, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	_, err = conn.Write(data)
	return err
}
