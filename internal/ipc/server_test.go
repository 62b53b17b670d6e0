package ipc

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirroir/internal/logging"
)

// blockingHandler replies to "ping" immediately and blocks on "block"
// until released is closed, so a test can hold a session open while it
// probes whether a second client is served concurrently.
type blockingHandler struct {
	released chan struct{}
}

func (h *blockingHandler) HandleCommand(ctx context.Context, cmd *Command) *Response {
	if cmd.Action == "block" {
		<-h.released
	}
	return Success()
}

func newTestServer(t *testing.T, cfg ServerConfig, handler Handler) *Server {
	t.Helper()
	if cfg.SocketPath == "" {
		cfg.SocketPath = filepath.Join(t.TempDir(), "mirroird.sock")
	}
	s := NewServer(cfg, handler, logging.Default())
	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestSingleClientSerialization(t *testing.T) {
	handler := &blockingHandler{released: make(chan struct{})}
	s := newTestServer(t, ServerConfig{RecvTimeout: time.Second, IdleMaxTimeouts: 100}, handler)

	conn1, err := net.Dial("unix", s.SocketPath())
	require.NoError(t, err)
	defer conn1.Close()

	_, err = conn1.Write([]byte(`{"action":"block"}` + "\n"))
	require.NoError(t, err)

	// conn1's session is now blocked inside the handler. A second client
	// can connect at the kernel level (the backlog holds it), but the
	// accept loop will not service it until handleSession for conn1
	// returns, so no response arrives yet.
	conn2, err := net.Dial("unix", s.SocketPath())
	require.NoError(t, err)
	defer conn2.Close()

	_, err = conn2.Write([]byte(`{"action":"ping"}` + "\n"))
	require.NoError(t, err)

	conn2.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	reader2 := bufio.NewReader(conn2)
	_, err = reader2.ReadString('\n')
	assert.Error(t, err, "second client must not be served while the first session is open")

	// Ending conn1's session (closing the connection) lets the accept
	// loop pick up conn2.
	close(handler.released)
	conn1.Close()

	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	line2, err := reader2.ReadString('\n')
	require.NoError(t, err, "second client must be served once the first session ends")
	assert.Contains(t, line2, `"ok":true`)
}

func TestIdleClientDroppedAfterMaxTimeouts(t *testing.T) {
	handler := &blockingHandler{released: make(chan struct{})}
	close(handler.released)
	s := newTestServer(t, ServerConfig{RecvTimeout: 30 * time.Millisecond, IdleMaxTimeouts: 2}, handler)

	conn, err := net.Dial("unix", s.SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err, "an idle client must be dropped after idle_max_timeouts * recv_timeout_sec")
}

func TestOversizedLineIsRejectedWithoutClosingSession(t *testing.T) {
	handler := &blockingHandler{released: make(chan struct{})}
	close(handler.released)
	s := newTestServer(t, ServerConfig{RecvTimeout: time.Second, IdleMaxTimeouts: 100}, handler)

	conn, err := net.Dial("unix", s.SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	oversized := make([]byte, MaxLineSize+1024)
	for i := range oversized {
		oversized[i] = 'a'
	}
	oversized = append(oversized, '\n')
	_, err = conn.Write(oversized)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"ok":false`)
	assert.Contains(t, line, "exceeds maximum size")

	// The session must still be usable afterward: the stream was
	// resynchronized at the newline, not abandoned.
	_, err = conn.Write([]byte(`{"action":"ping"}` + "\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"ok":true`)
}
