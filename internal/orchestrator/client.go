// Package orchestrator exposes the high-level capability surface (tap,
// swipe, drag, type, press_key, long_press, double_tap, launch_app,
// status) to the hosting program, mapping window-relative coordinates,
// enforcing the permission policy, and brokering requests to the daemon
// over its socket.
package orchestrator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"mirroir/internal/ipc"
)

func encodeLine(cmd *ipc.Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeResponse(line []byte, resp *ipc.Response) error {
	if err := json.Unmarshal(line, resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ClientConfig configures the daemon connection.
type ClientConfig struct {
	SocketPath     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults for socketPath.
func DefaultClientConfig(socketPath string) ClientConfig {
	return ClientConfig{
		SocketPath:     socketPath,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// DaemonClient maintains one stream connection to the daemon. On send or
// receive failure it closes the connection, reopens it, and retries the
// current request exactly once.
type DaemonClient struct {
	cfg  ClientConfig
	mu   sync.Mutex
	conn net.Conn
}

// NewDaemonClient creates a DaemonClient. The connection is opened lazily
// on the first Do call.
func NewDaemonClient(cfg ClientConfig) *DaemonClient {
	return &DaemonClient{cfg: cfg}
}

// Do sends cmd and returns the decoded response, retrying exactly once on
// a transport failure.
func (c *DaemonClient) Do(cmd *ipc.Command) (*ipc.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.doOnce(cmd)
	if err == nil {
		return resp, nil
	}

	c.closeLocked()
	return c.doOnce(cmd)
}

func (c *DaemonClient) doOnce(cmd *ipc.Command) (*ipc.Response, error) {
	if c.conn == nil {
		conn, err := net.DialTimeout("unix", c.cfg.SocketPath, c.cfg.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("connect to daemon: %w", err)
		}
		c.conn = conn
	}

	line, err := encodeLine(cmd)
	if err != nil {
		return nil, err
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.RequestTimeout))
	if _, err := c.conn.Write(line); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("send request: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.cfg.RequestTimeout))
	reader := bufio.NewReaderSize(c.conn, ipc.MaxLineSize)
	respLine, err := reader.ReadBytes('\n')
	if err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("receive response: %w", err)
	}

	var resp ipc.Response
	if err := decodeResponse(respLine, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *DaemonClient) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close closes the underlying connection, if any.
func (c *DaemonClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
