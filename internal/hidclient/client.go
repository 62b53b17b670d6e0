// Package hidclient owns the single connection to the system's
// virtual-HID service: discovery of its control socket, the heartbeat and
// liveness timers that keep the connection alive and detect its death, and
// the binary request/response framing used to initialize and drive the
// virtual keyboard and pointing device.
package hidclient

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mirroir/internal/logging"
	"mirroir/internal/mirrorerr"
)

// ConnectionState is the lifecycle state of the client's connection to the
// virtual-HID service.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateReadyKeyboardOnly
	StateReadyPointingOnly
	StateReadyBoth
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReadyKeyboardOnly:
		return "ready-keyboard-only"
	case StateReadyPointingOnly:
		return "ready-pointing-only"
	case StateReadyBoth:
		return "ready-both"
	default:
		return "unknown"
	}
}

// socketGlobPattern is the filename pattern matched when enumerating the
// service's root-only directory for a server socket to connect to.
const socketGlobPattern = "*.sock"

const (
	heartbeatInterval = 3 * time.Second
	livenessInterval  = 3 * time.Second
	readinessTimeout  = 10 * time.Second
)

// Diagnostics is the informational, non-normative status the loopback
// /status endpoint (internal/statushttp) surfaces alongside the
// keyboard_ready/pointing_ready booleans.
type Diagnostics struct {
	State                  string
	LastHeartbeatSentAt    time.Time
	LastLivenessCheckAt    time.Time
	ConsecutiveSendErrors  int
}

// Client owns the single connection to the virtual-HID service.
type Client struct {
	serviceDir string
	log        *logging.Logger

	mu         sync.Mutex
	conn       *net.UnixConn
	serverPath string
	clientPath string
	state      atomic.Int32 // ConnectionState

	keyboardReady atomic.Bool
	pointingReady atomic.Bool

	stopHeartbeat chan struct{}
	stopLiveness  chan struct{}
	wg            sync.WaitGroup

	sendMu sync.Mutex // serializes heartbeats against input reports

	diagMu                sync.Mutex
	lastHeartbeatSentAt    time.Time
	lastLivenessCheckAt    time.Time
	consecutiveSendErrors  int
}

// New creates a client that will discover the service's control sockets
// under serviceDir.
func New(serviceDir string, log *logging.Logger) *Client {
	c := &Client{serviceDir: serviceDir, log: log}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// KeyboardReady reports whether the service has acknowledged keyboard init.
func (c *Client) KeyboardReady() bool { return c.keyboardReady.Load() }

// PointingReady reports whether the service has acknowledged pointing init.
func (c *Client) PointingReady() bool { return c.pointingReady.Load() }

// Doctor returns a diagnostic snapshot for the loopback /status endpoint.
func (c *Client) Doctor() Diagnostics {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return Diagnostics{
		State:                 c.State().String(),
		LastHeartbeatSentAt:   c.lastHeartbeatSentAt,
		LastLivenessCheckAt:   c.lastLivenessCheckAt,
		ConsecutiveSendErrors: c.consecutiveSendErrors,
	}
}

// Connect discovers the service's server socket, binds a timestamped
// client-side datagram socket, connects it, and starts the heartbeat and
// liveness timers. It then sends init requests for both devices and polls
// for readiness up to readinessTimeout before returning — degraded state
// is not an error; individual actions fail at request time instead.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateConnecting))

	serverPath, err := c.discoverServerSocket()
	if err != nil {
		return mirrorerr.New(mirrorerr.Configuration, fmt.Errorf("discover virtual-hid socket: %w", err))
	}

	clientPath := filepath.Join(c.serviceDir, fmt.Sprintf("mirroir-%d-%s.sock", time.Now().UnixNano(), uuid.NewString()[:8]))
	_ = os.Remove(clientPath)

	laddr := &net.UnixAddr{Name: clientPath, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: serverPath, Net: "unixgram"}

	conn, err := net.DialUnix("unixgram", laddr, raddr)
	if err != nil {
		return mirrorerr.New(mirrorerr.Configuration, fmt.Errorf("connect virtual-hid socket: %w", err))
	}

	c.conn = conn
	c.serverPath = serverPath
	c.clientPath = clientPath
	c.keyboardReady.Store(false)
	c.pointingReady.Store(false)

	if err := c.sendHeartbeat(); err != nil {
		conn.Close()
		return mirrorerr.New(mirrorerr.Configuration, fmt.Errorf("initial heartbeat: %w", err))
	}

	c.stopHeartbeat = make(chan struct{})
	c.stopLiveness = make(chan struct{})

	c.wg.Add(2)
	go c.heartbeatLoop()
	go c.livenessLoop()

	go c.readLoop(conn)

	if err := c.sendInit(ReqInitKeyboard, DefaultKeyboardParameters().Bytes()[:]); err != nil {
		return mirrorerr.New(mirrorerr.Device, fmt.Errorf("init keyboard: %w", err))
	}
	if err := c.sendInit(ReqInitPointing, nil); err != nil {
		return mirrorerr.New(mirrorerr.Device, fmt.Errorf("init pointing: %w", err))
	}

	c.pollReadiness()
	return nil
}

// discoverServerSocket enumerates socketGlobPattern under serviceDir and
// returns the first match.
func (c *Client) discoverServerSocket() (string, error) {
	matches, err := filepath.Glob(filepath.Join(c.serviceDir, socketGlobPattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no virtual-hid service socket found under %s", c.serviceDir)
	}
	return matches[0], nil
}

func (c *Client) sendInit(reqType RequestType, payload []byte) error {
	return c.send(buildUserDataFrame(reqType, payload))
}

// PostPointing emits a single pointing report.
func (c *Client) PostPointing(r PointingReport) error {
	bytes := r.Bytes()
	if err := c.send(buildUserDataFrame(ReqPostPointing, bytes[:])); err != nil {
		return mirrorerr.New(mirrorerr.Device, fmt.Errorf("post pointing report: %w", err))
	}
	return nil
}

// PostKeyboard emits a single keyboard report.
func (c *Client) PostKeyboard(r KeyboardReport) error {
	bytes := r.Bytes()
	if err := c.send(buildUserDataFrame(ReqPostKeyboard, bytes[:])); err != nil {
		return mirrorerr.New(mirrorerr.Device, fmt.Errorf("post keyboard report: %w", err))
	}
	return nil
}

func (c *Client) send(frame []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	conn := c.conn
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	_, err := conn.Write(frame)
	c.diagMu.Lock()
	if err != nil {
		c.consecutiveSendErrors++
	} else {
		c.consecutiveSendErrors = 0
	}
	c.diagMu.Unlock()
	return err
}

func (c *Client) sendHeartbeat() error {
	err := c.send(buildHeartbeatFrame())
	c.diagMu.Lock()
	c.lastHeartbeatSentAt = time.Now()
	c.diagMu.Unlock()
	return err
}

func (c *Client) heartbeatLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopHeartbeat:
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(); err != nil {
				c.log.Warn("heartbeat send failed", "error", err)
			}
		}
	}
}

// livenessLoop re-checks existence of the discovered server socket path
// every livenessInterval. If it disappears, the client transitions to
// disconnected; any disappearance is
// treated as a full teardown, re-initialized from scratch when the socket
// reappears.
func (c *Client) livenessLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopLiveness:
			return
		case <-ticker.C:
			c.diagMu.Lock()
			c.lastLivenessCheckAt = time.Now()
			c.diagMu.Unlock()

			if _, err := os.Stat(c.serverPath); err != nil {
				c.log.Warn("virtual-hid service socket disappeared", "path", c.serverPath)
				c.state.Store(int32(StateDisconnected))
				c.keyboardReady.Store(false)
				c.pointingReady.Store(false)
				continue
			}
			if c.State() == StateDisconnected {
				c.log.Info("virtual-hid service socket reappeared, reinitializing")
				if err := c.reinit(); err != nil {
					c.log.Warn("reinitialize virtual-hid client failed", "error", err)
				}
			}
		}
	}
}

func (c *Client) reinit() error {
	c.sendMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	_ = os.Remove(c.clientPath)
	laddr := &net.UnixAddr{Name: c.clientPath, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: c.serverPath, Net: "unixgram"}
	conn, err := net.DialUnix("unixgram", laddr, raddr)
	c.conn = conn
	c.sendMu.Unlock()
	if err != nil {
		return err
	}
	go c.readLoop(conn)

	if err := c.sendInit(ReqInitKeyboard, DefaultKeyboardParameters().Bytes()[:]); err != nil {
		return err
	}
	if err := c.sendInit(ReqInitPointing, nil); err != nil {
		return err
	}
	c.pollReadiness()
	return nil
}

func (c *Client) readLoop(conn *net.UnixConn) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		respType, ok := parseResponse(buf[:n])
		if !ok {
			continue
		}
		c.handleResponse(respType)
	}
}

func (c *Client) handleResponse(resp ResponseType) {
	switch resp {
	case RespDriverActivated:
		c.log.Info("virtual-hid driver activated")
	case RespDriverConnected:
		c.log.Info("virtual-hid driver connected")
	case RespVersionMismatch:
		c.log.Warn("virtual-hid driver version mismatch")
	case RespKeyboardReady:
		c.keyboardReady.Store(true)
		c.updateReadyState()
	case RespPointingReady:
		c.pointingReady.Store(true)
		c.updateReadyState()
	}
}

func (c *Client) updateReadyState() {
	k, p := c.keyboardReady.Load(), c.pointingReady.Load()
	switch {
	case k && p:
		c.state.Store(int32(StateReadyBoth))
	case k:
		c.state.Store(int32(StateReadyKeyboardOnly))
	case p:
		c.state.Store(int32(StateReadyPointingOnly))
	}
}

// pollReadiness waits up to readinessTimeout for both devices to report
// ready. Timing out is not an error: the client continues running in a
// degraded state and individual actions fail at request time.
func (c *Client) pollReadiness() {
	deadline := time.Now().Add(readinessTimeout)
	for time.Now().Before(deadline) {
		if c.keyboardReady.Load() && c.pointingReady.Load() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !c.keyboardReady.Load() || !c.pointingReady.Load() {
		c.log.Warn("virtual-hid readiness timeout",
			"keyboard_ready", c.keyboardReady.Load(),
			"pointing_ready", c.pointingReady.Load())
	}
}

// Close stops the timers and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopHeartbeat != nil {
		close(c.stopHeartbeat)
	}
	if c.stopLiveness != nil {
		close(c.stopLiveness)
	}
	c.wg.Wait()

	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	if c.clientPath != "" {
		_ = os.Remove(c.clientPath)
	}
	c.state.Store(int32(StateDisconnected))
	return err
}
