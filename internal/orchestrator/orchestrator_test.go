package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirroir/internal/ipc"
	"mirroir/internal/policy"
)

type fakeBridge struct {
	geo         WindowGeometry
	geoOK       bool
	frontmostOK bool
	frontErr    error
}

func (f *fakeBridge) GetWindowGeometry() (WindowGeometry, bool) { return f.geo, f.geoOK }
func (f *fakeBridge) EnsureFrontmost() error                    { return f.frontErr }
func (f *fakeBridge) TriggerMenuAction(menuName, itemName string) (bool, error) {
	return true, nil
}
func (f *fakeBridge) GetState() string { return "connected" }

// fakeDaemon accepts connections and answers every request line with
// {"ok":true} until the listener is closed. When received is non-nil, each
// decoded command is sent on it before the reply is written.
func fakeDaemon(t *testing.T, received chan<- ipc.Command) (socketPath string, close func()) {
	t.Helper()
	dir := t.TempDir()
	socketPath = dir + "/daemon.sock"
	ln, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					line, err := reader.ReadBytes('\n')
					if err != nil {
						return
					}
					var cmd ipc.Command
					_ = json.Unmarshal(line, &cmd)
					if received != nil {
						received <- cmd
					}
					resp := ipc.Success()
					out, _ := ipc.EncodeResponse(resp)
					if _, err := conn.Write(out); err != nil {
						return
					}
				}
			}()
		}
	}()

	return socketPath, func() { ln.Close() }
}

func allowAllPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.Load(nil, true)
	require.NoError(t, err)
	return p
}

func newTestOrchestrator(t *testing.T, bridge WindowBridge) *Orchestrator {
	t.Helper()
	return newRecordingOrchestrator(t, bridge, nil)
}

// newRecordingOrchestrator is newTestOrchestrator with the fake daemon's
// decoded commands delivered on received.
func newRecordingOrchestrator(t *testing.T, bridge WindowBridge, received chan<- ipc.Command) *Orchestrator {
	t.Helper()
	socketPath, closeFn := fakeDaemon(t, received)
	t.Cleanup(closeFn)

	cfg := DefaultClientConfig(socketPath)
	cfg.ConnectTimeout = 2 * time.Second
	cfg.RequestTimeout = 2 * time.Second
	client := NewDaemonClient(cfg)
	t.Cleanup(func() { client.Close() })

	return New(client, bridge, allowAllPolicy(t), nil)
}

func TestTapConvertsToAbsoluteScreenCoordinates(t *testing.T) {
	bridge := &fakeBridge{geo: WindowGeometry{OriginX: 500, OriginY: 300, Width: 410, Height: 898}, geoOK: true}
	received := make(chan ipc.Command, 1)
	o := newRecordingOrchestrator(t, bridge, received)

	resp, err := o.Tap(context.Background(), 100, 200, "")
	require.NoError(t, err)
	assert.True(t, resp.OK)

	cmd := <-received
	require.NotNil(t, cmd.X)
	require.NotNil(t, cmd.Y)
	assert.Equal(t, 600.0, *cmd.X)
	assert.Equal(t, 500.0, *cmd.Y)
}

func TestTapRejectsOutOfBoundsCoordinateWithoutDaemonCall(t *testing.T) {
	bridge := &fakeBridge{geo: WindowGeometry{OriginX: 0, OriginY: 0, Width: 100, Height: 100}, geoOK: true}
	o := newTestOrchestrator(t, bridge)

	_, err := o.Tap(context.Background(), 500, 500, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside window bounds")
}

func TestTapFailsWhenGeometryUnavailable(t *testing.T) {
	bridge := &fakeBridge{geoOK: false}
	o := newTestOrchestrator(t, bridge)

	_, err := o.Tap(context.Background(), 1, 1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window geometry unavailable")
}

func TestTypeRequiresFrontmostActivation(t *testing.T) {
	bridge := &fakeBridge{geo: WindowGeometry{Width: 100, Height: 100}, geoOK: true, frontErr: assertErr("activation service down")}
	o := newTestOrchestrator(t, bridge)

	_, err := o.Type(context.Background(), "hi", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activation service down")
}

func TestStatusIsReadOnlyAndSkipsFrontmost(t *testing.T) {
	bridge := &fakeBridge{frontErr: assertErr("should never be called")}
	o := newTestOrchestrator(t, bridge)

	resp, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK)
}

func TestDragValidatesBothEndpoints(t *testing.T) {
	bridge := &fakeBridge{geo: WindowGeometry{Width: 100, Height: 100}, geoOK: true}
	o := newTestOrchestrator(t, bridge)

	_, err := o.Drag(context.Background(), 10, 10, 500, 500, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside window bounds")
}

type assertErrType string

func (e assertErrType) Error() string { return string(e) }

func assertErr(msg string) error { return assertErrType(msg) }
