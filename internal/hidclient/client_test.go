package hidclient

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirroir/internal/logging"
)

func TestBuildHeartbeatFrame(t *testing.T) {
	frame := buildHeartbeatFrame()
	require.Len(t, frame, 5)
	assert.Equal(t, frameKindHeartbeat, frame[0])
	assert.Equal(t, byte(0x88), frame[1]) // 5000 = 0x1388, low byte
	assert.Equal(t, byte(0x13), frame[2])
}

func TestBuildUserDataFrameLayout(t *testing.T) {
	frame := buildUserDataFrame(ReqInitPointing, nil)
	require.Len(t, frame, 6)
	assert.Equal(t, frameKindUserData, frame[0])
	assert.Equal(t, byte('c'), frame[1])
	assert.Equal(t, byte('p'), frame[2])
	assert.Equal(t, byte(5), frame[3]) // version low byte
	assert.Equal(t, byte(0), frame[4])
	assert.Equal(t, byte(ReqInitPointing), frame[5])

	payload := []byte{0xAA, 0xBB}
	withPayload := buildUserDataFrame(ReqPostPointing, payload)
	assert.Equal(t, payload, withPayload[6:])
}

func TestParseResponseRejectsNonUserDataFrames(t *testing.T) {
	_, ok := parseResponse(buildHeartbeatFrame())
	assert.False(t, ok)

	_, ok = parseResponse([]byte{0x01, 'x', 'p', 0, 0, 4})
	assert.False(t, ok, "wrong magic byte must be rejected")

	respType, ok := parseResponse(buildUserDataFrame(RequestType(RespKeyboardReady), nil))
	assert.True(t, ok)
	assert.Equal(t, ResponseType(RespKeyboardReady), respType)
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "ready-both", StateReadyBoth.String())
	assert.Equal(t, "unknown", ConnectionState(99).String())
}

// fakeService emulates the virtual-HID service's datagram control socket:
// it replies to every init request with the corresponding ready response.
func fakeService(t *testing.T, dir string) (path string, stop func()) {
	t.Helper()
	path = filepath.Join(dir, "com.apple.virtualhid.service.sock")
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 256)
		for {
			n, raddr, err := conn.ReadFromUnix(buf)
			if err != nil {
				return
			}
			frame := buf[:n]
			if len(frame) < 6 || frame[0] != frameKindUserData {
				continue
			}
			switch RequestType(frame[5]) {
			case ReqInitKeyboard:
				conn.WriteToUnix(buildUserDataFrame(RequestType(RespKeyboardReady), nil), raddr)
			case ReqInitPointing:
				conn.WriteToUnix(buildUserDataFrame(RequestType(RespPointingReady), nil), raddr)
			}
		}
	}()

	return path, func() { conn.Close(); <-done }
}

func TestConnectReachesReadyBothOnInitAcks(t *testing.T) {
	dir := t.TempDir()
	_, closeService := fakeService(t, dir)
	defer closeService()

	log := logging.Default()
	c := New(dir, log)
	defer c.Close()

	require.NoError(t, c.Connect())

	require.Eventually(t, func() bool {
		return c.KeyboardReady() && c.PointingReady()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, StateReadyBoth, c.State())
}

func TestConnectFailsWithoutServiceSocket(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, logging.Default())

	err := c.Connect()
	assert.Error(t, err)
}

func TestPostPointingAndKeyboardSendFramesAndTrackErrors(t *testing.T) {
	dir := t.TempDir()
	_, closeService := fakeService(t, dir)
	defer closeService()

	c := New(dir, logging.Default())
	defer c.Close()
	require.NoError(t, c.Connect())

	require.NoError(t, c.PostPointing(PointingReport{Buttons: 1}))
	require.NoError(t, c.PostKeyboard(KeyboardReport{Modifier: 0x02}))

	diag := c.Doctor()
	assert.Equal(t, 0, diag.ConsecutiveSendErrors)

	// Removing the client's own connection should surface a send failure.
	c.conn.Close()
	os.Remove(c.clientPath)
	err := c.PostPointing(PointingReport{})
	assert.Error(t, err)
}
