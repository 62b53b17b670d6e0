package statushttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirroir/internal/hidclient"
)

type fakeSource struct {
	keyboardReady bool
	pointingReady bool
	diag          hidclient.Diagnostics
}

func (f fakeSource) KeyboardReady() bool          { return f.keyboardReady }
func (f fakeSource) PointingReady() bool          { return f.pointingReady }
func (f fakeSource) Doctor() hidclient.Diagnostics { return f.diag }

func TestHandleHealthz(t *testing.T) {
	s := New("127.0.0.1:0", fakeSource{}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.server.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestHandleStatusReportsSourceState(t *testing.T) {
	src := fakeSource{
		keyboardReady: true,
		pointingReady: false,
		diag: hidclient.Diagnostics{
			State:                 "ready-keyboard-only",
			ConsecutiveSendErrors: 2,
		},
	}
	s := New("127.0.0.1:0", src, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	s.server.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var payload statusPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.True(t, payload.KeyboardReady)
	assert.False(t, payload.PointingReady)
	assert.Equal(t, "ready-keyboard-only", payload.HIDState)
	assert.Equal(t, 2, payload.SendErrors)
}

func TestStartRejectsNonLoopbackAddr(t *testing.T) {
	s := New("93.184.216.34:7273", fakeSource{}, nil)
	err := s.Start()
	assert.ErrorIs(t, err, errNotLoopback)
}

func TestStartAcceptsLocalhost(t *testing.T) {
	s := New("localhost:0", fakeSource{}, nil)
	err := s.Start()
	require.NoError(t, err)
	defer s.Stop()
}
