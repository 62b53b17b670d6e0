package ipc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommandRoundTrip(t *testing.T) {
	line := []byte(`{"action":"click","x":1.5,"y":2.5,"cursor_mode":"leave"}` + "\n")
	cmd, err := DecodeCommand(line)
	require.NoError(t, err)
	assert.Equal(t, "click", cmd.Action)
	require.NotNil(t, cmd.X)
	require.NotNil(t, cmd.Y)
	assert.Equal(t, 1.5, *cmd.X)
	assert.Equal(t, 2.5, *cmd.Y)
	require.NotNil(t, cmd.CursorMode)
	assert.Equal(t, "leave", *cmd.CursorMode)
}

func TestDecodeCommandRejectsMissingAction(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"x":1}`))
	assert.Error(t, err)
}

func TestDecodeCommandRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeCommand([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeResponseSuccessIsMinimal(t *testing.T) {
	data, err := EncodeResponse(Success())
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`+"\n", string(data))
}

func TestEncodeResponseFailureCarriesError(t *testing.T) {
	resp := Failure(errors.New("boom"))
	data, err := EncodeResponse(resp)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"ok":false`))
	assert.True(t, strings.Contains(string(data), `"error":"boom"`))
}

func TestEncodeResponseOmitsEmptyOptionalFields(t *testing.T) {
	data, err := EncodeResponse(Success())
	require.NoError(t, err)
	s := string(data)
	assert.False(t, strings.Contains(s, "keyboard_ready"))
	assert.False(t, strings.Contains(s, "skipped"))
}
