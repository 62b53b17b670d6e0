// Package ipc implements the daemon's local stream socket protocol: peer
// authentication, the newline-delimited JSON command/response framing, and
// the per-connection session lifecycle described for the helper daemon.
package ipc

import (
	"encoding/json"
	"fmt"
)

// MaxLineSize is the maximum number of bytes a single request line may
// occupy. A longer line is discarded and answered with a failure response;
// the session stays open for the next command.
const MaxLineSize = 64 * 1024

// Command is one decoded request line. Field presence/validity is
// action-dependent; Handler implementations validate the fields they need.
type Command struct {
	Action string `json:"action"`

	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	FromX *float64 `json:"from_x,omitempty"`
	FromY *float64 `json:"from_y,omitempty"`
	ToX   *float64 `json:"to_x,omitempty"`
	ToY   *float64 `json:"to_y,omitempty"`

	DX *int `json:"dx,omitempty"`
	DY *int `json:"dy,omitempty"`

	DurationMs *int    `json:"duration_ms,omitempty"`
	CursorMode *string `json:"cursor_mode,omitempty"`

	Text    *string  `json:"text,omitempty"`
	FocusX  *float64 `json:"focus_x,omitempty"`
	FocusY  *float64 `json:"focus_y,omitempty"`
	Key     *string  `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Response is one encoded response line. Only the fields relevant to the
// action that produced it are populated; json:",omitempty" keeps the wire
// shape minimal.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	KeyboardReady *bool `json:"keyboard_ready,omitempty"`
	PointingReady *bool `json:"pointing_ready,omitempty"`

	Skipped []int `json:"skipped,omitempty"`
}

// Success builds a bare {"ok":true} response.
func Success() *Response { return &Response{OK: true} }

// Failure builds an {"ok":false,"error":...} response.
func Failure(err error) *Response {
	return &Response{OK: false, Error: err.Error()}
}

// DecodeCommand parses a single request line into a Command.
func DecodeCommand(line []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	if cmd.Action == "" {
		return nil, fmt.Errorf("missing action")
	}
	return &cmd, nil
}

// EncodeResponse serializes a Response as a single newline-terminated line.
func EncodeResponse(resp *Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
