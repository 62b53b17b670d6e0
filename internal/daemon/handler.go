// Package daemon wires the virtual-HID client, cursor-sync engine, and
// keyboard pipeline into the ipc.Handler the socket server dispatches to
// the supported-actions table.
package daemon

import (
	"context"
	"fmt"

	"mirroir/internal/cursorsync"
	"mirroir/internal/hidclient"
	"mirroir/internal/ipc"
	"mirroir/internal/keyboard"
	"mirroir/internal/logging"
	"mirroir/internal/mirrorerr"
)

// Handler implements ipc.Handler, dispatching each supported action to
// the cursor-sync engine, keyboard pipeline, or virtual-HID client.
type Handler struct {
	hid      *hidclient.Client
	cursor   *cursorsync.Engine
	keyboard *keyboard.Pipeline
	log      *logging.Logger
	reload   func() error
}

// New builds a daemon Handler. reload is invoked by the reload_policy
// action and may be nil.
func New(hid *hidclient.Client, cursor *cursorsync.Engine, kb *keyboard.Pipeline, log *logging.Logger, reload func() error) *Handler {
	return &Handler{hid: hid, cursor: cursor, keyboard: kb, log: log, reload: reload}
}

// HandleCommand dispatches on cmd.Action. Exactly one command is handled
// at a time daemon-wide, by construction of the server's accept loop, so
// no locking is needed around the cursor/HID state here.
func (h *Handler) HandleCommand(ctx context.Context, cmd *ipc.Command) *ipc.Response {
	switch cmd.Action {
	case "click":
		return h.handlePointClick(cmd)
	case "long_press":
		return h.handleLongPress(cmd)
	case "double_tap":
		return h.handleDoubleTap(cmd)
	case "drag":
		return h.handleDrag(cmd)
	case "swipe":
		return h.handleSwipe(cmd)
	case "move":
		return h.handleMove(cmd)
	case "type":
		return h.handleType(cmd)
	case "press_key":
		return h.handlePressKey(cmd)
	case "shake":
		return h.handleShake()
	case "status":
		return h.handleStatus()
	case "reload_policy":
		return h.handleReloadPolicy()
	case "ping":
		return ipc.Success()
	default:
		return ipc.Failure(mirrorerr.Wrapf(mirrorerr.Protocol, "unknown action: %s", cmd.Action))
	}
}

func cursorModeOf(cmd *ipc.Command) cursorsync.CursorMode {
	if cmd.CursorMode != nil && *cmd.CursorMode == "leave" {
		return cursorsync.ModeLeave
	}
	return cursorsync.ModeSync
}

func requireXY(cmd *ipc.Command) (float64, float64, error) {
	if cmd.X == nil || cmd.Y == nil {
		return 0, 0, mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("missing x/y"))
	}
	return *cmd.X, *cmd.Y, nil
}

func requireFromTo(cmd *ipc.Command) (fromX, fromY, toX, toY float64, err error) {
	if cmd.FromX == nil || cmd.FromY == nil || cmd.ToX == nil || cmd.ToY == nil {
		return 0, 0, 0, 0, mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("missing from_x/from_y/to_x/to_y"))
	}
	return *cmd.FromX, *cmd.FromY, *cmd.ToX, *cmd.ToY, nil
}

func (h *Handler) handlePointClick(cmd *ipc.Command) *ipc.Response {
	x, y, err := requireXY(cmd)
	if err != nil {
		return ipc.Failure(err)
	}
	if err := h.cursor.Click(x, y, cursorModeOf(cmd)); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleLongPress(cmd *ipc.Command) *ipc.Response {
	x, y, err := requireXY(cmd)
	if err != nil {
		return ipc.Failure(err)
	}
	duration := 500
	if cmd.DurationMs != nil {
		duration = *cmd.DurationMs
	}
	if err := h.cursor.LongPress(x, y, cursorModeOf(cmd), duration); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleDoubleTap(cmd *ipc.Command) *ipc.Response {
	x, y, err := requireXY(cmd)
	if err != nil {
		return ipc.Failure(err)
	}
	if err := h.cursor.DoubleTap(x, y, cursorModeOf(cmd)); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleDrag(cmd *ipc.Command) *ipc.Response {
	fromX, fromY, toX, toY, err := requireFromTo(cmd)
	if err != nil {
		return ipc.Failure(err)
	}
	duration := 1000
	if cmd.DurationMs != nil {
		duration = *cmd.DurationMs
	}
	if err := h.cursor.Drag(fromX, fromY, toX, toY, cursorModeOf(cmd), duration); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleSwipe(cmd *ipc.Command) *ipc.Response {
	fromX, fromY, toX, toY, err := requireFromTo(cmd)
	if err != nil {
		return ipc.Failure(err)
	}
	duration := 300
	if cmd.DurationMs != nil {
		duration = *cmd.DurationMs
	}
	if err := h.cursor.Swipe(fromX, fromY, toX, toY, duration); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleMove(cmd *ipc.Command) *ipc.Response {
	if cmd.DX == nil || cmd.DY == nil {
		return ipc.Failure(mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("missing dx/dy")))
	}
	if err := h.cursor.Move(*cmd.DX, *cmd.DY); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleType(cmd *ipc.Command) *ipc.Response {
	if cmd.Text == nil {
		return ipc.Failure(mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("missing text")))
	}
	if cmd.FocusX != nil && cmd.FocusY != nil {
		if err := h.cursor.Click(*cmd.FocusX, *cmd.FocusY, cursorsync.ModeSync); err != nil {
			return ipc.Failure(err)
		}
	}
	skipped, err := h.keyboard.Type(*cmd.Text)
	if err != nil {
		return ipc.Failure(err)
	}
	resp := ipc.Success()
	for _, r := range skipped {
		resp.Skipped = append(resp.Skipped, int(r))
	}
	return resp
}

func (h *Handler) handlePressKey(cmd *ipc.Command) *ipc.Response {
	if cmd.Key == nil {
		return ipc.Failure(mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("missing key")))
	}
	if err := h.keyboard.PressKey(*cmd.Key, cmd.Modifiers); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleShake() *ipc.Response {
	if err := h.keyboard.PressKey("z", []string{"control", "command"}); err != nil {
		return ipc.Failure(err)
	}
	return ipc.Success()
}

func (h *Handler) handleStatus() *ipc.Response {
	resp := ipc.Success()
	keyboardReady := h.hid.KeyboardReady()
	pointingReady := h.hid.PointingReady()
	resp.KeyboardReady = &keyboardReady
	resp.PointingReady = &pointingReady
	return resp
}

func (h *Handler) handleReloadPolicy() *ipc.Response {
	if h.reload == nil {
		return ipc.Success()
	}
	if err := h.reload(); err != nil {
		return ipc.Failure(mirrorerr.New(mirrorerr.Configuration, err))
	}
	return ipc.Success()
}
