package orchestrator

import (
	"context"
	"fmt"
	"os/exec"

	"mirroir/internal/ipc"
	"mirroir/internal/logging"
	"mirroir/internal/mirrorerr"
	"mirroir/internal/policy"
)

// Orchestrator exposes the high-level capability surface to the hosting
// program: it resolves the target window, validates coordinates,
// consults the permission policy, and brokers one or more commands to
// the daemon per call.
type Orchestrator struct {
	daemon *DaemonClient
	bridge WindowBridge
	policy *policy.Policy
	log    *logging.Logger
}

// New builds an Orchestrator.
func New(daemon *DaemonClient, bridge WindowBridge, pol *policy.Policy, log *logging.Logger) *Orchestrator {
	return &Orchestrator{daemon: daemon, bridge: bridge, policy: pol, log: log}
}

// resolveScreenPoint validates a window-relative point against the
// current geometry and converts it to absolute screen coordinates.
func (o *Orchestrator) resolveScreenPoint(wx, wy float64) (float64, float64, error) {
	geo, ok := o.bridge.GetWindowGeometry()
	if !ok {
		return 0, 0, mirrorerr.New(mirrorerr.Configuration, fmt.Errorf("window geometry unavailable"))
	}
	if !geo.contains(wx, wy) {
		return 0, 0, mirrorerr.New(mirrorerr.Protocol, fmt.Errorf("coordinate (%.1f, %.1f) outside window bounds", wx, wy))
	}
	sx, sy := geo.toScreen(wx, wy)
	return sx, sy, nil
}

func (o *Orchestrator) authorize(capability string) error {
	if !o.policy.Allowed(capability) {
		return mirrorerr.Wrapf(mirrorerr.Authorization, "capability denied: %s", capability)
	}
	return nil
}

// Tap performs a click at window-relative (wx, wy).
func (o *Orchestrator) Tap(ctx context.Context, wx, wy float64, mode string) (*ipc.Response, error) {
	if err := o.authorize("tap"); err != nil {
		return nil, err
	}
	sx, sy, err := o.resolveScreenPoint(wx, wy)
	if err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "click", X: &sx, Y: &sy}
	if mode != "" {
		cmd.CursorMode = &mode
	}
	return o.daemon.Do(cmd)
}

// LongPress performs a long-press at window-relative (wx, wy).
func (o *Orchestrator) LongPress(ctx context.Context, wx, wy float64, durationMs int, mode string) (*ipc.Response, error) {
	if err := o.authorize("long_press"); err != nil {
		return nil, err
	}
	sx, sy, err := o.resolveScreenPoint(wx, wy)
	if err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "long_press", X: &sx, Y: &sy}
	if durationMs > 0 {
		cmd.DurationMs = &durationMs
	}
	if mode != "" {
		cmd.CursorMode = &mode
	}
	return o.daemon.Do(cmd)
}

// DoubleTap performs a double-tap at window-relative (wx, wy).
func (o *Orchestrator) DoubleTap(ctx context.Context, wx, wy float64, mode string) (*ipc.Response, error) {
	if err := o.authorize("double_tap"); err != nil {
		return nil, err
	}
	sx, sy, err := o.resolveScreenPoint(wx, wy)
	if err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "double_tap", X: &sx, Y: &sy}
	if mode != "" {
		cmd.CursorMode = &mode
	}
	return o.daemon.Do(cmd)
}

// Drag drags from window-relative (fromX, fromY) to (toX, toY).
func (o *Orchestrator) Drag(ctx context.Context, fromX, fromY, toX, toY float64, durationMs int, mode string) (*ipc.Response, error) {
	if err := o.authorize("drag"); err != nil {
		return nil, err
	}
	fsx, fsy, err := o.resolveScreenPoint(fromX, fromY)
	if err != nil {
		return nil, err
	}
	tsx, tsy, err := o.resolveScreenPoint(toX, toY)
	if err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "drag", FromX: &fsx, FromY: &fsy, ToX: &tsx, ToY: &tsy}
	if durationMs > 0 {
		cmd.DurationMs = &durationMs
	}
	if mode != "" {
		cmd.CursorMode = &mode
	}
	return o.daemon.Do(cmd)
}

// Swipe scrolls from window-relative (fromX, fromY) to (toX, toY).
func (o *Orchestrator) Swipe(ctx context.Context, fromX, fromY, toX, toY float64, durationMs int) (*ipc.Response, error) {
	if err := o.authorize("swipe"); err != nil {
		return nil, err
	}
	fsx, fsy, err := o.resolveScreenPoint(fromX, fromY)
	if err != nil {
		return nil, err
	}
	tsx, tsy, err := o.resolveScreenPoint(toX, toY)
	if err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "swipe", FromX: &fsx, FromY: &fsy, ToX: &tsx, ToY: &tsy}
	if durationMs > 0 {
		cmd.DurationMs = &durationMs
	}
	return o.daemon.Do(cmd)
}

// Move emits a pure relative pointer movement; it carries no window-
// relative coordinates to validate.
func (o *Orchestrator) Move(ctx context.Context, dx, dy int) (*ipc.Response, error) {
	if err := o.authorize("move"); err != nil {
		return nil, err
	}
	cmd := &ipc.Command{Action: "move", DX: &dx, DY: &dy}
	return o.daemon.Do(cmd)
}

// Type ensures focus discipline (activating the window before keyboard
// input) and sends the text, optionally preceded by a focus click at a
// window-relative point.
func (o *Orchestrator) Type(ctx context.Context, text string, focusWX, focusWY *float64) (*ipc.Response, error) {
	if err := o.authorize("type"); err != nil {
		return nil, err
	}
	if err := o.bridge.EnsureFrontmost(); err != nil {
		return nil, mirrorerr.New(mirrorerr.Configuration, err)
	}

	cmd := &ipc.Command{Action: "type", Text: &text}
	if focusWX != nil && focusWY != nil {
		sx, sy, err := o.resolveScreenPoint(*focusWX, *focusWY)
		if err != nil {
			return nil, err
		}
		cmd.FocusX, cmd.FocusY = &sx, &sy
	}
	return o.daemon.Do(cmd)
}

// PressKey ensures focus discipline and sends a single named key, with
// optional modifiers.
func (o *Orchestrator) PressKey(ctx context.Context, key string, modifiers []string) (*ipc.Response, error) {
	if err := o.authorize("press_key"); err != nil {
		return nil, err
	}
	if err := o.bridge.EnsureFrontmost(); err != nil {
		return nil, mirrorerr.New(mirrorerr.Configuration, err)
	}
	cmd := &ipc.Command{Action: "press_key", Key: &key, Modifiers: modifiers}
	return o.daemon.Do(cmd)
}

// Status is a read-only capability; it never activates the window.
func (o *Orchestrator) Status(ctx context.Context) (*ipc.Response, error) {
	return o.daemon.Do(&ipc.Command{Action: "status"})
}

// LaunchApp opens a named application via the OS, honoring the policy's
// blocked_apps list. This does not go through the daemon: launching
// applications is a normal-privilege operation, unlike HID injection.
func (o *Orchestrator) LaunchApp(ctx context.Context, appName string) error {
	if err := o.authorize("launch_app"); err != nil {
		return err
	}
	if o.policy.AppBlocked(appName) {
		return mirrorerr.Wrapf(mirrorerr.Authorization, "application blocked: %s", appName)
	}
	cmd := exec.CommandContext(ctx, "open", "-a", appName)
	if err := cmd.Run(); err != nil {
		return mirrorerr.New(mirrorerr.Configuration, fmt.Errorf("launch %s: %w", appName, err))
	}
	return nil
}
