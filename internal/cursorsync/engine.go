package cursorsync

import (
	"math"
	"time"

	"mirroir/internal/hidclient"
	"mirroir/internal/logging"
	"mirroir/internal/tunables"
)

// CursorMode selects whether a pointer action restores the captured
// cursor position afterward (sync) or leaves the cursor at the target
// (leave).
type CursorMode string

const (
	ModeSync  CursorMode = "sync"
	ModeLeave CursorMode = "leave"
)

// PointingPoster is the subset of hidclient.Client the engine needs:
// posting a single pointing report.
type PointingPoster interface {
	PostPointing(r hidclient.PointingReport) error
}

// Engine runs the sync sequence and the pointer actions built on top of
// it: click, long-press, double-tap, drag, swipe, move.
type Engine struct {
	primitives CursorPrimitives
	hid        PointingPoster
	tun        tunables.Values
	log        *logging.Logger
	sleep      func(time.Duration)
}

// New builds a cursor-sync Engine.
func New(primitives CursorPrimitives, hid PointingPoster, tun tunables.Values, log *logging.Logger) *Engine {
	return &Engine{primitives: primitives, hid: hid, tun: tun, log: log, sleep: time.Sleep}
}

// SetTunables replaces the engine's tunable values, e.g. after a forced
// reload_policy re-read of the settings file. Safe to call between
// actions: the socket server processes exactly one command at a time, so
// no action is ever mid-flight when this runs.
func (e *Engine) SetTunables(tun tunables.Values) {
	e.tun = tun
}

func us(n int) time.Duration { return time.Duration(n) * time.Microsecond }

// saturate8 clamps a delta to the signed 8-bit range an HID report field
// can carry.
func saturate8(v float64) int8 {
	r := math.Round(v)
	if r > 127 {
		return 127
	}
	if r < -128 {
		return -128
	}
	return int8(r)
}

// withSync runs the 8-step sequence: capture, dissociate,
// warp, settle, nudge, the action proper, optional restore, re-associate.
func (e *Engine) withSync(targetX, targetY float64, mode CursorMode, action func() error) error {
	origX, origY, err := e.primitives.CurrentPosition()
	if err != nil {
		return err
	}

	if err := e.primitives.SetAssociation(false); err != nil {
		return err
	}
	defer func() {
		if err := e.primitives.SetAssociation(true); err != nil && e.log != nil {
			e.log.Warn("cursor re-association failed", "error", err)
		}
	}()

	if err := e.primitives.Warp(targetX, targetY); err != nil {
		return err
	}
	e.sleep(us(e.tun.CursorSettleUs))

	if err := e.nudge(); err != nil {
		return err
	}

	if err := action(); err != nil {
		return err
	}

	if mode == ModeSync {
		if err := e.primitives.Warp(origX, origY); err != nil {
			return err
		}
	}
	return nil
}

// nudge emits a tiny +1/-1 relative pointing report pair so the virtual-HID
// service's internal position tracker reconciles with the warped cursor.
// Net visible movement is zero.
func (e *Engine) nudge() error {
	if err := e.hid.PostPointing(hidclient.PointingReport{X: 1}); err != nil {
		return err
	}
	e.sleep(us(e.tun.NudgeSettleUs / 2))
	if err := e.hid.PostPointing(hidclient.PointingReport{X: -1}); err != nil {
		return err
	}
	e.sleep(us(e.tun.CursorSettleUs))
	return nil
}

const buttonPrimary uint32 = 1

// Click performs a single press/release cycle at the target point.
func (e *Engine) Click(x, y float64, mode CursorMode) error {
	return e.withSync(x, y, mode, func() error {
		return e.pressRelease(buttonPrimary, us(e.tun.ClickHoldUs))
	})
}

// LongPress is a click with a configured hold duration, floored at 100ms.
func (e *Engine) LongPress(x, y float64, mode CursorMode, durationMs int) error {
	hold := time.Duration(durationMs) * time.Millisecond
	if hold < 100*time.Millisecond {
		hold = 100 * time.Millisecond
	}
	return e.withSync(x, y, mode, func() error {
		return e.pressRelease(buttonPrimary, hold)
	})
}

// DoubleTap performs two click cycles separated by an inter-tap gap.
func (e *Engine) DoubleTap(x, y float64, mode CursorMode) error {
	return e.withSync(x, y, mode, func() error {
		if err := e.pressRelease(buttonPrimary, us(e.tun.DoubleTapHoldUs)); err != nil {
			return err
		}
		e.sleep(us(e.tun.DoubleTapGapUs))
		return e.pressRelease(buttonPrimary, us(e.tun.DoubleTapHoldUs))
	})
}

func (e *Engine) pressRelease(buttons uint32, hold time.Duration) error {
	if err := e.hid.PostPointing(hidclient.PointingReport{Buttons: buttons}); err != nil {
		return err
	}
	e.sleep(hold)
	if err := e.hid.PostPointing(hidclient.PointingReport{}); err != nil {
		return err
	}
	e.sleep(us(e.tun.CursorSettleUs))
	return nil
}

// Drag presses at (fromX, fromY), interpolates to (toX, toY) over the
// configured step count, and releases. durationMs is floored at 200ms.
func (e *Engine) Drag(fromX, fromY, toX, toY float64, mode CursorMode, durationMs int) error {
	if durationMs < 200 {
		durationMs = 200
	}
	steps := e.tun.DragInterpolationSteps
	if steps < 1 {
		steps = 1
	}
	perStep := time.Duration(durationMs) * time.Millisecond / time.Duration(steps)

	return e.withSync(fromX, fromY, mode, func() error {
		if err := e.hid.PostPointing(hidclient.PointingReport{Buttons: buttonPrimary}); err != nil {
			return err
		}
		e.sleep(us(e.tun.DragModeHoldUs))

		prevX, prevY := fromX, fromY
		for i := 1; i <= steps; i++ {
			frac := float64(i) / float64(steps)
			curX := fromX + (toX-fromX)*frac
			curY := fromY + (toY-fromY)*frac
			dx := saturate8(curX - prevX)
			dy := saturate8(curY - prevY)
			if err := e.primitives.Warp(curX, curY); err != nil {
				return err
			}
			if err := e.hid.PostPointing(hidclient.PointingReport{Buttons: buttonPrimary, X: dx, Y: dy}); err != nil {
				return err
			}
			prevX, prevY = curX, curY
			if perStep > 0 {
				e.sleep(perStep)
			}
		}

		if err := e.hid.PostPointing(hidclient.PointingReport{}); err != nil {
			return err
		}
		e.sleep(us(e.tun.CursorSettleUs))
		return nil
	})
}

// Swipe scrolls from (fromX, fromY) to (toX, toY) with wheel deltas paced
// over durationMs, floored at 100ms. Swipe has no cursor_mode field in the
// wire protocol and is not wrapped in the capture/warp/nudge/reassociate
// sequence the point actions use: it never touches cursor position, only
// wheel deltas.
func (e *Engine) Swipe(fromX, fromY, toX, toY float64, durationMs int) error {
	if durationMs < 100 {
		durationMs = 100
	}
	steps := e.tun.SwipeInterpolationSteps
	if steps < 1 {
		steps = 1
	}
	scale := e.tun.ScrollPixelScale
	if scale == 0 {
		scale = 1
	}
	perStep := time.Duration(durationMs) * time.Millisecond / time.Duration(steps)

	dxTotal := (toX - fromX) / float64(steps) / scale
	dyTotal := (toY - fromY) / float64(steps) / scale

	for i := 0; i < steps; i++ {
		r := hidclient.PointingReport{
			HorizontalWheel: saturate8(dxTotal),
			VerticalWheel:   saturate8(dyTotal),
		}
		if err := e.hid.PostPointing(r); err != nil {
			return err
		}
		if perStep > 0 {
			e.sleep(perStep)
		}
	}
	return nil
}

// Move emits a single relative pointing report with no warp and no
// buttons pressed.
func (e *Engine) Move(dx, dy int) error {
	return e.hid.PostPointing(hidclient.PointingReport{X: saturate8(float64(dx)), Y: saturate8(float64(dy))})
}
