// Package tunables resolves the timing and sizing constants used across
// the cursor-sync engine and keyboard pipeline. Resolution order for every
// key is fixed: settings file → environment variable → compile-time
// default.
package tunables

import (
	"encoding/json"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Values holds every tunable, all timing fields in microseconds unless
// named otherwise.
type Values struct {
	CursorSettleUs          int     `json:"cursor_settle_us" envconfig:"CURSOR_SETTLE" default:"10000"`
	NudgeSettleUs           int     `json:"nudge_settle_us" envconfig:"NUDGE_SETTLE" default:"5000"`
	ClickHoldUs             int     `json:"click_hold_us" envconfig:"CLICK_HOLD" default:"80000"`
	DoubleTapHoldUs         int     `json:"double_tap_hold_us" envconfig:"DOUBLE_TAP_HOLD" default:"40000"`
	DoubleTapGapUs          int     `json:"double_tap_gap_us" envconfig:"DOUBLE_TAP_GAP" default:"50000"`
	DragModeHoldUs          int     `json:"drag_mode_hold_us" envconfig:"DRAG_MODE_HOLD" default:"150000"`
	FocusSettleUs           int     `json:"focus_settle_us" envconfig:"FOCUS_SETTLE" default:"200000"`
	KeystrokeDelayUs        int     `json:"keystroke_delay_us" envconfig:"KEYSTROKE_DELAY" default:"15000"`
	KeyHoldUs               int     `json:"key_hold_us" envconfig:"KEY_HOLD" default:"20000"`
	DeadKeyDelayUs          int     `json:"dead_key_delay_us" envconfig:"DEAD_KEY_DELAY" default:"30000"`
	DragInterpolationSteps  int     `json:"drag_interpolation_steps" envconfig:"DRAG_INTERPOLATION_STEPS" default:"60"`
	SwipeInterpolationSteps int     `json:"swipe_interpolation_steps" envconfig:"SWIPE_INTERPOLATION_STEPS" default:"20"`
	ScrollPixelScale        float64 `json:"scroll_pixel_scale" envconfig:"SCROLL_PIXEL_SCALE" default:"8.0"`
	HidTypingChunkSize      int     `json:"hid_typing_chunk_size" envconfig:"HID_TYPING_CHUNK_SIZE" default:"15"`
	RecvTimeoutSec          int     `json:"recv_timeout_sec" envconfig:"RECV_TIMEOUT_SEC" default:"5"`
	IdleMaxTimeouts         int     `json:"idle_max_timeouts" envconfig:"IDLE_MAX_TIMEOUTS" default:"4"`
}

// envPrefix is the <APP> segment of the <APP>_<SCREAMING_SNAKE> environment
// variable names.
const envPrefix = "MIRROIR"

// Resolve applies the fixed precedence: values present in the settings
// file at path (if it exists) override envconfig-sourced environment
// values, which override the struct tag defaults.
func Resolve(path string) (Values, error) {
	var v Values
	if err := envconfig.Process(envPrefix, &v); err != nil {
		return v, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return v, err
	}

	var fileValues struct {
		Tunables json.RawMessage `json:"tunables"`
	}
	if err := json.Unmarshal(data, &fileValues); err != nil {
		return v, err
	}
	if len(fileValues.Tunables) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(fileValues.Tunables, &v); err != nil {
		return v, err
	}
	return v, nil
}
