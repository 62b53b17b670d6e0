package tunables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsWhenFileMissing(t *testing.T) {
	v, err := Resolve(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 10000, v.CursorSettleUs)
	assert.Equal(t, 80000, v.ClickHoldUs)
	assert.Equal(t, 60, v.DragInterpolationSteps)
	assert.Equal(t, 8.0, v.ScrollPixelScale)
	assert.Equal(t, 15, v.HidTypingChunkSize)
	assert.Equal(t, 4, v.IdleMaxTimeouts)
}

func TestResolveEnvOverridesDefault(t *testing.T) {
	t.Setenv("MIRROIR_CLICK_HOLD", "99000")
	v, err := Resolve(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, 99000, v.ClickHoldUs)
}

func TestResolveFileOverridesEnvAndDefault(t *testing.T) {
	t.Setenv("MIRROIR_CLICK_HOLD", "99000")

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tunables":{"click_hold_us":12345}}`), 0o600))

	v, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 12345, v.ClickHoldUs)
	// Keys absent from the file keep the env-resolved value.
	assert.Equal(t, 10000, v.CursorSettleUs)
}

func TestResolveFileWithoutTunablesKeyIsANoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"allow":["tap"]}`), 0o600))

	v, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 80000, v.ClickHoldUs)
}

func TestResolveMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := Resolve(path)
	assert.Error(t, err)
}
