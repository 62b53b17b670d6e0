package keyboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirroir/internal/hidclient"
	"mirroir/internal/tunables"
)

type fakeKeyboardPoster struct {
	reports []hidclient.KeyboardReport
}

func (f *fakeKeyboardPoster) PostKeyboard(r hidclient.KeyboardReport) error {
	f.reports = append(f.reports, r)
	return nil
}

func newTestPipeline(poster KeyboardPoster) *Pipeline {
	p := &Pipeline{
		hid:     poster,
		tun:     tunables.Values{HidTypingChunkSize: 4, KeyHoldUs: 1, KeystrokeDelayUs: 1},
		sleep:   func(time.Duration) {},
		skipped: make(map[rune]struct{}),
	}
	return p
}

func TestTypeEmitsPressAndReleasePerChunk(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	skipped, err := p.Type("abcdefgh")
	require.NoError(t, err)
	assert.Empty(t, skipped)

	// 8 chars at chunk size 4 -> 2 chunks, each press+release.
	assert.Len(t, poster.reports, 4)
	assert.NotEqual(t, hidclient.KeyboardReport{}, poster.reports[0])
	assert.Equal(t, hidclient.ReleaseReport(), poster.reports[1])
}

func TestTypeSkipsUnmappableRunes(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	skipped, err := p.Type("a\U0001F600b")
	require.NoError(t, err)
	assert.Equal(t, []rune{'\U0001F600'}, skipped)
}

func TestTypeComposesDeadKeySequenceForPrecomposedRune(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }
	p.tun.DeadKeyDelayUs = 30000

	skipped, err := p.Type("é")
	require.NoError(t, err)
	assert.Empty(t, skipped)

	require.Len(t, poster.reports, 4, "dead-key press+release, base press+release")
	assert.Equal(t, uint16(0x08), poster.reports[0].Keys[0], "Option+E dead key")
	assert.Equal(t, ModOption, poster.reports[0].Modifier)
	assert.Equal(t, hidclient.ReleaseReport(), poster.reports[1])
	assert.Equal(t, uint16(0x08), poster.reports[2].Keys[0], "base letter e")
	assert.Equal(t, byte(0), poster.reports[2].Modifier)
	assert.Equal(t, hidclient.ReleaseReport(), poster.reports[3])

	require.Contains(t, slept, 30*time.Millisecond, "inter-keystroke delay between dead key and base letter")
}

func TestTypeFlushesPendingChunkBeforeDeadKeySequence(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	skipped, err := p.Type("aé")
	require.NoError(t, err)
	assert.Empty(t, skipped)

	// "a" flushes as its own chunk (press+release), then the dead-key
	// sequence for "é" runs on its own (press+release, press+release).
	require.Len(t, poster.reports, 6)
	assert.Equal(t, uint16(0x04), poster.reports[0].Keys[0], "a")
	assert.Equal(t, hidclient.ReleaseReport(), poster.reports[1])
}

func TestChunkRunesSplitsOnModifierChange(t *testing.T) {
	chunks := chunkRunes([]rune("aAbB"), 10)
	require.Len(t, chunks, 4)
	assert.Equal(t, []rune{'a'}, chunks[0])
	assert.Equal(t, []rune{'A'}, chunks[1])
	assert.Equal(t, []rune{'b'}, chunks[2])
	assert.Equal(t, []rune{'B'}, chunks[3])
}

func TestChunkRunesSplitsOnSize(t *testing.T) {
	chunks := chunkRunes([]rune("abcdef"), 3)
	require.Len(t, chunks, 2)
	assert.Equal(t, []rune("abc"), chunks[0])
	assert.Equal(t, []rune("def"), chunks[1])
}

func TestPressKeyUnresolvedName(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	err := p.PressKey("not-a-real-key", nil)
	assert.ErrorIs(t, err, errUnresolvedKey)
}

func TestPressKeyWithModifiers(t *testing.T) {
	poster := &fakeKeyboardPoster{}
	p := newTestPipeline(poster)

	require.NoError(t, p.PressKey("z", []string{"control", "command"}))
	require.Len(t, poster.reports, 2)
	assert.Equal(t, ModControl|ModCommand, poster.reports[0].Modifier)
	assert.Equal(t, uint16(0x1D), poster.reports[0].Keys[0])
	assert.Equal(t, hidclient.ReleaseReport(), poster.reports[1])
}
