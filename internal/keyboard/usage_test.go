package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifierMask(t *testing.T) {
	assert.Equal(t, ModControl, ModifierMask([]string{"control"}))
	assert.Equal(t, ModShift, ModifierMask([]string{"shift"}))
	assert.Equal(t, ModOption, ModifierMask([]string{"option"}))
	assert.Equal(t, ModCommand, ModifierMask([]string{"command"}))
	assert.Equal(t, ModControl|ModCommand, ModifierMask([]string{"control", "command"}))
	assert.Equal(t, byte(0), ModifierMask([]string{"bogus"}))
}

func TestModifierBitValues(t *testing.T) {
	assert.EqualValues(t, 0x01, ModControl)
	assert.EqualValues(t, 0x02, ModShift)
	assert.EqualValues(t, 0x04, ModOption)
	assert.EqualValues(t, 0x08, ModCommand)
}

func TestCharTableLettersAndShift(t *testing.T) {
	lower, ok := charTable['a']
	assert.True(t, ok)
	assert.Equal(t, uint16(0x04), lower.Usage)
	assert.Equal(t, byte(0), lower.Modifier)

	upper, ok := charTable['A']
	assert.True(t, ok)
	assert.Equal(t, lower.Usage, upper.Usage)
	assert.Equal(t, ModShift, upper.Modifier)
}

func TestCharTableDigitsAndShiftedPunctuation(t *testing.T) {
	one, ok := charTable['1']
	assert.True(t, ok)
	assert.Equal(t, uint16(0x1E), one.Usage)

	bang, ok := charTable['!']
	assert.True(t, ok)
	assert.Equal(t, uint16(0x1E), bang.Usage)
	assert.Equal(t, ModShift, bang.Modifier)
}

func TestResolveNamedKey(t *testing.T) {
	usage, ok := ResolveNamedKey("return")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x28), usage)

	usage, ok = ResolveNamedKey("f1")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x3A), usage)

	usage, ok = ResolveNamedKey("a")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x04), usage)

	_, ok = ResolveNamedKey("not-a-key")
	assert.False(t, ok)
}
