package hidclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointingReportBytes(t *testing.T) {
	r := PointingReport{Buttons: 1, X: -2, Y: 3, VerticalWheel: -1, HorizontalWheel: 0}
	b := r.Bytes()
	assert.Equal(t, [8]byte{1, 0, 0, 0, 0xFE, 3, 0xFF, 0}, b)
}

func TestPointingReportBytesButtonsLittleEndian(t *testing.T) {
	r := PointingReport{Buttons: 0x01020304}
	b := r.Bytes()
	assert.Equal(t, byte(0x04), b[0])
	assert.Equal(t, byte(0x03), b[1])
	assert.Equal(t, byte(0x02), b[2])
	assert.Equal(t, byte(0x01), b[3])
}

func TestKeyboardReportBytesLayout(t *testing.T) {
	var r KeyboardReport
	r.Modifier = 0x02
	r.Keys[0] = 0x0004
	r.Keys[1] = 0x1234

	b := r.Bytes()
	assert.Len(t, b, 67)
	assert.Equal(t, byte(KeyboardReportID), b[0])
	assert.Equal(t, byte(0x02), b[1])
	assert.Equal(t, byte(0), b[2], "reserved byte must be zero")

	assert.Equal(t, byte(0x04), b[3])
	assert.Equal(t, byte(0x00), b[4])
	assert.Equal(t, byte(0x34), b[5])
	assert.Equal(t, byte(0x12), b[6])

	for i := 2; i < KeyboardMaxSlots; i++ {
		off := 3 + i*2
		assert.Equal(t, byte(0), b[off])
		assert.Equal(t, byte(0), b[off+1])
	}
}

func TestReleaseReportIsAllZero(t *testing.T) {
	b := ReleaseReport().Bytes()
	assert.Equal(t, byte(KeyboardReportID), b[0])
	for _, x := range b[1:] {
		assert.Equal(t, byte(0), x)
	}
}

func TestKeyboardParametersBytes(t *testing.T) {
	p := DefaultKeyboardParameters()
	b := p.Bytes()
	assert.Len(t, b, 24)
	assert.Equal(t, byte(0xAC), b[0])
	assert.Equal(t, byte(0x05), b[1])
	assert.Equal(t, byte(0x50), b[8])
	assert.Equal(t, byte(0x02), b[9])
	assert.Equal(t, byte(1), b[16])
}
