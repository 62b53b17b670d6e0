package mirrorerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Configuration, "configuration"},
		{Protocol, "protocol"},
		{Authorization, "authorization"},
		{Device, "device"},
		{Transport, "transport"},
		{Input, "input"},
		{Unknown, "unknown"},
		{Kind(99), "unknown"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.kind.String())
	}
}

func TestNewWrapsCauseAndKind(t *testing.T) {
	cause := errors.New("keyboard not ready")
	err := New(Device, cause)

	assert.Equal(t, Device, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "device: keyboard not ready", err.Error())
}

func TestWrapfFormatsMessage(t *testing.T) {
	err := Wrapf(Protocol, "unknown action: %s", "teleport")
	assert.Equal(t, "protocol: unknown action: teleport", err.Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("broken pipe")
	err := New(Transport, cause)
	assert.Same(t, cause, errors.Unwrap(err))
}
