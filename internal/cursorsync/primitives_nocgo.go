//go:build !cgo

package cursorsync

import (
	"errors"

	"mirroir/internal/mirrorerr"
)

var errNoCgo = errors.New("cursorsync: built without cgo, cursor primitives unavailable")

// nocgoPrimitives reports every call unsupported. CoreGraphics access
// requires cgo; without it the sync engine cannot run at all.
type nocgoPrimitives struct{}

// NewPrimitives returns a CursorPrimitives stub that fails every call.
func NewPrimitives() CursorPrimitives {
	return nocgoPrimitives{}
}

func (nocgoPrimitives) Warp(x, y float64) error {
	return mirrorerr.New(mirrorerr.Device, errNoCgo)
}

func (nocgoPrimitives) CurrentPosition() (float64, float64, error) {
	return 0, 0, mirrorerr.New(mirrorerr.Device, errNoCgo)
}

func (nocgoPrimitives) SetAssociation(associated bool) error {
	return mirrorerr.New(mirrorerr.Device, errNoCgo)
}
