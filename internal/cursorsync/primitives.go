// Package cursorsync reconciles the system cursor with the virtual
// pointing device's internal position tracker around every pointer
// action.
package cursorsync

// CursorPrimitives is the set of OS calls the sync engine needs: moving
// the system cursor without generating an HID event, reading its current
// position, and dissociating/associating it from physical mouse motion.
// The darwin implementation wraps CoreGraphics; see primitives_darwin.go.
type CursorPrimitives interface {
	Warp(x, y float64) error
	CurrentPosition() (x, y float64, err error)
	SetAssociation(associated bool) error
}
