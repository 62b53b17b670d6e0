//go:build darwin && cgo

package cursorsync

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics

#include <ApplicationServices/ApplicationServices.h>

static int cgWarp(double x, double y) {
    CGPoint p = CGPointMake(x, y);
    return (int)CGWarpMouseCursorPosition(p);
}

static int cgAssociate(int associated) {
    return (int)CGAssociateMouseAndMouseCursorPosition(associated ? true : false);
}

// cgCurrentPosition reads the cursor location via the current event, which
// is how CoreGraphics recommends querying pointer position without
// installing an event tap.
static void cgCurrentPosition(double *x, double *y) {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint p = CGEventGetLocation(event);
    CFRelease(event);
    *x = p.x;
    *y = p.y;
}
*/
import "C"

import "fmt"

// darwinPrimitives implements CursorPrimitives on top of CoreGraphics.
type darwinPrimitives struct{}

// NewPrimitives returns the darwin CursorPrimitives implementation.
func NewPrimitives() CursorPrimitives {
	return darwinPrimitives{}
}

func (darwinPrimitives) Warp(x, y float64) error {
	if rc := C.cgWarp(C.double(x), C.double(y)); rc != 0 {
		return fmt.Errorf("CGWarpMouseCursorPosition failed: rc=%d", int(rc))
	}
	return nil
}

func (darwinPrimitives) CurrentPosition() (float64, float64, error) {
	var cx, cy C.double
	C.cgCurrentPosition(&cx, &cy)
	return float64(cx), float64(cy), nil
}

func (darwinPrimitives) SetAssociation(associated bool) error {
	var v C.int
	if associated {
		v = 1
	}
	if rc := C.cgAssociate(v); rc != 0 {
		return fmt.Errorf("CGAssociateMouseAndMouseCursorPosition failed: rc=%d", int(rc))
	}
	return nil
}
