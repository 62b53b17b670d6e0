// Package mirrorerr classifies failures across the daemon and orchestrator
// into the taxonomy named in the error-handling design: Configuration,
// Protocol, Authorization, Device, Transport, and Input (a warning, not a
// failure). Callers switch on Kind instead of matching error strings.
package mirrorerr

import "fmt"

// Kind names one of the failure classes.
type Kind int

const (
	// Unknown is the zero value; never intentionally returned.
	Unknown Kind = iota
	// Configuration covers daemon socket setup and virtual-HID init failures.
	// These are fatal at daemon startup.
	Configuration
	// Protocol covers malformed requests, unknown actions, bad parameters.
	Protocol
	// Authorization covers rejected peers and denied capabilities.
	Authorization
	// Device covers virtual-HID readiness and send failures.
	Device
	// Transport covers socket send/receive failures and exhausted idle timeouts.
	Transport
	// Input is not a failure: one or more characters were unrepresentable.
	// The action still succeeds; Input is carried only for classification.
	Input
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Protocol:
		return "protocol"
	case Authorization:
		return "authorization"
	case Device:
		return "device"
	case Transport:
		return "transport"
	case Input:
		return "input"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given Kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Wrapf is a convenience for mirrorerr.New(kind, fmt.Errorf(format, args...)).
func Wrapf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
