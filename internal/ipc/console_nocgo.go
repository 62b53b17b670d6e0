//go:build !cgo

package ipc

// ConsoleUID always reports no resolvable console user when built without
// cgo, matching the fail-closed default (socket mode 0000, no connections
// ever accepted as non-root). Real resolution needs SystemConfiguration
// via cgo; see console_darwin.go.
func ConsoleUID() (int, bool) {
	return -1, false
}
