//go:build darwin

package ipc

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// GetPeerCredentials retrieves the credentials of the peer process
// connected to a Unix socket via LOCAL_PEERCRED.
func GetPeerCredentials(conn net.Conn) (*PeerCredentials, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("not a unix connection")
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("get raw conn: %w", err)
	}

	var cred *unix.Xucred
	var credErr error

	err = rawConn.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
	})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	if credErr != nil {
		return nil, fmt.Errorf("getsockopt: %w", credErr)
	}

	return &PeerCredentials{
		PID: 0, // macOS Xucred doesn't carry a PID
		UID: int(cred.Uid),
		GID: int(cred.Groups[0]),
	}, nil
}

// VerifyPeerIsAllowed reports whether a connecting peer's uid is either
// root (0) or the given console uid, per the daemon's peer
// authentication rule.
func VerifyPeerIsAllowed(conn net.Conn, consoleUID int) (bool, int, error) {
	cred, err := GetPeerCredentials(conn)
	if err != nil {
		return false, -1, err
	}
	return cred.UID == 0 || cred.UID == consoleUID, cred.UID, nil
}
