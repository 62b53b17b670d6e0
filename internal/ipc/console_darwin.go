//go:build darwin && cgo

package ipc

/*
#cgo LDFLAGS: -framework SystemConfiguration -framework CoreFoundation

#include <SystemConfiguration/SystemConfiguration.h>
#include <stdlib.h>

// consoleUserUID returns the uid of the user currently logged in at the
// physical display, or -1 if none is resolvable (e.g. at the login
// window). Mirrors SCDynamicStoreCopyConsoleUser, the documented way to
// ask the OS's session service for the console user.
static int consoleUserUID(void) {
    uid_t uid = (uid_t)-1;
    CFStringRef name = SCDynamicStoreCopyConsoleUser(NULL, &uid, NULL);
    if (name == NULL) {
        return -1;
    }
    CFRelease(name);
    return (int)uid;
}
*/
import "C"

// ConsoleUID resolves the uid of the user currently logged in at the
// physical display. It returns (-1, false) if no console user is
// resolvable, matching the daemon's socket-setup rule of locking the
// socket mode to 0000 until someone logs in.
func ConsoleUID() (int, bool) {
	uid := int(C.consoleUserUID())
	if uid < 0 {
		return -1, false
	}
	return uid, true
}
