package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPolicy() *Policy {
	return &Policy{
		allow:       map[string]bool{},
		deny:        map[string]bool{},
		blockedApps: map[string]bool{},
	}
}

func TestReadOnlyCapabilitiesAlwaysAllowed(t *testing.T) {
	p := newTestPolicy()
	p.apply(file{})
	assert.True(t, p.Allowed("status"))
	assert.True(t, p.Allowed("screen_capture"))
}

func TestMissingFileDefaultsToReadOnly(t *testing.T) {
	p := newTestPolicy()
	p.apply(file{})
	assert.False(t, p.Allowed("tap"))
	assert.False(t, p.Visible("tap"))
}

func TestWildcardAllowsEverythingNotDenied(t *testing.T) {
	p := newTestPolicy()
	p.apply(file{Allow: []string{"*"}, Deny: []string{"type"}})
	assert.True(t, p.Allowed("tap"))
	assert.False(t, p.Allowed("type"), "explicit deny wins over wildcard allow")
}

func TestExplicitAllowList(t *testing.T) {
	p := newTestPolicy()
	p.apply(file{Allow: []string{"tap", "drag"}})
	assert.True(t, p.Allowed("tap"))
	assert.True(t, p.Allowed("drag"))
	assert.False(t, p.Allowed("type"))
}

func TestSkipPermissionsBypassesEverything(t *testing.T) {
	p := newTestPolicy()
	p.skipPermissions = true
	p.apply(file{Deny: []string{"tap"}})
	assert.True(t, p.Allowed("tap"))
	assert.False(t, p.AppBlocked("Safari"))
}

func TestAppBlocked(t *testing.T) {
	p := newTestPolicy()
	p.apply(file{BlockedApps: []string{"Safari"}})
	assert.True(t, p.AppBlocked("Safari"))
	assert.False(t, p.AppBlocked("Notes"))
}
