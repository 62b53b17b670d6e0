// Package policy implements the fail-closed permission policy over
// high-level capability names: a JSON settings file resolved first from
// the current working directory's config dir, then the user's home config
// dir, with allow/deny/blocked_apps lists and wildcard support.
package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mirroir/internal/logging"
)

const appDirName = ".mirroir"
const fileName = "permissions.json"

// readOnlyCapabilities are always allowed regardless of policy file
// contents.
var readOnlyCapabilities = map[string]bool{
	"status":            true,
	"screen_capture":    true,
	"window_status":     true,
	"enumerate_windows": true,
	"describe_screen":   true,
}

// file is the on-disk shape of permissions.json.
type file struct {
	Allow       []string `json:"allow"`
	Deny        []string `json:"deny"`
	BlockedApps []string `json:"blocked_apps"`
}

// Policy is the resolved, queryable permission policy. Safe for concurrent
// use; Reload atomically swaps the in-memory snapshot.
type Policy struct {
	mu             sync.RWMutex
	allow          map[string]bool
	allowAll       bool
	deny           map[string]bool
	blockedApps    map[string]bool
	skipPermissions bool

	paths []string
	log   *logging.Logger
}

// SearchPaths returns the two candidate permissions.json locations, in
// resolution order: <cwd>/.mirroir/permissions.json, $HOME/.mirroir/permissions.json.
func SearchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, appDirName, fileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, appDirName, fileName))
	}
	return paths
}

// Load resolves the policy from the first existing file in SearchPaths.
// A missing file yields a policy that allows only read-only capabilities,
// per the documented default: a missing file makes only read-only tools visible.
func Load(log *logging.Logger, skipPermissions bool) (*Policy, error) {
	p := &Policy{
		allow:           map[string]bool{},
		deny:            map[string]bool{},
		blockedApps:     map[string]bool{},
		paths:           SearchPaths(),
		log:             log,
		skipPermissions: skipPermissions,
	}
	if skipPermissions && log != nil {
		log.Warn("permission policy bypassed: skip-permissions is active")
	}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload forces an immediate re-read of the permission policy file,
// outside the fsnotify watch cycle WatchAndReload drives. Used by the
// daemon's reload_policy action.
func (p *Policy) Reload() error {
	return p.reload()
}

func (p *Policy) reload() error {
	for _, path := range p.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		var f file
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		p.apply(f)
		return nil
	}
	p.apply(file{})
	return nil
}

func (p *Policy) apply(f file) {
	allow := map[string]bool{}
	allowAll := false
	for _, name := range f.Allow {
		if name == "*" {
			allowAll = true
			continue
		}
		allow[name] = true
	}
	deny := map[string]bool{}
	for _, name := range f.Deny {
		deny[name] = true
	}
	blocked := map[string]bool{}
	for _, name := range f.BlockedApps {
		blocked[name] = true
	}

	p.mu.Lock()
	p.allow, p.allowAll, p.deny, p.blockedApps = allow, allowAll, deny, blocked
	p.mu.Unlock()
}

// Allowed reports whether capability name is permitted to execute.
func (p *Policy) Allowed(name string) bool {
	if p.skipPermissions {
		return true
	}
	if readOnlyCapabilities[name] {
		return true
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.deny[name] {
		return false
	}
	if p.allowAll || p.allow[name] {
		return true
	}
	return false
}

// Visible reports whether capability name's tool descriptor should be
// shown to the hosting MCP collaborator at all — denied tools are hidden,
// not merely denied.
func (p *Policy) Visible(name string) bool {
	return p.Allowed(name)
}

// AppBlocked reports whether launch_app should refuse to target appName.
func (p *Policy) AppBlocked(appName string) bool {
	if p.skipPermissions {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.blockedApps[appName]
}

// WatchAndReload starts an fsnotify watch on both candidate permission
// file paths and hot-reloads the policy whenever either changes. It runs
// until stop is closed.
func (p *Policy) WatchAndReload(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, path := range p.paths {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err == nil {
			_ = watcher.Add(dir)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != fileName {
					continue
				}
				if err := p.reload(); err != nil {
					if p.log != nil {
						p.log.Warn("permission policy reload failed", "error", err)
					}
					continue
				}
				if p.log != nil {
					p.log.Info("permission policy reloaded", "path", event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if p.log != nil {
					p.log.Warn("permission policy watch error", "error", err)
				}
			}
		}
	}()

	return nil
}
