// mirroird is the root-privileged helper daemon: it owns the virtual-HID
// client, the cursor-sync engine, and the keyboard pipeline, and exposes
// them over a local stream socket to the user-side orchestrator.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"mirroir/internal/cursorsync"
	"mirroir/internal/daemon"
	"mirroir/internal/hidclient"
	"mirroir/internal/ipc"
	"mirroir/internal/keyboard"
	"mirroir/internal/logging"
	"mirroir/internal/policy"
	"mirroir/internal/statushttp"
	"mirroir/internal/tunables"
)

const (
	defaultSocketPath     = "/var/run/mirroird.sock"
	defaultHIDServiceDir  = "/var/run/mirroird-hid"
	defaultTunablesPath   = "/etc/mirroird/settings.json"
	defaultStatusAddr     = "127.0.0.1:7273"
	hidServiceDirEnvVar   = "MIRROIR_HID_SERVICE_DIR"
	statusAddrEnvVar      = "MIRROIR_STATUS_ADDR"
)

// Daemon wires the socket server to the virtual-HID client, cursor-sync
// engine, and keyboard pipeline, plus a loopback diagnostics endpoint.
type Daemon struct {
	server     *ipc.Server
	status     *statushttp.Server
	hid        *hidclient.Client
	log        *logging.Logger
	policyStop chan struct{}
}

// NewDaemon builds a Daemon but does not start it.
func NewDaemon(socketPath string, log *logging.Logger) (*Daemon, error) {
	tun, err := tunables.Resolve(defaultTunablesPath)
	if err != nil {
		return nil, fmt.Errorf("resolve tunables: %w", err)
	}

	serviceDir := os.Getenv(hidServiceDirEnvVar)
	if serviceDir == "" {
		serviceDir = defaultHIDServiceDir
	}

	hid := hidclient.New(serviceDir, log)
	if err := hid.Connect(); err != nil {
		return nil, fmt.Errorf("connect virtual-hid client: %w", err)
	}

	primitives := cursorsync.NewPrimitives()
	engine := cursorsync.New(primitives, hid, tun, log)
	pipeline := keyboard.NewPipeline(hid, tun)

	pol, err := policy.Load(log, false)
	if err != nil {
		return nil, fmt.Errorf("load permission policy: %w", err)
	}
	policyStop := make(chan struct{})
	if err := pol.WatchAndReload(policyStop); err != nil {
		log.Warn("permission policy hot-reload unavailable", "error", err)
	}

	// reload forces an immediate re-read of the permission policy and
	// tunables files, outside the fsnotify watch cycle, for the
	// reload_policy action.
	reload := func() error {
		newTun, err := tunables.Resolve(defaultTunablesPath)
		if err != nil {
			return fmt.Errorf("resolve tunables: %w", err)
		}
		if err := pol.Reload(); err != nil {
			return fmt.Errorf("reload permission policy: %w", err)
		}
		engine.SetTunables(newTun)
		pipeline.SetTunables(newTun)
		log.Info("policy and tunables reloaded")
		return nil
	}

	handler := daemon.New(hid, engine, pipeline, log, reload)

	serverCfg := ipc.ServerConfig{
		SocketPath:      socketPath,
		RecvTimeout:     durationFromSeconds(tun.RecvTimeoutSec),
		IdleMaxTimeouts: tun.IdleMaxTimeouts,
	}
	server := ipc.NewServer(serverCfg, handler, log)

	statusAddr := os.Getenv(statusAddrEnvVar)
	if statusAddr == "" {
		statusAddr = defaultStatusAddr
	}
	status := statushttp.New(statusAddr, hid, log)

	return &Daemon{server: server, status: status, hid: hid, log: log, policyStop: policyStop}, nil
}

// Start begins listening. It returns only after the socket is set up and
// accepting connections; errors here are fatal at daemon startup.
func (d *Daemon) Start() error {
	if err := os.MkdirAll(filepath.Dir(d.server.SocketPath()), 0755); err != nil {
		return fmt.Errorf("create socket parent dir: %w", err)
	}
	if err := d.server.Start(); err != nil {
		return err
	}
	if err := d.status.Start(); err != nil {
		d.server.Stop()
		return fmt.Errorf("start status endpoint: %w", err)
	}
	return nil
}

// Stop shuts down the status endpoint, socket server, and virtual-HID
// client.
func (d *Daemon) Stop() error {
	close(d.policyStop)
	d.status.Stop()
	serverErr := d.server.Stop()
	hidErr := d.hid.Close()
	if serverErr != nil {
		return serverErr
	}
	return hidErr
}

// SocketPath returns the daemon's listening socket path.
func (d *Daemon) SocketPath() string { return d.server.SocketPath() }
