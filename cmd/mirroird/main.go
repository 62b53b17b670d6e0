package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"mirroir/internal/logging"
)

// Version information (set via ldflags during build).
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

func durationFromSeconds(n int) time.Duration {
	if n <= 0 {
		n = 5
	}
	return time.Duration(n) * time.Second
}

func main() {
	socketPath := flag.String("socket", defaultSocketPath, "daemon socket path")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("mirroird %s (%s, built %s)\n", Version, Commit, BuildTime)
		return
	}

	log, err := logging.New(logging.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logging.DefaultCrashHandler().SetVersion(Version)
	defer logging.RecoverPanic()

	log.Info("starting mirroird", "version", Version, "socket", *socketPath)

	d, err := NewDaemon(*socketPath, log)
	if err != nil {
		log.Error("failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	if err := d.Start(); err != nil {
		log.Error("failed to start daemon", "error", err)
		os.Exit(1)
	}
	log.Info("mirroird listening", "socket", d.SocketPath())

	// A background goroutine sets an atomic flag on a termination signal;
	// the main goroutine polls it every 200ms and then performs a clean
	// shutdown.
	var terminate atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		terminate.Store(true)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for !terminate.Load() {
		<-ticker.C
	}

	log.Info("shutting down mirroird")
	if err := d.Stop(); err != nil {
		log.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("mirroird stopped")
}
