// Package statushttp serves a loopback-only HTTP diagnostics endpoint
// alongside the privileged command socket, for health probes and local
// monitoring that should not need peer-credential authentication.
package statushttp

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mirroir/internal/hidclient"
	"mirroir/internal/logging"
)

var errNotLoopback = errors.New("statushttp: addr must be a loopback address")

// Source reports the daemon state the endpoint exposes. *hidclient.Client
// satisfies it directly.
type Source interface {
	KeyboardReady() bool
	PointingReady() bool
	Doctor() hidclient.Diagnostics
}

// Server is a loopback HTTP server exposing /healthz and /status.
type Server struct {
	addr   string
	src    Source
	log    *logging.Logger
	server *http.Server
}

// New builds a status server bound to a loopback address such as
// "127.0.0.1:7273". It does not listen until Start is called.
func New(addr string, src Source, log *logging.Logger) *Server {
	s := &Server{addr: addr, src: src, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start binds the listener and serves in a background goroutine. It
// refuses to bind to anything but loopback, since this endpoint carries
// no authentication of its own.
func (s *Server) Start() error {
	host, _, err := net.SplitHostPort(s.addr)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		if host != "localhost" {
			return errNotLoopback
		}
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Warn("status server stopped", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return s.server.Close()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusPayload struct {
	KeyboardReady bool   `json:"keyboard_ready"`
	PointingReady bool   `json:"pointing_ready"`
	HIDState      string `json:"hid_state"`
	SendErrors    int    `json:"consecutive_send_errors"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	diag := s.src.Doctor()
	payload := statusPayload{
		KeyboardReady: s.src.KeyboardReady(),
		PointingReady: s.src.PointingReady(),
		HIDState:      diag.State,
		SendErrors:    diag.ConsecutiveSendErrors,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
