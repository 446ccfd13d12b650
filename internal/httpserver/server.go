package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Timeouts bounds the phases of a connection. Zero values fall back to the defaults.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on addr.
func New(addr string, handler http.Handler, timeouts Timeouts) *Server {
	if timeouts.ReadHeader <= 0 {
		timeouts.ReadHeader = 5 * time.Second
	}
	if timeouts.Write <= 0 {
		timeouts.Write = 10 * time.Minute
	}
	if timeouts.Idle <= 0 {
		timeouts.Idle = 2 * time.Minute
	}
	return &Server{
		inner: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
	}
}

// Start begins serving HTTP traffic. It returns nil once Shutdown completes.
func (s *Server) Start() error {
	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	if err := s.inner.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
