// Package server owns the gateway's HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/api"
	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns the default HTTP server configuration. WriteTimeout
// leaves headroom over the per-dispatch timeout so a slow remote call is
// reported as a tagged failure rather than a severed connection.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: dispatch.CallTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the gateway HTTP server.
type Server struct {
	config Config
	http   *http.Server
}

// NewServer builds the gateway server. bus and recorder may be nil.
func NewServer(d *dispatch.Dispatcher, bus eventbus.EventBus, recorder *audit.Recorder, config Config) *Server {
	return &Server{
		config: config,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      api.NewRouter(d, bus, recorder),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start serves HTTP and blocks until the listener fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	fmt.Printf("Starting HTTP server on %s\n", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("Shutting down server...")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	fmt.Println("Server shutdown complete")
	return nil
}
