// Package webserver hosts the hotline: provider webhooks under /voice, the
// browser client under /web, and the JSON API, assets and tokens beside them.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/roboyoz/hotline/internal/alert"
	"github.com/roboyoz/hotline/internal/assets"
	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/response"
	"github.com/roboyoz/hotline/internal/twilio"
)

// DefaultAddr is used when Config.Addr is empty.
const DefaultAddr = ":8080"

// shutdownTimeout bounds how long in-flight webhooks get to finish.
const shutdownTimeout = 5 * time.Second

// Config holds the HTTP server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string

	Machine  *flow.Machine
	Store    interview.Store
	Notifier alert.Notifier
	Lookup   twilio.CallerNamer
	Voice    response.VoiceOptions
	Tokens   twilio.TokenConfig
	// Assets is optional; without it /asset is not served.
	Assets assets.Store

	// SignatureToken turns on webhook signature checks for /voice.
	SignatureToken string
	// PublicURL is the origin the provider signs against.
	PublicURL string

	Logger *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Machine == nil {
		return nil, errors.New("webserver: a call-flow machine is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("webserver: an interview store is required")
	}

	handler, err := routes(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelWarn),
		},
	}, nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server starting", "address", ln.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
