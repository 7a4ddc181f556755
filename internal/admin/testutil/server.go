package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"finitefield.org/tours-admin/internal/admin/httpserver"
	"finitefield.org/tours-admin/internal/admin/httpserver/middleware"
	"finitefield.org/tours-admin/internal/admin/pages"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the API routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithPagesService wires a page service implementation.
func WithPagesService(service pages.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Pages = service
	}
}

// WithLogger replaces the no-op logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// WithClock fixes the time stamped on booking notifications.
func WithClock(now time.Time) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Now = func() time.Time { return now }
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with
// sensible defaults. No page service is wired unless WithPagesService is given.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:       ":0",
		BasePath:      "/api",
		Authenticator: middleware.DefaultAuthenticator(),
		Logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
