package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "finitefield.org/tours-admin/internal/admin/httpserver/middleware"
	"finitefield.org/tours-admin/internal/admin/pages"
	"finitefield.org/tours-admin/internal/admin/rbac"
	"finitefield.org/tours-admin/internal/platform/httpx"
	"finitefield.org/tours-admin/internal/platform/observability"
)

const (
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultRequestTimeout = 60 * time.Second
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address        string
	BasePath       string
	Authenticator  custommw.Authenticator
	Pages          pages.Service
	Logger         *zap.Logger
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	// Now stamps booking notifications. Defaults to time.Now.
	Now func() time.Time
}

// New constructs the HTTP server with its middleware stack and API routes.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(durationOr(cfg.RequestTimeout, defaultRequestTimeout)))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "route not found", http.StatusNotFound))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(r.Context(), w, httpx.NewError("method_not_allowed", "method not allowed", http.StatusMethodNotAllowed))
	})

	started := time.Now()
	router.Get("/healthz", healthHandler(started))

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mountAPIRoutes(router, normalizeBasePath(cfg.BasePath), routeOptions{
		Authenticator: authenticator,
		Handlers:      &handlers{pages: cfg.Pages, now: now},
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	Handlers      *handlers
}

func mountAPIRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	router.Route(base, func(r chi.Router) {
		r.Use(custommw.NoStore())
		r.Use(custommw.Auth(opts.Authenticator))

		r.With(custommw.RequireCapability(rbac.CapPagesList)).Get("/get-php-files", h.listDocuments)
		r.With(custommw.RequireCapability(rbac.CapPagesTranslate)).Post("/parse-php-content", h.extractContent)
		r.With(custommw.RequireCapability(rbac.CapPagesTranslate)).Post("/generate-french-page", h.generatePage)
		r.With(custommw.RequireCapability(rbac.CapBookingsNotify)).Post("/booking-email/preview", h.previewBookingEmail)
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/api"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
