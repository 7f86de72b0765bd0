// Package server exposes the HTTP surface: the login redirect, the
// authorization callback, and the send endpoint, plus health probes.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sendgate/sendgate/internal/mailer"
)

// Default middleware settings.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRateLimitRPS   = rate.Limit(5)
	DefaultRateLimitBurst = 10
)

// AuthCoordinator drives the delegated-authorization handshake.
type AuthCoordinator interface {
	Start(ctx context.Context) (string, error)
	Complete(ctx context.Context, state, code string) (string, error)
}

// MailDispatcher sends a message on behalf of a stored identity.
type MailDispatcher interface {
	Send(ctx context.Context, identity, to, subject, body string, att *mailer.Attachment) error
}

// Options configures the HTTP server.
type Options struct {
	// ClientAppOrigin is the single-page client's origin: the CORS
	// allowlist entry and the post-login redirect target.
	ClientAppOrigin string

	// MaxAttachmentBytes bounds uploaded attachment size.
	MaxAttachmentBytes int64

	// RequestTimeout bounds each request, including its external calls.
	RequestTimeout time.Duration

	RateLimitRPS   rate.Limit
	RateLimitBurst int
}

func (o *Options) applyDefaults() {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = DefaultRateLimitRPS
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = DefaultRateLimitBurst
	}
}

// Server is the HTTP front of the application.
type Server struct {
	opts       Options
	coord      AuthCoordinator
	dispatcher MailDispatcher
	health     *HealthChecker
	limiter    *IPRateLimiter
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates the server and mounts all routes.
func New(opts Options, coord AuthCoordinator, dispatcher MailDispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts.applyDefaults()

	s := &Server{
		opts:       opts,
		coord:      coord,
		dispatcher: dispatcher,
		health:     NewHealthChecker(),
		limiter:    NewIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(PanicRecovery(logger))
	r.Use(CORS(opts.ClientAppOrigin))
	r.Use(s.limiter.Middleware)

	s.health.Register(r)
	r.Get("/login", s.handleLogin)
	r.Get("/auth/callback", s.handleCallback)
	r.Post("/send", s.handleSend)

	s.router = r
	return s
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until it is shut down.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// WriteTimeout leaves headroom over the per-request timeout
		WriteTimeout: s.opts.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting http server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	s.limiter.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
