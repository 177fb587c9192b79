package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/forum-be/internal/auth"
	"github.com/hongminglow/forum-be/internal/config"
	"github.com/hongminglow/forum-be/internal/http/handlers"
	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/metrics"
	"github.com/hongminglow/forum-be/internal/middleware"
	"github.com/hongminglow/forum-be/internal/session"
	"github.com/hongminglow/forum-be/internal/storage"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Users  storage.UserStore
	Posts  storage.PostStore
	DB     storage.Pinger
	Logger *slog.Logger
	// Registry receives the server's collectors and backs GET /metrics. Nil creates a private one.
	Registry *prometheus.Registry
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	service := auth.NewService(deps.Users, auth.NewBcryptHasher(cfg.BcryptCost), logger, metrics.NewAuth(reg))
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	cookies := session.NewStore(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.MaxAge, cfg.Session.Secure)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.DB).Register(mux)
	handlers.NewAuthHandler(service, tokens, logger).Register(mux)
	handlers.NewPostsHandler(deps.Posts, logger).Register(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	sessions := middleware.NewSession(cookies, service, tokens, logger)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, sessions.Handler(mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &Server{inner: httpServer}
}

// Handler exposes the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	return s.inner.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
