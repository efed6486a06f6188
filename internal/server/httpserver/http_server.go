// Package httpserver wires the HTTP surfaces of the service: the public
// API port external agents call, and the admin port for health, metrics,
// and site history.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/server/handlers"
	smw "git.home.luguber.info/inful/sitebuilder/internal/server/middleware"
)

// Options configures runtime-specific server wiring.
type Options struct {
	// PrometheusHandler serves /metrics on the admin port when set.
	PrometheusHandler http.Handler

	Logger *slog.Logger
}

// Server manages the API and admin HTTP endpoints.
type Server struct {
	cfg  *config.Config
	opts Options
	log  *slog.Logger

	handlers *handlers.PipelineHandlers
	mchain   func(http.Handler) http.Handler

	apiServer   *http.Server
	adminServer *http.Server
}

// New constructs the HTTP server wiring.
func New(cfg *config.Config, pipeline handlers.Pipeline, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	adapter := sberrors.NewHTTPErrorAdapter(log)
	return &Server{
		cfg:      cfg,
		opts:     opts,
		log:      log,
		handlers: handlers.NewPipelineHandlers(pipeline, adapter, log),
		mchain:   smw.Chain(log, adapter),
	}
}

// APIHandler returns the public API handler with middleware applied.
// Exposed for tests.
func (s *Server) APIHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-website", s.handlers.GenerateWebsite)
	mux.HandleFunc("POST /bootstrap", s.handlers.Bootstrap)
	mux.HandleFunc("POST /submit-assets", s.handlers.SubmitAssets)
	mux.HandleFunc("POST /deploy", s.handlers.Deploy)
	mux.HandleFunc("GET /health", s.handlers.Health)
	return s.mchain(mux)
}

// AdminHandler returns the admin surface handler with middleware applied.
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handlers.Health)
	mux.HandleFunc("GET /sites", s.handlers.Sites)
	mux.HandleFunc("GET /sites/{id}/events", s.handlers.SiteEvents)
	mux.HandleFunc("GET /audit", s.handlers.Audit)
	if s.opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", s.opts.PrometheusHandler)
	}
	return s.mchain(mux)
}

// Start pre-binds both ports so startup fails fast with an aggregate error
// instead of partially initialized servers, then serves on the bound
// listeners.
func (s *Server) Start(ctx context.Context) error {
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "api", port: s.cfg.Server.Port},
		{name: "admin", port: s.cfg.Server.AdminPort},
	}

	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", binds[i].port))
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	s.apiServer = &http.Server{
		Handler:           s.APIHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.adminServer = &http.Server{
		Handler:           s.AdminHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serve("api", s.apiServer, binds[0].ln)
	s.serve("admin", s.adminServer, binds[1].ln)

	s.log.Info("HTTP servers started",
		slog.Int("api_port", s.cfg.Server.Port),
		slog.Int("admin_port", s.cfg.Server.AdminPort))
	return nil
}

func (s *Server) serve(kind string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(fmt.Sprintf("%s server error", kind), slog.Any("error", err))
		}
	}()
}

// Stop gracefully shuts down both servers.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.apiServer != nil {
		if err := s.apiServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.log.Info("HTTP servers stopped")
	return nil
}
