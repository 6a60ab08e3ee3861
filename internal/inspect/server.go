package inspect

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fsroutes/internal/watch"
	"github.com/vango-dev/fsroutes/pkg/project"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes metrics from g on /metrics. Without it /metrics is
// not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithWatcher makes Run poll for route file changes and feed them to the
// project.
func WithWatcher(w *watch.Watcher) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// Server is the route inspector.
type Server struct {
	project  *project.Project
	hub      *Hub
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	watcher  *watch.Watcher
	handler  http.Handler

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
}

// New creates an inspector for p. Invalidations of p are broadcast to event
// stream clients.
func New(p *project.Project, opts ...Option) *Server {
	s := &Server{
		project: p,
		hub:     NewHub(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "inspect")

	p.OnInvalidate(func(inv project.Invalidation) {
		s.hub.Broadcast(Message{Type: MessageInvalidate, Table: string(inv.Table), Path: inv.Path})
	})

	s.handler = s.routes()
	return s
}

// routes builds the HTTP handler.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/_routes", func(r chi.Router) {
		r.Get("/pages", s.handlePages)
		r.Get("/endpoints", s.handleEndpoints)
		r.Get("/match", s.handleMatch)
		r.Get("/endpoint", s.handleEndpoint)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/invalidate", s.handleInvalidate)
		r.Get("/events", s.hub.HandleWebSocket)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the inspector HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves on addr until ctx is done. With a watcher configured, file
// events are fed to the project while serving.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.OnEvent(func(ev watch.Event) {
			if tables := s.project.HandleEvent(ev); len(tables) > 0 {
				s.logger.Info("route file changed", "op", ev.Op.String(), "path", ev.Path)
			}
		})
		go s.watcher.Start(ctx)
	}

	s.logger.Info("route inspector running", "addr", "http://"+addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the server, the watcher and all event stream clients.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}
