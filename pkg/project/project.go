package project

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/watch"
	"github.com/vango-dev/fsroutes/pkg/routecache"
	"github.com/vango-dev/fsroutes/pkg/router"
)

// Table names one of the two route tables of a project.
type Table string

const (
	TablePages     Table = "pages"
	TableEndpoints Table = "endpoints"
)

// Invalidation describes a cache invalidation caused by a file event.
type Invalidation struct {
	Table Table    `json:"table"`
	Path  string   `json:"path,omitempty"`
	Op    watch.Op `json:"-"`
}

// Snapshot holds both route tables.
type Snapshot struct {
	Pages     []router.Route         `json:"pages"`
	Endpoints []router.EndpointRoute `json:"endpoints"`
}

// Option configures a Project.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry prometheus.Registerer
	tracer   trace.Tracer
}

// WithLogger sets the logger for the project and its caches.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers cache metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithTracer sets the tracer used for scan spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// Project serves the route tables of one project root.
type Project struct {
	cfg      *config.Config
	logger   *slog.Logger
	scanOpts []router.ScannerOption

	pages     *routecache.Cache[[]router.Route]
	endpoints *routecache.Cache[[]router.EndpointRoute]

	mu        sync.Mutex
	listeners []func(Invalidation)
}

// New creates a project for cfg.
func New(cfg *config.Config, opts ...Option) *Project {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With("component", "project", "root", cfg.Root())
	p := &Project{
		cfg:      cfg,
		logger:   logger,
		scanOpts: append(cfg.ScannerOptions(), router.WithLogger(logger)),
	}

	cacheOpts := func(name string) []routecache.Option {
		co := []routecache.Option{routecache.WithName(name), routecache.WithLogger(logger)}
		if o.registry != nil {
			co = append(co, routecache.WithMetrics(o.registry))
		}
		if o.tracer != nil {
			co = append(co, routecache.WithTracer(o.tracer))
		}
		return co
	}

	p.pages = routecache.New(p.scanPages, cacheOpts(string(TablePages))...)
	p.endpoints = routecache.New(p.scanEndpoints, cacheOpts(string(TableEndpoints))...)
	return p
}

// Config returns the project configuration.
func (p *Project) Config() *config.Config {
	return p.cfg
}

func (p *Project) scanPages(ctx context.Context, dir string) ([]router.Route, error) {
	return router.ScanPages(ctx, dir, p.scanOpts...)
}

// scanEndpoints ignores dir beyond keying; both endpoint directories are
// resolved from the config.
func (p *Project) scanEndpoints(ctx context.Context, _ string) ([]router.EndpointRoute, error) {
	s := router.NewEndpointScanner(p.cfg.Root(), p.scanOpts...)
	for _, kind := range router.EndpointKinds {
		s.SetDir(kind, p.cfg.EndpointPath(kind))
	}
	return s.Scan(ctx)
}

// Pages returns the nested page tree.
func (p *Project) Pages(ctx context.Context) ([]router.Route, error) {
	return p.pages.Scan(ctx, p.cfg.PagesPath())
}

// Endpoints returns the flat endpoint list.
func (p *Project) Endpoints(ctx context.Context) ([]router.EndpointRoute, error) {
	return p.endpoints.Scan(ctx, p.cfg.ServerPath())
}

// Scan returns both route tables, scanning them concurrently on a miss.
func (p *Project) Scan(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pages, err := p.Pages(gctx)
		snap.Pages = pages
		return err
	})
	g.Go(func() error {
		endpoints, err := p.Endpoints(gctx)
		snap.Endpoints = endpoints
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// MatchPage matches a URL against the page tree.
func (p *Project) MatchPage(ctx context.Context, rawURL string) (*router.PageMatch, bool, error) {
	pages, err := p.Pages(ctx)
	if err != nil {
		return nil, false, err
	}
	m, ok := router.Match(rawURL, pages)
	return m, ok, nil
}

// MatchEndpoint matches a request path and method against the endpoints.
func (p *Project) MatchEndpoint(ctx context.Context, pathname, method string) (*router.EndpointMatch, bool, error) {
	endpoints, err := p.Endpoints(ctx)
	if err != nil {
		return nil, false, err
	}
	m, ok := router.MatchEndpoint(pathname, method, endpoints)
	return m, ok, nil
}

// AllowedMethods returns the methods served at pathname.
func (p *Project) AllowedMethods(ctx context.Context, pathname string) ([]string, error) {
	endpoints, err := p.Endpoints(ctx)
	if err != nil {
		return nil, err
	}
	return router.AllowedMethods(pathname, endpoints), nil
}

// Validate scans both tables and returns the route diagnostics.
func (p *Project) Validate(ctx context.Context) ([]router.ValidationError, error) {
	snap, err := p.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return router.Validate(snap.Pages, snap.Endpoints), nil
}

// OnInvalidate registers fn to be called after every invalidation.
func (p *Project) OnInvalidate(fn func(Invalidation)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Invalidate drops the cached tables so the next access rescans them.
// Without arguments both tables are dropped.
func (p *Project) Invalidate(tables ...Table) {
	if len(tables) == 0 {
		tables = []Table{TablePages, TableEndpoints}
	}
	for _, t := range tables {
		p.invalidate(Invalidation{Table: t})
	}
}

func (p *Project) invalidate(inv Invalidation) {
	switch inv.Table {
	case TablePages:
		p.pages.Invalidate(p.cfg.PagesPath())
	case TableEndpoints:
		p.endpoints.Invalidate(p.cfg.ServerPath())
	default:
		return
	}

	p.logger.Debug("route table invalidated", "table", inv.Table, "path", inv.Path)

	p.mu.Lock()
	listeners := append(([]func(Invalidation))(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(inv)
	}
}

// HandleEvent invalidates the tables affected by a file event and returns
// them. Only additions and removals of route files matter; modifications
// never change a route table.
func (p *Project) HandleEvent(ev watch.Event) []Table {
	if ev.Op != watch.OpAdd && ev.Op != watch.OpRemove {
		return nil
	}

	var tables []Table
	if p.isRouteFile(p.cfg.PagesPath(), ev.Path) {
		tables = append(tables, TablePages)
	}
	for _, kind := range router.EndpointKinds {
		if p.isRouteFile(p.cfg.EndpointPath(kind), ev.Path) {
			tables = append(tables, TableEndpoints)
			break
		}
	}

	for _, t := range tables {
		p.invalidate(Invalidation{Table: t, Path: ev.Path, Op: ev.Op})
	}
	return tables
}

// isRouteFile reports whether path lies below dir and names a route file.
func (p *Project) isRouteFile(dir, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return router.IsRouteFile(rel, p.scanOpts...)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Project) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the project carried by ctx, or nil.
func FromContext(ctx context.Context) *Project {
	p, _ := ctx.Value(contextKey{}).(*Project)
	return p
}
