// Package place2b is the web application of The Place 2B, an events and
// blog site backed by a Sanity dataset. It is built with Go, Echo and templ.
//
// Content comes from the CMS when it is configured and reachable and from a
// bundled fallback dataset otherwise, so every page always renders.
// Applications may supply their own templ components via ViewFuncs.
package place2b

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/place2b/analytics"
	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/fallback"
)

// App is the central place2b application. It wires together the content
// client, fallback data, cache, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  *content.Client
	Fallback *fallback.Dataset
	Images   *asset.Resolver
	Cache    *PageCache
	Views    ViewFuncs
	Logger   *slog.Logger

	registry       *prometheus.Registry
	httpClient     *http.Client
	accessLog      *slog.Logger
	accessCloser   io.Closer
	placeholders   *placeholders
	analyticsStore *analytics.Store
	analytics      *analytics.Handler
	stopCleanup    func()
	customRoutes   []func(*App)
	initialized    bool
}

// New creates a new App with the given configuration and view functions.
// Nil view functions use the defaults.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.fillDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if a.Content == nil {
		a.Content = content.ClientFromConfig(a.Config.Sanity, a.httpClient,
			content.WithLogger(a.Logger),
			content.WithMetrics(a.registry),
		)
	}
	if a.Fallback == nil {
		a.Fallback = fallback.Default()
	}
	if a.Images == nil {
		a.Images = asset.NewResolver(a.Config.Sanity.ProjectID, a.Config.Sanity.Dataset)
	}
	return a
}

// Init prepares caches, analytics, middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}

	if a.Config.FallbackDir != "" {
		d, err := fallback.Load(os.DirFS(a.Config.FallbackDir))
		if err != nil {
			return fmt.Errorf("place2b: %w", err)
		}
		a.Fallback = d
	}

	cache, err := NewPageCache(a.Config.HomeTTL, a.Config.ListTTL)
	if err != nil {
		return err
	}
	a.Cache = cache

	ph, err := newPlaceholders()
	if err != nil {
		return err
	}
	a.placeholders = ph

	if a.Config.AccessLog != "" {
		a.accessLog, a.accessCloser = NewAccessLog(a.Config.AccessLog)
	}

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("place2b: init analytics: %w", err)
		}
		a.analyticsStore = store
		if err := analytics.InitSalt(store); err != nil {
			return fmt.Errorf("place2b: init analytics salt: %w", err)
		}
		a.stopCleanup = store.StartCleanupScheduler(365, 24*time.Hour, a.Logger)
		a.analytics = analytics.NewHandler(store, a.Logger)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Logger.Info("content source",
		slog.Bool("cms_configured", a.Content.Configured()),
		slog.Bool("images_configured", a.Images.Configured()),
		slog.Int("fallback_events", len(a.Fallback.Events())),
		slog.Int("fallback_posts", len(a.Fallback.Posts())),
	)
	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", slog.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (a *App) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- a.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("place2b: shutdown: %w", err)
	}
	return <-errc
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/static/*", echo.WrapHandler(http.FileServer(http.FS(StaticAssets))))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/events.xml", a.handleEventsFeed)
	e.GET("/placeholder/:file", a.handlePlaceholder)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry}))

	e.GET("/", a.handleHome)
	e.GET("/events/", a.handleEvents)
	e.GET("/events/:slug/", a.handleEvent)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	e.GET("/api/events", a.handleAPIEvents)
	if a.analytics != nil {
		a.analytics.RegisterRoutes(e)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analytics != nil {
		a.analytics.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.placeholders != nil {
		a.placeholders.cache.Close()
	}
	if a.accessCloser != nil {
		a.accessCloser.Close()
	}
	return nil
}
