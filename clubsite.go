// Package clubsite serves an athletics club website whose content lives in
// a Strapi CMS. It owns no data: every page render reads news, meet results,
// archive links and homepage settings from the CMS through the cms package.
//
// Templates are supplied through the ViewFuncs struct; the embedded views
// package is used when none are given.
package clubsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/internal/logger"
	"github.com/eringen/clubsite/views"
)

// ViewFuncs holds the components the handlers render. Each page receives
// the view model its loader built.
type ViewFuncs struct {
	Home        func(views.HomeData) templ.Component
	NewsList    func(views.NewsListData) templ.Component
	NewsPost    func(views.NewsPostData) templ.Component
	Results     func(views.ResultsData) templ.Component
	Archive     func(views.ArchiveData) templ.Component
	NotFound    func(message string) templ.Component
	ServerError func(message string) templ.Component
}

// DefaultViews returns ViewFuncs backed by the embedded templates.
func DefaultViews(cfg views.SiteConfig) (ViewFuncs, error) {
	p, err := views.New(cfg)
	if err != nil {
		return ViewFuncs{}, err
	}
	return ViewFuncs{
		Home:        p.Home,
		NewsList:    p.NewsList,
		NewsPost:    p.NewsPost,
		Results:     p.Results,
		Archive:     p.Archive,
		NotFound:    p.NotFound,
		ServerError: p.ServerError,
	}, nil
}

// App is the club site application. It wires the CMS client, loaders,
// views, middleware and routes together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Content ContentSource
	Loader  *Loader
	Views   ViewFuncs
	Logger  *logger.Logger

	customRoutes []func(*App)
	customViews  bool
	staticDir    string
}

// New creates an App with middleware and routes registered. It does not
// start listening.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.SetDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		a.Logger = logger.New(cfg.LogLevel)
	}
	if a.Content == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		a.Content = cms.NewClient(cfg.CMSURL,
			cms.WithTimeout(cfg.CMSTimeout),
			cms.WithLogger(a.Logger.With("component", "cms")),
		)
	}
	if !a.customViews {
		v, err := DefaultViews(cfg.View())
		if err != nil {
			return nil, fmt.Errorf("clubsite: load views: %w", err)
		}
		a.Views = v
	}
	a.Loader = NewLoader(a.Content, a.Logger)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

// Start listens on Config.Addr until the server is shut down.
func (a *App) Start() error {
	a.Logger.Info("listening", "addr", a.Config.Addr, "cms", a.Config.CMSURL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedAssets()))))
	for _, name := range assetNames() {
		e.GET("/public/"+name, assets)
	}
	if a.staticDir != "" {
		e.Static("/public", a.staticDir)
	}
	e.GET("/favicon.ico", handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/news/", a.handleNewsList)
	e.GET("/news/:slug/", a.handleNewsPost)
	e.GET("/results/", a.handleResults)
	e.GET("/results/:meet/", a.handleResults)
	e.GET("/archive/", a.handleArchive)
}
