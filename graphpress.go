// Package graphpress is a publishing engine for API-documentation articles,
// built with Go, Echo, and templ. Articles are markdown documents whose
// fenced GraphQL and JSON snippets are syntax-checked on save, so published
// docs never ship a query that does not parse. The engine provides article
// CRUD, snippet linting, reader comments, an admin dashboard, analytics,
// RSS, and a sitemap out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// graphpress handles all the handler logic, middleware, and database
// operations. Snippets are only ever parsed as text: graphpress runs no
// GraphQL server and resolves nothing.
package graphpress

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/mlerend/graphpress/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home             func(articles []Article, activeTag, activeCategory string, tags, categories []string, siteURL string) templ.Component
	HomePartial      func(articles []Article, activeTag, activeCategory string, tags, categories []string, siteURL string) templ.Component
	ArticleSection   func(articles []Article, activeTag, activeCategory string, tags, categories []string) templ.Component
	Article          func(article Article, articles []Article, comments []Comment, siteURL string) templ.Component
	ArticlePartial   func(article Article, articles []Article, comments []Comment, siteURL string) templ.Component
	CommentsPartial  func(article Article, comments []Comment, csrfToken string, submitted bool) templ.Component
	AdminLogin       func(showError bool, csrfToken string) templ.Component
	AdminDashboard   func(articles []Article, pending []Comment, message string, csrfToken string) templ.Component
	AdminFormPartial func(article Article, csrfToken string) templ.Component
	AdminImages      func(images []Image, csrfToken string) templ.Component
	AdminLintReport  func(reports []ArticleLintReport, csrfToken string) templ.Component
	AdminAnalytics   func() templ.Component
	NotFound         func() templ.Component
	ServerError      func() templ.Component
}

// App is the central graphpress application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ArticleCache
	Views  ViewFuncs

	loginLimiter   *RateLimiter
	commentLimiter *RateLimiter
	analyticsStore *analytics.Store
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a new graphpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, routes, and starts the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("graphpress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("graphpress: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("graphpress: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL)

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.commentLimiter = NewRateLimiter(3, time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("graphpress: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		if err := analytics.InitSalt(analyticsStore); err != nil {
			return fmt.Errorf("graphpress: init analytics salt: %w", err)
		}
		stopCleanup := analyticsStore.StartCleanupScheduler(365, 24*time.Hour)
		defer stopCleanup()
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Serve embedded framework assets (snippets.js). These are served under
	// /public/ and fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/snippets.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/articles", handleArticlesRedirect)
	e.GET("/", a.handleHome)
	e.GET("/articles/:slug/", a.handleArticle)

	if a.Config.CommentsEnabled {
		e.GET("/articles/:slug/comments/", a.handleCommentList)
		e.POST("/articles/:slug/comments/", a.handleCommentSubmit)
	}

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/article/:slug/", a.handleAdminArticle)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/article/:slug/", a.handleAdminDelete)
	e.GET("/admin/lint/", a.handleAdminLint)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)

	if a.Config.CommentsEnabled {
		e.POST("/admin/comments/:id/approve/", a.handleCommentApprove)
		e.DELETE("/admin/comments/:id/", a.handleCommentDelete)
	}

	// Analytics routes
	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		analyticsHandler := analytics.NewHandler(a.analyticsStore)
		analyticsAuthMiddleware := func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.Redirect(http.StatusSeeOther, "/admin/")
				}
				return next(c)
			}
		}
		publicGroup := e.Group("")
		analyticsHandler.RegisterRoutes(e, publicGroup, analyticsAuthMiddleware)
		if a.Views.AdminAnalytics != nil {
			e.GET("/admin/analytics/", func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.Redirect(http.StatusSeeOther, "/admin/")
				}
				return Render(c, a.Views.AdminAnalytics())
			})
		}
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("graphpress: required environment variable %s is not set", key)
	}
	return v
}
