package graphpress

import "time"

// LintMode controls what happens when an article is saved with snippet
// issues in its fenced code blocks.
type LintMode string

const (
	// LintOff skips snippet checks entirely.
	LintOff LintMode = "off"
	// LintWarn saves the article and surfaces issues in the dashboard.
	LintWarn LintMode = "warn"
	// LintEnforce rejects saves whose content has snippet issues.
	LintEnforce LintMode = "enforce"
)

// SiteConfig holds all configuration for a graphpress site.
type SiteConfig struct {
	Name        string // Site name (default "Docs")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/articles.db")

	LintMode LintMode // Snippet lint behavior on save (default LintWarn)

	CommentsEnabled bool // Accept reader comments (default false)

	AnalyticsEnabled      bool   // Enable analytics (default true)
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ArticleCacheTTL time.Duration // Article cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Docs"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/articles.db"
	}
	if c.LintMode == "" {
		c.LintMode = LintWarn
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLintMode overrides the snippet lint behavior on save.
func WithLintMode(mode LintMode) Option {
	return func(a *App) {
		a.Config.LintMode = mode
	}
}
