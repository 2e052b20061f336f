package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler handles analytics HTTP requests.
type Handler struct {
	store          *Store
	collectLimiter *rateLimiter
}

// NewHandler creates a new analytics handler.
// The collect endpoint is rate-limited to 60 requests per IP per minute.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:          store,
		collectLimiter: newRateLimiter(60, time.Minute),
	}
}

// CollectRequest is the expected request body for the collect endpoint.
// Event is either empty / "pageview" for a page view, or "snippet_copy"
// when a reader copies a rendered code block.
type CollectRequest struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	UserAgent   string `json:"user_agent"`
	Event       string `json:"event"`
	SnippetLang string `json:"snippet_lang"`
}

// Input validation limits for the collect endpoint.
const (
	maxPathLen        = 2048
	maxReferrerLen    = 2048
	maxUserAgentLen   = 512
	maxSnippetLangLen = 32
)

func validateCollectRequest(req *CollectRequest) error {
	if len(req.Path) > maxPathLen {
		return fmt.Errorf("path exceeds maximum length of %d", maxPathLen)
	}
	if len(req.Referrer) > maxReferrerLen {
		return fmt.Errorf("referrer exceeds maximum length of %d", maxReferrerLen)
	}
	if len(req.UserAgent) > maxUserAgentLen {
		return fmt.Errorf("user_agent exceeds maximum length of %d", maxUserAgentLen)
	}
	if len(req.SnippetLang) > maxSnippetLangLen {
		return fmt.Errorf("snippet_lang exceeds maximum length of %d", maxSnippetLangLen)
	}
	switch req.Event {
	case "", "pageview", "snippet_copy":
	default:
		return fmt.Errorf("unknown event %q", req.Event)
	}
	return nil
}

// Collect handles incoming analytics data from clients.
func (h *Handler) Collect(c echo.Context) error {
	// Rate limit by IP to prevent analytics flooding.
	if !h.collectLimiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}

	// Honor Do Not Track.
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := validateCollectRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request().UserAgent()
	}

	ip := c.RealIP()

	// Bot visits are tracked separately and never count as readers.
	if IsBot(userAgent) {
		botVisit := &BotVisit{
			BotName:   ExtractBotName(userAgent),
			IPHash:    HashIP(ip),
			UserAgent: userAgent,
			Path:      req.Path,
			Timestamp: time.Now().UTC(),
		}
		if err := h.store.SaveBotVisit(botVisit); err != nil {
			c.Logger().Errorf("Failed to save bot visit: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := GenerateVisitorID(ip, userAgent)

	if req.Event == "snippet_copy" {
		event := &CopyEvent{
			VisitorID: visitorID,
			IPHash:    HashIP(ip),
			Path:      req.Path,
			Lang:      req.SnippetLang,
			Timestamp: time.Now().UTC(),
		}
		if err := h.store.SaveCopyEvent(event); err != nil {
			c.Logger().Errorf("Failed to save copy event: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	visit := &Visit{
		VisitorID: visitorID,
		IPHash:    HashIP(ip),
		Browser:   ParseBrowser(userAgent),
		Path:      req.Path,
		Referrer:  CleanReferrer(req.Referrer),
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.SaveVisit(visit); err != nil {
		c.Logger().Errorf("Failed to save visit: %v", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// StatsResponse is the JSON response for the stats endpoint.
type StatsResponse struct {
	Stats      *Stats `json:"stats"`
	Realtime   int    `json:"realtime_visitors"`
	PeriodDays int    `json:"period_days"`
}

// GetStats returns readership statistics as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	days := parsePeriod(c.QueryParam("period"))

	now := time.Now().UTC()
	from, to := calcTimeRange(now, days)

	stats, err := h.store.GetStats(from, to)
	if err != nil {
		c.Logger().Errorf("Failed to get stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	realtime, _ := h.store.GetRealtimeVisitors()

	return c.JSON(http.StatusOK, StatsResponse{
		Stats:      stats,
		Realtime:   realtime,
		PeriodDays: days,
	})
}

// BotStatsResponse is the JSON response for the bot stats endpoint.
type BotStatsResponse struct {
	Stats      *BotStats `json:"stats"`
	PeriodDays int       `json:"period_days"`
}

// GetBotStats returns bot crawl statistics as JSON.
func (h *Handler) GetBotStats(c echo.Context) error {
	days := parsePeriod(c.QueryParam("period"))

	now := time.Now().UTC()
	from, to := calcTimeRange(now, days)

	stats, err := h.store.GetBotStats(from, to)
	if err != nil {
		c.Logger().Errorf("Failed to get bot stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, BotStatsResponse{
		Stats:      stats,
		PeriodDays: days,
	})
}

// parsePeriod maps the period query parameter to a day count.
func parsePeriod(period string) int {
	switch period {
	case "today":
		return 1
	case "week":
		return 7
	case "month":
		return 30
	case "year":
		return 365
	default:
		return 7
	}
}

// calcTimeRange returns the from/to times for the given period.
func calcTimeRange(now time.Time, days int) (time.Time, time.Time) {
	from := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	return from, to
}

// RegisterRoutes registers analytics routes with the Echo router.
func (h *Handler) RegisterRoutes(e *echo.Echo, publicGroup *echo.Group, authMiddleware echo.MiddlewareFunc) {
	// Public endpoint for collecting analytics.
	publicGroup.POST("/api/analytics/collect", h.Collect)

	// Admin API endpoints (JSON).
	admin := e.Group("/admin/analytics")
	admin.Use(authMiddleware)
	admin.GET("/api/stats", h.GetStats)
	admin.GET("/api/bot-stats", h.GetBotStats)
}
