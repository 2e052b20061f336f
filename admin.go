package graphpress

import (
	"crypto/subtle"
	"database/sql"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mlerend/graphpress/snippet"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminArticle(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	article, err := a.Store.GetArticleAny(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminFormPartial(article, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Slug+is+required.+Add+a+title+or+slug.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
	}
	tags := strings.Split(c.FormValue("tags"), ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	tags = FilterEmpty(tags)
	category := strings.TrimSpace(c.FormValue("category"))
	summary := c.FormValue("summary")
	content := c.FormValue("content")
	meta := ParseMetaLines(c.FormValue("meta"))
	published := c.FormValue("published") != ""

	// Snippet lint runs on every save; LintMode decides the consequence.
	reject, lintMsg := lintGate(content, a.Config.LintMode)
	if reject {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(lintMsg))
	}

	if err := a.Store.SaveArticle(Article{
		Slug:      slug,
		Title:     title,
		Date:      date,
		Tags:      tags,
		Category:  category,
		Summary:   summary,
		Content:   content,
		Meta:      meta,
		Published: published,
	}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved"+lintMsg)
}

// lintGate lints content and maps the result through mode. When reject is
// true the save must not proceed and msg carries the rejection reason;
// otherwise msg is a suffix for the saved message, empty when the content
// is clean or the check is off.
func lintGate(content string, mode LintMode) (reject bool, msg string) {
	if mode == LintOff {
		return false, ""
	}
	report := snippet.Lint(content)
	if report.Clean() {
		return false, ""
	}
	if mode == LintEnforce {
		return true, "Save rejected: " + report.Summary() + ". First: " + report.Issues[0].String()
	}
	return false, " (" + report.Summary() + ")"
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if err := a.Store.DeleteArticle(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

// handleAdminLint lints every stored article (drafts included) and renders
// the per-article reports.
func (a *App) handleAdminLint(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	articles, err := a.Store.ListAllArticles()
	if err != nil {
		return err
	}
	reports := make([]ArticleLintReport, 0, len(articles))
	for _, article := range articles {
		reports = append(reports, ArticleLintReport{
			Slug:   article.Slug,
			Title:  article.Title,
			Report: snippet.Lint(article.Content),
		})
	}
	return Render(c, a.Views.AdminLintReport(reports, CsrfToken(c)))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	articles, err := a.Store.ListAllArticles()
	if err != nil {
		return err
	}
	var pending []Comment
	if a.Config.CommentsEnabled {
		pending, err = a.Store.ListPendingComments()
		if err != nil {
			return err
		}
	}
	return Render(c, a.Views.AdminDashboard(articles, pending, msg, CsrfToken(c)))
}

// ArticleLintReport pairs an article with its snippet lint result.
type ArticleLintReport struct {
	Slug   string
	Title  string
	Report snippet.Report
}
