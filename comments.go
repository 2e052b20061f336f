package graphpress

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	maxCommentAuthorLen = 80
	maxCommentBodyLen   = 4000
)

func (a *App) handleCommentList(c echo.Context) error {
	slug := c.Param("slug")
	article, err := a.Cache.GetArticle(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	comments, err := a.Store.ListComments(slug)
	if err != nil {
		return err
	}
	return Render(c, a.Views.CommentsPartial(article, comments, CsrfToken(c), false))
}

// handleCommentSubmit accepts a reader comment into the moderation queue.
// Submissions are rate-limited per IP, and the hidden "website" field is a
// honeypot: bots that fill it get a 204 and nothing is stored.
func (a *App) handleCommentSubmit(c echo.Context) error {
	slug := c.Param("slug")
	article, err := a.Cache.GetArticle(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}

	if !a.commentLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many comments. Try again later.")
	}
	if c.FormValue("website") != "" {
		return c.NoContent(http.StatusNoContent)
	}

	author := strings.TrimSpace(c.FormValue("author"))
	body := strings.TrimSpace(c.FormValue("body"))
	if author == "" || body == "" {
		return c.String(http.StatusBadRequest, "Name and comment are required.")
	}
	if len(author) > maxCommentAuthorLen || len(body) > maxCommentBodyLen {
		return c.String(http.StatusBadRequest, "Comment too long.")
	}

	comment := Comment{
		ID:      uuid.NewString(),
		Slug:    slug,
		Author:  author,
		Body:    body,
		Created: time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.Store.SaveComment(comment); err != nil {
		return err
	}

	comments, err := a.Store.ListComments(slug)
	if err != nil {
		return err
	}
	return Render(c, a.Views.CommentsPartial(article, comments, CsrfToken(c), true))
}

func (a *App) handleCommentApprove(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.ApproveComment(c.Param("id")); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "comment approved")
}

func (a *App) handleCommentDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteComment(c.Param("id")); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "comment deleted")
}
