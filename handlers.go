package graphpress

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	category := c.QueryParam("category")
	articles, err := a.Cache.ListArticles(tag, category)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	categories, err := a.Cache.ListCategories()
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		partial := c.QueryParam("partial")
		switch partial {
		case "articles":
			return Render(c, a.Views.ArticleSection(articles, tag, category, tags, categories))
		case "home":
			return Render(c, a.Views.HomePartial(articles, tag, category, tags, categories, a.Config.URL))
		}
	}
	return Render(c, a.Views.Home(articles, tag, category, tags, categories, a.Config.URL))
}

func (a *App) handleArticle(c echo.Context) error {
	slug := c.Param("slug")
	article, err := a.Cache.GetArticle(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	articles, err := a.Cache.ListArticles("", "")
	if err != nil {
		return err
	}
	comments, err := a.loadComments(slug)
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "article" {
		return Render(c, a.Views.ArticlePartial(article, articles, comments, a.Config.URL))
	}
	return Render(c, a.Views.Article(article, articles, comments, a.Config.URL))
}

// loadComments returns approved comments for an article, or nil when the
// comments feature is disabled.
func (a *App) loadComments(slug string) ([]Comment, error) {
	if !a.Config.CommentsEnabled {
		return nil, nil
	}
	return a.Store.ListComments(slug)
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Cache.ListArticles("", "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.ListArticles("", "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func handleArticlesRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
