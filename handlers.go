package clubsite

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/clubsite/cms"
)

// noStore marks error and degraded responses as uncacheable.
func noStore(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "no-store")
}

func (a *App) handleHome(c echo.Context) error {
	data := a.Loader.LoadHome(c.Request().Context())
	if data.Error != "" {
		noStore(c)
	}
	return Render(c, a.Views.Home(data))
}

func (a *App) handleNewsList(c echo.Context) error {
	data := a.Loader.LoadNewsList(c.Request().Context(), c.QueryParam("page"))
	if data.Error != "" {
		noStore(c)
	}
	return Render(c, a.Views.NewsList(data))
}

func (a *App) handleNewsPost(c echo.Context) error {
	data, err := a.Loader.LoadNewsPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return Render(c, a.Views.NewsPost(data))
}

func (a *App) handleResults(c echo.Context) error {
	data, err := a.Loader.LoadResults(c.Request().Context(), c.Param("meet"))
	if err != nil {
		return err
	}
	if data.Error != "" {
		noStore(c)
	}
	return Render(c, a.Views.Results(data))
}

func (a *App) handleArchive(c echo.Context) error {
	data := a.Loader.LoadArchive(c.Request().Context())
	if data.Error != "" {
		noStore(c)
	}
	return Render(c, a.Views.Archive(data))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Content.GetNewsPosts(ctx, cms.NewsOptions{Limit: sitemapNewsLimit})
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, cms.Message(err, "")).SetInternal(err)
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Content.GetNewsPosts(c.Request().Context(), cms.NewsOptions{Limit: a.Config.FeedSize})
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, cms.Message(err, "")).SetInternal(err)
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func handleFavicon(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/public/favicon.svg")
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	noStore(c)
	code := http.StatusInternalServerError
	he, ok := err.(*echo.HTTPError)
	if ok {
		code = he.Code
	}
	message := errorMessage(he, code)

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(message))
	case code >= 500:
		a.Logger.Error("server error",
			"status", code,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
		if !ok {
			message = ""
		}
		if rerr := RenderStatus(c, code, a.Views.ServerError(message)); rerr != nil {
			_ = c.String(code, http.StatusText(code))
		}
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

// errorMessage is the user-facing text of he, or empty when it only carries
// the generic status text.
func errorMessage(he *echo.HTTPError, code int) string {
	if he == nil {
		return ""
	}
	msg, ok := he.Message.(string)
	if !ok || strings.EqualFold(msg, http.StatusText(code)) {
		return ""
	}
	return msg
}
