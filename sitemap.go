package clubsite

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/views"
)

// sitemapNewsLimit caps the posts listed in sitemap.xml. The CMS rejects
// larger page sizes by default.
const sitemapNewsLimit = 100

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) sitemap(posts []cms.NewsPost) sitemapURLSet {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
		{Loc: views.BuildURL(base, "news")},
		{Loc: views.BuildURL(base, "results")},
	}
	for _, m := range cms.Meets {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "results", m.Slug())})
	}
	urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "archive")})

	for _, p := range posts {
		mod := p.UpdatedAt
		if mod.IsZero() {
			mod = p.PublishedAt
		}
		u := sitemapURL{Loc: views.NewsURL(base, p.Slug)}
		if !mod.IsZero() {
			u.LastMod = mod.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []cms.NewsPost) error {
	out, err := xml.Marshal(a.sitemap(posts))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
