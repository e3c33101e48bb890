package clubsite

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        rssGUID       `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

// newsFeed builds the RSS document for posts, newest first.
func (a *App) newsFeed(posts []cms.NewsPost) rssXML {
	site := a.Config.View()
	items := make([]rssItem, 0, len(posts))
	var latest time.Time
	for _, p := range posts {
		postURL := views.NewsURL(site.URL, p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: views.Excerpt(p),
			GUID:        rssGUID{Value: postURL, IsPermaLink: true},
		}
		if !p.PublishedAt.IsZero() {
			item.PubDate = p.PublishedAt.UTC().Format(time.RFC1123Z)
			if p.PublishedAt.After(latest) {
				latest = p.PublishedAt
			}
		}
		if img := p.FeaturedImage; img != nil {
			item.Enclosure = &rssEnclosure{
				URL:    views.ImageURL(site, img, 500),
				Type:   img.Mime,
				Length: int64(img.Size * 1024),
			}
		}
		items = append(items, item)
	}
	ch := rssChannel{
		Title:       site.Name,
		Link:        views.BuildURL(site.URL),
		Description: site.Description,
		Language:    "en-gb",
		Items:       items,
	}
	if !latest.IsZero() {
		ch.LastBuildDate = latest.UTC().Format(time.RFC1123Z)
	}
	return rssXML{Version: "2.0", Channel: ch}
}

func (a *App) renderRSS(c echo.Context, posts []cms.NewsPost) error {
	out, err := xml.Marshal(a.newsFeed(posts))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}
