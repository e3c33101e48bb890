// Package views renders the club site pages.
//
// Pages are html/template files embedded in the binary and exposed as
// templ.Components, so handlers render them the same way they would render
// generated templ code.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{"home", "news_list", "news_post", "results", "archive", "error"}

// Pages holds the parsed page templates for one site.
type Pages struct {
	site  SiteConfig
	md    markdown.Renderer
	pages map[string]*template.Template
	now   func() time.Time
}

// page is the value every template executes against.
type page struct {
	Site   SiteConfig
	Meta   PageMeta
	JSONLD template.JS
	Data   any
	Year   int
}

// New parses the embedded templates for site.
func New(site SiteConfig) (*Pages, error) {
	p := &Pages{
		site:  site,
		md:    markdown.Renderer{MediaBase: site.MediaURL, HeadingOffset: 1},
		pages: make(map[string]*template.Template, len(pageFiles)),
		now:   time.Now,
	}
	funcs := p.funcs()
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// MustNew is New that panics on a template error.
func MustNew(site SiteConfig) *Pages {
	p, err := New(site)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pages) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(body string) template.HTML {
			return template.HTML(p.md.HTML(body))
		},
		"media": func(ref string) string {
			return cms.ResolveMediaURL(p.site.MediaURL, ref)
		},
		"image": func(f *cms.UploadedFile, minWidth int) string {
			return ImageURL(p.site, f, minWidth)
		},
		"excerpt":  Excerpt,
		"date":     FormatDate,
		"filesize": FileSize,
		"meets":    func() []cms.Meet { return cms.Meets },
		"meetName": func(m cms.Meet) string { return m.DisplayName() },
		"meetSlug": func(m cms.Meet) string { return m.Slug() },
	}
}

func (p *Pages) render(name string, meta PageMeta, jsonLD string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if meta.OGType == "" {
			meta.OGType = "website"
		}
		return p.pages[name].ExecuteTemplate(w, "layout", page{
			Site:   p.site,
			Meta:   meta,
			JSONLD: template.JS(jsonLD),
			Data:   data,
			Year:   p.now().Year(),
		})
	})
}

func (p *Pages) title(s string) string {
	if s == "" {
		return p.site.Name
	}
	return s + " | " + p.site.Name
}

// Home renders the home page.
func (p *Pages) Home(d HomeData) templ.Component {
	meta := PageMeta{
		Title:       p.site.Name,
		Description: p.site.Description,
		URL:         BuildURL(p.site.URL),
	}
	if d.Settings != nil {
		if d.Settings.HeroSubtitle != "" {
			meta.Description = d.Settings.HeroSubtitle
		}
		meta.Image = ImageURL(p.site, d.Settings.HeroImage, 1000)
	}
	return p.render("home", meta, WebsiteJsonLD(p.site), d)
}

// NewsList renders one page of the news listing.
func (p *Pages) NewsList(d NewsListData) templ.Component {
	canonical := BuildURL(p.site.URL, "news")
	title := "News"
	if d.Page > 1 {
		canonical += fmt.Sprintf("?page=%d", d.Page)
		title = fmt.Sprintf("News, page %d", d.Page)
	}
	meta := PageMeta{
		Title:       p.title(title),
		Description: "Latest news from " + p.site.Name,
		URL:         canonical,
	}
	return p.render("news_list", meta, "", d)
}

// NewsPost renders a single news post.
func (p *Pages) NewsPost(d NewsPostData) templ.Component {
	meta := PageMeta{
		Title:       p.title(d.Post.Title),
		Description: Excerpt(d.Post),
		URL:         NewsURL(p.site.URL, d.Post.Slug),
		OGType:      "article",
		Image:       ImageURL(p.site, d.Post.FeaturedImage, 1000),
	}
	return p.render("news_post", meta, NewsArticleJsonLD(p.site, d.Post), d)
}

// Results renders the meet results page.
func (p *Pages) Results(d ResultsData) templ.Component {
	canonical := BuildURL(p.site.URL, "results")
	if d.Meet != "" {
		canonical = BuildURL(p.site.URL, "results", d.Meet.Slug())
	}
	meta := PageMeta{
		Title:       p.title(d.Heading()),
		Description: "Results documents from " + p.site.Name + " meets.",
		URL:         canonical,
	}
	return p.render("results", meta, "", d)
}

// Archive renders the archive links page.
func (p *Pages) Archive(d ArchiveData) templ.Component {
	meta := PageMeta{
		Title:       p.title("Archive"),
		Description: "Archived material from past seasons of " + p.site.Name + ".",
		URL:         BuildURL(p.site.URL, "archive"),
	}
	return p.render("archive", meta, "", d)
}

// NotFound renders the 404 page. An empty message uses the default.
func (p *Pages) NotFound(message string) templ.Component {
	if message == "" {
		message = "The page you were looking for does not exist."
	}
	return p.render("error", PageMeta{Title: p.title("Not found")}, "", ErrorData{Heading: "Not found", Message: message})
}

// ServerError renders the 5xx page.
func (p *Pages) ServerError(message string) templ.Component {
	if message == "" {
		message = cms.MsgServer
	}
	return p.render("error", PageMeta{Title: p.title("Something went wrong")}, "", ErrorData{Heading: "Something went wrong", Message: message})
}
