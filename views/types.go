package views

import "github.com/eringen/clubsite/cms"

// SiteConfig holds site-wide settings. Every page receives it so nothing is
// hardcoded in templates.
type SiteConfig struct {
	Name        string // SITE_NAME
	URL         string // SITE_URL, canonical origin
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR, publisher in JSON-LD
	MediaURL    string // CMS origin used to resolve /uploads/ paths
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
}

// HomeData is the home page view model.
type HomeData struct {
	// Settings is nil when the homepage fetch failed.
	Settings  *cms.HomepageSettings
	NewsPosts []cms.NewsPost
	// ArchiveLinks is only populated when the settings enable the block.
	ArchiveLinks []cms.ArchiveLink
	Error        string
}

// ShowArchive reports whether the archive block should be rendered.
func (d HomeData) ShowArchive() bool {
	return d.Settings != nil && d.Settings.ShowArchiveLinks && len(d.ArchiveLinks) > 0
}

// NewsListData is one page of the news listing.
type NewsListData struct {
	Posts      []cms.NewsPost
	Page       int
	PageSize   int
	Pagination cms.Pagination
	Error      string
}

func (d NewsListData) HasPrev() bool { return d.Page > 1 }

func (d NewsListData) HasNext() bool { return d.Page < d.Pagination.PageCount }

func (d NewsListData) PrevPage() int { return d.Page - 1 }

func (d NewsListData) NextPage() int { return d.Page + 1 }

// NewsPostData is the news detail view model.
type NewsPostData struct {
	Post cms.NewsPost
}

// MeetGroup is the results of one meet, most recent year first.
type MeetGroup struct {
	Meet    cms.Meet
	Results cms.MeetResults
}

// ResultsData is the results page view model. Meet is empty on the
// all-meets page.
type ResultsData struct {
	Meet   cms.Meet
	Groups []MeetGroup
	Error  string
}

// Heading is the page title for the selected meet.
func (d ResultsData) Heading() string {
	if d.Meet == "" {
		return "Meet results"
	}
	return d.Meet.DisplayName() + " results"
}

// ArchiveYear is the archive links for one year.
type ArchiveYear struct {
	Year  int
	Links []cms.ArchiveLink
}

// ArchiveData is the archive page view model, newest year first.
type ArchiveData struct {
	Years []ArchiveYear
	Error string
}

// ErrorData is shown on the 404 and 5xx pages.
type ErrorData struct {
	Heading string
	Message string
}
