package views

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/markdown"
)

// ExcerptWidth is the display width of card excerpts and meta descriptions.
const ExcerptWidth = 160

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// NewsURL is the canonical URL of a news post.
func NewsURL(base, slug string) string {
	return BuildURL(base, "news", slug)
}

// Truncate shortens s to at most width display cells, breaking on a word
// boundary where possible. Wide runes count as two cells.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	cut := runewidth.Truncate(s, width-1, "")
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// Excerpt is the post's own excerpt, or the start of its body as plain text.
func Excerpt(p cms.NewsPost) string {
	if s := strings.TrimSpace(p.Excerpt); s != "" {
		return Truncate(s, ExcerptWidth)
	}
	return Truncate(markdown.PlainText(p.Body), ExcerptWidth)
}

// FormatDate renders t as "2 January 2006". The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// FileSize formats a CMS upload size, which is given in kilobytes.
func FileSize(kb float64) string {
	switch {
	case kb <= 0:
		return ""
	case kb < 1024:
		return fmt.Sprintf("%.0f KB", kb)
	default:
		return fmt.Sprintf("%.1f MB", kb/1024)
	}
}

// ImageURL picks the best rendition of f for minWidth and resolves it
// against the CMS origin.
func ImageURL(cfg SiteConfig, f *cms.UploadedFile, minWidth int) string {
	if f == nil {
		return ""
	}
	return cms.ResolveMediaURL(cfg.MediaURL, f.BestFormat(minWidth))
}

// WebsiteJsonLD produces a Schema.org SportsClub-flavoured WebSite block.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
		"publisher": map[string]string{
			"@type": "SportsClub",
			"name":  cfg.Name,
		},
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NewsArticleJsonLD produces a Schema.org NewsArticle block for a post.
func NewsArticleJsonLD(cfg SiteConfig, post cms.NewsPost) string {
	postURL := NewsURL(cfg.URL, post.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "NewsArticle",
		"headline":    post.Title,
		"description": Excerpt(post),
		"url":         postURL,
		"publisher": map[string]string{
			"@type": "SportsClub",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.PublishedAt.IsZero() {
		data["datePublished"] = post.PublishedAt.Format(time.RFC3339)
	}
	if !post.UpdatedAt.IsZero() {
		data["dateModified"] = post.UpdatedAt.Format(time.RFC3339)
	}
	if img := ImageURL(cfg, post.FeaturedImage, 1000); img != "" {
		data["image"] = img
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
