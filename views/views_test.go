package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/clubsite/cms"
)

var testSite = SiteConfig{
	Name:        "Harriers AC",
	URL:         "https://harriers.example.org",
	Description: "Track and field in the valley",
	MediaURL:    "http://cms.local:1337",
}

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func testPages(t *testing.T) *Pages {
	t.Helper()
	p := MustNew(testSite)
	p.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func samplePost(slug string) cms.NewsPost {
	return cms.NewsPost{
		ID:          1,
		Slug:        slug,
		Title:       "Spring league opener",
		Body:        "## Round one\n\nA **great** start. ![Start](/uploads/start.jpg)",
		PublishedAt: time.Date(2024, 4, 12, 18, 0, 0, 0, time.UTC),
		FeaturedImage: &cms.UploadedFile{
			URL:             "/uploads/track.jpg",
			Mime:            "image/jpeg",
			AlternativeText: "The track",
			Formats: map[string]cms.ImageFormat{
				"small": {URL: "/uploads/small_track.jpg", Width: 500},
			},
		},
	}
}

func TestHomeWithSettings(t *testing.T) {
	p := testPages(t)
	doc := renderDoc(t, p.Home(HomeData{
		Settings:     &cms.HomepageSettings{HeroTitle: "Welcome to the Harriers", HeroSubtitle: "Run with us", ShowArchiveLinks: true},
		NewsPosts:    []cms.NewsPost{samplePost("opener")},
		ArchiveLinks: []cms.ArchiveLink{{Year: 1998, URL: "https://old.example.org/1998", Title: "1998 season"}},
	}))

	assert.Equal(t, "Welcome to the Harriers", doc.Find(".hero h1").Text())
	assert.Equal(t, "Run with us", doc.Find(".hero .lead").Text())
	assert.Equal(t, 1, doc.Find(".cards .card").Length())

	href, _ := doc.Find(".card h3 a").Attr("href")
	assert.Equal(t, "/news/opener/", href)
	src, _ := doc.Find(".card img").Attr("src")
	assert.Equal(t, "http://cms.local:1337/uploads/small_track.jpg", src)

	assert.Equal(t, 0, doc.Find(".alert").Length())
	assert.Equal(t, "1998 season", doc.Find(".archive li a").Text())
	assert.Equal(t, 3, doc.Find(".results-cta a").Length())
	assert.Contains(t, doc.Find("footer").Text(), "2025 Harriers AC")
}

func TestHomeDegraded(t *testing.T) {
	p := testPages(t)
	doc := renderDoc(t, p.Home(HomeData{NewsPosts: []cms.NewsPost{}, Error: cms.MsgUnavailable}))

	assert.Equal(t, "Harriers AC", doc.Find(".hero h1").Text())
	assert.Equal(t, cms.MsgUnavailable, strings.TrimSpace(doc.Find(".alert").Text()))
	assert.Equal(t, 0, doc.Find(".card").Length())
	assert.Equal(t, 0, doc.Find(".empty").Length(), "no empty-state text next to an error")
	assert.Equal(t, 0, doc.Find(".archive").Length())
}

func TestHomeJSONLD(t *testing.T) {
	doc := renderDoc(t, testPages(t).Home(HomeData{}))
	raw := doc.Find(`script[type="application/ld+json"]`).Text()

	var ld map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &ld))
	assert.Equal(t, "WebSite", ld["@type"])
	assert.Equal(t, "https://harriers.example.org", ld["url"])
}

func TestNewsListPager(t *testing.T) {
	p := testPages(t)
	doc := renderDoc(t, p.NewsList(NewsListData{
		Posts:      []cms.NewsPost{samplePost("a"), samplePost("b")},
		Page:       2,
		PageSize:   10,
		Pagination: cms.Pagination{Page: 2, PageSize: 10, PageCount: 3, Total: 25},
	}))

	assert.Equal(t, 2, doc.Find(".card").Length())
	prev, _ := doc.Find(`.pager a[rel="prev"]`).Attr("href")
	next, _ := doc.Find(`.pager a[rel="next"]`).Attr("href")
	assert.Equal(t, "/news/?page=1", prev)
	assert.Equal(t, "/news/?page=3", next)
	assert.Equal(t, "Page 2 of 3", doc.Find(".pager .page").Text())

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://harriers.example.org/news/?page=2", canonical)
}

func TestNewsListEmptyAndError(t *testing.T) {
	p := testPages(t)

	doc := renderDoc(t, p.NewsList(NewsListData{Page: 1, PageSize: 10}))
	assert.Equal(t, "No news posts found.", doc.Find(".empty").Text())
	assert.Equal(t, 0, doc.Find(".pager").Length())

	doc = renderDoc(t, p.NewsList(NewsListData{Page: 1, PageSize: 10, Error: cms.MsgConnect}))
	assert.Equal(t, cms.MsgConnect, strings.TrimSpace(doc.Find(".alert").Text()))
	assert.Equal(t, 0, doc.Find(".empty").Length())
}

func TestNewsPost(t *testing.T) {
	doc := renderDoc(t, testPages(t).NewsPost(NewsPostData{Post: samplePost("opener")}))

	assert.Equal(t, "Spring league opener", doc.Find("article h1").Text())
	assert.Equal(t, "12 April 2024", doc.Find("article time").Text())
	assert.Equal(t, "Round one", doc.Find(".body h3").Text(), "body headings sit below the page title")
	assert.Equal(t, "great", doc.Find(".body strong").Text())

	bodyImg, _ := doc.Find(".body img").Attr("src")
	assert.Equal(t, "http://cms.local:1337/uploads/start.jpg", bodyImg)

	ogType, _ := doc.Find(`meta[property="og:type"]`).Attr("content")
	assert.Equal(t, "article", ogType)
	title := doc.Find("title").Text()
	assert.Equal(t, "Spring league opener | Harriers AC", title)

	var ld map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.Find(`script[type="application/ld+json"]`).Text()), &ld))
	assert.Equal(t, "NewsArticle", ld["@type"])
	assert.Equal(t, "https://harriers.example.org/news/opener/", ld["url"])
	assert.Equal(t, "2024-04-12T18:00:00Z", ld["datePublished"])
}

func TestNewsPostEscapesBody(t *testing.T) {
	post := samplePost("x")
	post.Body = `Hello <img src=x onerror=alert(1)>`
	doc := renderDoc(t, testPages(t).NewsPost(NewsPostData{Post: post}))

	assert.Equal(t, 0, doc.Find(".body img").Length())
	assert.Contains(t, doc.Find(".body").Text(), "<img src=x onerror=alert(1)>")
}

func TestResults(t *testing.T) {
	pdf := &cms.UploadedFile{Name: "cm.pdf", URL: "/uploads/cm_2023.pdf", Mime: "application/pdf", Size: 2048}
	doc := renderDoc(t, testPages(t).Results(ResultsData{
		Meet: cms.CountyMeet,
		Groups: []MeetGroup{{
			Meet:    cms.CountyMeet,
			Results: cms.MeetResults{{ID: 1, MeetName: cms.CountyMeet, Year: 2023, Title: "County Meet 2023", ResultsPDF: pdf}},
		}},
	}))

	assert.Equal(t, "County Meet results", doc.Find("h1").Text())
	link := doc.Find(".results li a")
	href, _ := link.Attr("href")
	assert.Equal(t, "http://cms.local:1337/uploads/cm_2023.pdf", href)
	assert.Equal(t, "County Meet 2023", link.Text())
	assert.Equal(t, "PDF, 2.0 MB", doc.Find(".results .size").Text())

	current, _ := doc.Find(`.meets a[aria-current="page"]`).Attr("href")
	assert.Equal(t, "/results/county-meet/", current)
}

func TestArchive(t *testing.T) {
	doc := renderDoc(t, testPages(t).Archive(ArchiveData{Years: []ArchiveYear{
		{Year: 2001, Links: []cms.ArchiveLink{{Year: 2001, URL: "https://old.example.org/2001"}}},
		{Year: 1999, Links: []cms.ArchiveLink{{Year: 1999, URL: "javascript:alert(1)", Title: "Bad"}}},
	}}))

	assert.Equal(t, 2, doc.Find("section.year").Length())
	assert.Equal(t, "2001 archive", doc.Find("section.year").First().Find("a").Text())
	href, _ := doc.Find("section.year").Last().Find("a").Attr("href")
	assert.NotContains(t, href, "javascript")
}

func TestErrorPages(t *testing.T) {
	p := testPages(t)

	doc := renderDoc(t, p.NotFound("News post not found"))
	assert.Equal(t, "Not found", doc.Find(".error h1").Text())
	assert.Equal(t, "News post not found", doc.Find(".error p").First().Text())

	doc = renderDoc(t, p.ServerError(""))
	assert.Equal(t, cms.MsgServer, doc.Find(".error p").First().Text())
}
