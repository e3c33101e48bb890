package clubsite

import (
	"context"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/clubsite/cms"
	"github.com/eringen/clubsite/internal/logger"
	"github.com/eringen/clubsite/views"
)

const (
	// homeNewsLimit is how many posts the home page requests.
	homeNewsLimit = 5
	// defaultFeaturedCount applies when the settings leave the count at zero.
	defaultFeaturedCount = 5
	// newsPageSize is the news listing page size.
	newsPageSize = 10
)

// Loader error messages.
const (
	msgHomeFailed    = "Failed to load homepage data"
	msgNewsFailed    = "Failed to load news posts"
	msgPostNotFound  = "News post not found"
	msgPostFailed    = "Failed to load news post"
	msgResultsFailed = "Failed to load meet results"
	msgArchiveFailed = "Failed to load archive links"
	msgMeetNotFound  = "Meet not found"
)

// reUID matches the characters the CMS allows in a UID field.
var reUID = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

// ContentSource is the read side of the CMS the loaders depend on.
// *cms.Client implements it.
type ContentSource interface {
	GetHomepageSettings(ctx context.Context) (cms.HomepageSettings, error)
	GetNewsPosts(ctx context.Context, opts cms.NewsOptions) ([]cms.NewsPost, error)
	GetNewsPage(ctx context.Context, opts cms.NewsOptions) (cms.NewsPage, error)
	GetNewsPostBySlug(ctx context.Context, slug string) (cms.NewsPost, bool, error)
	GetMeetResults(ctx context.Context, opts cms.MeetResultsOptions) ([]cms.MeetResult, error)
	GetArchiveLinks(ctx context.Context) ([]cms.ArchiveLink, error)
}

var _ ContentSource = (*cms.Client)(nil)

// Loader builds page view models from a ContentSource. Listing loaders
// degrade: a failed fetch yields an empty model carrying an error message,
// and the page still renders. The news detail loader is terminal and
// returns an *echo.HTTPError instead.
type Loader struct {
	src ContentSource
	log *logger.Logger
}

// NewLoader creates a Loader. A nil logger discards output.
func NewLoader(src ContentSource, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{src: src, log: log}
}

// LoadHome fetches the homepage settings and the latest news concurrently.
// Both requests are in flight before either is awaited.
func (l *Loader) LoadHome(ctx context.Context) views.HomeData {
	var (
		settings cms.HomepageSettings
		posts    []cms.NewsPost
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = l.src.GetHomepageSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = l.src.GetNewsPosts(gctx, cms.NewsOptions{Limit: homeNewsLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		l.log.Error("error loading homepage data", "error", err)
		return views.HomeData{
			NewsPosts: []cms.NewsPost{},
			Error:     cms.Message(err, msgHomeFailed),
		}
	}

	count := settings.FeaturedNewsCount
	if count <= 0 {
		count = defaultFeaturedCount
	}
	if len(posts) > count {
		posts = posts[:count]
	}
	if posts == nil {
		posts = []cms.NewsPost{}
	}

	data := views.HomeData{Settings: &settings, NewsPosts: posts}
	if settings.ShowArchiveLinks {
		links, err := l.src.GetArchiveLinks(ctx)
		if err != nil {
			l.log.Warn("archive links unavailable on homepage", "error", err)
		} else {
			data.ArchiveLinks = links
		}
	}
	return data
}

// ParsePage reads a 1-based page number. Anything that is not a positive
// integer yields 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// LoadNewsList loads one page of news, newest first.
func (l *Loader) LoadNewsList(ctx context.Context, rawPage string) views.NewsListData {
	page := ParsePage(rawPage)
	res, err := l.src.GetNewsPage(ctx, cms.NewsOptions{Page: page, PageSize: newsPageSize})
	if err != nil {
		l.log.Error("error loading news list", "page", page, "error", err)
		return views.NewsListData{
			Posts:    []cms.NewsPost{},
			Page:     1,
			PageSize: newsPageSize,
			Error:    cms.Message(err, msgNewsFailed),
		}
	}
	posts := res.Posts
	if posts == nil {
		posts = []cms.NewsPost{}
	}
	return views.NewsListData{
		Posts:      posts,
		Page:       page,
		PageSize:   newsPageSize,
		Pagination: res.Pagination,
	}
}

// LoadNewsPost loads a post by its exact slug. A missing post, or a slug
// with characters no CMS UID can hold, is a 404; any fetch failure,
// including a CMS 404, is a 500.
func (l *Loader) LoadNewsPost(ctx context.Context, postSlug string) (views.NewsPostData, error) {
	if !reUID.MatchString(postSlug) {
		return views.NewsPostData{}, echo.NewHTTPError(http.StatusNotFound, msgPostNotFound)
	}
	post, found, err := l.src.GetNewsPostBySlug(ctx, postSlug)
	if err != nil {
		l.log.Error("error loading news post", "slug", postSlug, "error", err)
		return views.NewsPostData{}, echo.NewHTTPError(http.StatusInternalServerError, msgPostFailed).SetInternal(err)
	}
	if !found {
		return views.NewsPostData{}, echo.NewHTTPError(http.StatusNotFound, msgPostNotFound)
	}
	return views.NewsPostData{Post: post}, nil
}

// LoadResults loads meet results grouped by meet. An empty meetSlug loads
// every meet; an unknown one is a 404. Fetch failures degrade.
func (l *Loader) LoadResults(ctx context.Context, meetSlug string) (views.ResultsData, error) {
	var meet cms.Meet
	if meetSlug != "" {
		m, ok := cms.MeetFromSlug(meetSlug)
		if !ok {
			return views.ResultsData{}, echo.NewHTTPError(http.StatusNotFound, msgMeetNotFound)
		}
		meet = m
	}

	results, err := l.src.GetMeetResults(ctx, cms.MeetResultsOptions{Meet: meet})
	if err != nil {
		l.log.Error("error loading meet results", "meet", string(meet), "error", err)
		return views.ResultsData{Meet: meet, Groups: []views.MeetGroup{}, Error: cms.Message(err, msgResultsFailed)}, nil
	}
	return views.ResultsData{Meet: meet, Groups: groupResults(results, meet)}, nil
}

// groupResults orders results by year within each meet, in the fixed meet
// order. With a selected meet only that group is returned.
func groupResults(results cms.MeetResults, only cms.Meet) []views.MeetGroup {
	byMeet := results.SortByYearDesc().GroupByMeet()
	meets := cms.Meets
	if only != "" {
		meets = []cms.Meet{only}
	}
	groups := make([]views.MeetGroup, 0, len(meets))
	for _, m := range meets {
		rs := byMeet[m]
		if rs == nil {
			rs = cms.MeetResults{}
		}
		groups = append(groups, views.MeetGroup{Meet: m, Results: rs})
	}
	return groups
}

// LoadArchive loads archive links grouped by year, newest first.
func (l *Loader) LoadArchive(ctx context.Context) views.ArchiveData {
	links, err := l.src.GetArchiveLinks(ctx)
	if err != nil {
		l.log.Error("error loading archive links", "error", err)
		return views.ArchiveData{Years: []views.ArchiveYear{}, Error: cms.Message(err, msgArchiveFailed)}
	}
	return views.ArchiveData{Years: groupArchive(links)}
}

func groupArchive(links []cms.ArchiveLink) []views.ArchiveYear {
	index := make(map[int]int)
	years := []views.ArchiveYear{}
	for _, link := range links {
		i, ok := index[link.Year]
		if !ok {
			i = len(years)
			index[link.Year] = i
			years = append(years, views.ArchiveYear{Year: link.Year})
		}
		years[i].Links = append(years[i].Links, link)
	}
	sort.SliceStable(years, func(i, j int) bool { return years[i].Year > years[j].Year })
	return years
}
