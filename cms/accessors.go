package cms

import (
	"context"
	"fmt"
	"strings"
)

// Endpoint paths, relative to /api.
const (
	PathMeetResults     = "/meet-results"
	PathNewsPosts       = "/news-posts"
	PathHomepageSetting = "/homepage-setting"
	PathArchiveLinks    = "/archive-links"
)

// MeetResultsOptions narrows a meet results listing.
type MeetResultsOptions struct {
	// Meet restricts results to one meet when set.
	Meet Meet
}

// NewsOptions controls news pagination. Zero fields are not sent.
type NewsOptions struct {
	Page     int
	PageSize int
	Limit    int
}

func (o MeetResultsOptions) params() Params {
	p := Params{
		"populate": "resultsPDF",
		"sort":     "year:desc",
	}
	if o.Meet != "" {
		p["filters[meetName][$eq]"] = o.Meet
	}
	return p
}

func (o NewsOptions) params() Params {
	p := Params{
		"populate": "featuredImage",
		"sort":     "publishedAt:desc",
	}
	if o.Page > 0 {
		p["pagination[page]"] = o.Page
	}
	if o.PageSize > 0 {
		p["pagination[pageSize]"] = o.PageSize
	}
	if o.Limit > 0 {
		p["pagination[limit]"] = o.Limit
	}
	return p
}

// GetMeetResults lists meet results, most recent year first.
func (c *Client) GetMeetResults(ctx context.Context, opts MeetResultsOptions) ([]MeetResult, error) {
	if opts.Meet != "" && !opts.Meet.Valid() {
		return nil, &Error{Kind: KindUnknown, Path: PathMeetResults, Message: fmt.Sprintf("%s: %q", ErrUnknownMeet, opts.Meet), Err: ErrUnknownMeet}
	}
	resp, err := Fetch[MeetResults](ctx, c, PathMeetResults, opts.params())
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetMeetResultsByMeet lists the results of one meet.
func (c *Client) GetMeetResultsByMeet(ctx context.Context, m Meet) ([]MeetResult, error) {
	if !m.Valid() {
		return nil, &Error{Kind: KindUnknown, Path: PathMeetResults, Message: fmt.Sprintf("%s: %q", ErrUnknownMeet, m), Err: ErrUnknownMeet}
	}
	return c.GetMeetResults(ctx, MeetResultsOptions{Meet: m})
}

// NewsPage is one page of news posts with the CMS pagination block.
type NewsPage struct {
	Posts      []NewsPost
	Pagination Pagination
}

// GetNewsPage lists news posts, newest first, with pagination metadata.
func (c *Client) GetNewsPage(ctx context.Context, opts NewsOptions) (NewsPage, error) {
	resp, err := Fetch[NewsPosts](ctx, c, PathNewsPosts, opts.params())
	if err != nil {
		return NewsPage{}, err
	}
	return NewsPage{Posts: resp.Data, Pagination: resp.Meta.Pagination}, nil
}

// GetNewsPosts lists news posts, newest first.
func (c *Client) GetNewsPosts(ctx context.Context, opts NewsOptions) ([]NewsPost, error) {
	page, err := c.GetNewsPage(ctx, opts)
	if err != nil {
		return nil, err
	}
	return page.Posts, nil
}

// GetNewsPostBySlug looks a post up by exact slug. A missing post is
// reported through found, not as an error.
func (c *Client) GetNewsPostBySlug(ctx context.Context, slug string) (post NewsPost, found bool, err error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return NewsPost{}, false, nil
	}
	params := Params{
		"filters[slug][$eq]": slug,
		"populate":           "featuredImage",
	}
	resp, err := Fetch[NewsPosts](ctx, c, PathNewsPosts, params)
	if err != nil {
		return NewsPost{}, false, err
	}
	if len(resp.Data) == 0 {
		return NewsPost{}, false, nil
	}
	return resp.Data[0], true, nil
}

// GetHomepageSettings fetches the homepage singleton with all relations.
func (c *Client) GetHomepageSettings(ctx context.Context) (HomepageSettings, error) {
	resp, err := Fetch[HomepageSettings](ctx, c, PathHomepageSetting, Params{"populate": "*"})
	if err != nil {
		return HomepageSettings{}, err
	}
	return resp.Data, nil
}

// GetArchiveLinks lists archive links, most recent year first.
func (c *Client) GetArchiveLinks(ctx context.Context) ([]ArchiveLink, error) {
	resp, err := Fetch[ArchiveLinks](ctx, c, PathArchiveLinks, Params{"sort": "year:desc"})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
