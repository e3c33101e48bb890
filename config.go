package clubsite

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/eringen/clubsite/internal/logger"
	"github.com/eringen/clubsite/views"
)

// ErrMissingCMSURL is returned when no CMS origin is configured.
var ErrMissingCMSURL = errors.New("clubsite: CMS URL is required")

// SiteConfig holds all configuration for a club site.
type SiteConfig struct {
	Name        string // Site name (default "Athletics Club")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Publisher name for JSON-LD

	CMSURL     string        // Required: Strapi origin, without /api
	MediaURL   string        // Origin for relative upload URLs (default CMSURL)
	CMSTimeout time.Duration // Per-request CMS timeout; zero keeps transport defaults

	Addr     string // Listen address (default ":3000")
	LogLevel string // debug, info, warn or error (default "info")
	FeedSize int    // Posts in feed.xml (default 20)
}

// SetDefaults fills unset fields. New calls it.
func (c *SiteConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "Athletics Club"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.MediaURL == "" {
		c.MediaURL = c.CMSURL
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.FeedSize <= 0 {
		c.FeedSize = 20
	}
}

// Validate checks the settings New cannot default.
func (c SiteConfig) Validate() error {
	if c.CMSURL == "" {
		return ErrMissingCMSURL
	}
	u, err := url.Parse(c.CMSURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("clubsite: invalid CMS URL %q", c.CMSURL)
	}
	if c.CMSTimeout < 0 {
		return fmt.Errorf("clubsite: negative CMS timeout %s", c.CMSTimeout)
	}
	return nil
}

// View returns the subset of the configuration templates see.
func (c SiteConfig) View() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		MediaURL:    c.MediaURL,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir serves an extra directory under /public, behind the
// embedded assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the logger built from LogLevel.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContentSource replaces the CMS client. The CMS URL is then optional.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.Content = src
	}
}

// WithViews replaces the embedded page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
		a.customViews = true
	}
}
