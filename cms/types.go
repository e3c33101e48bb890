package cms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Meet is one of the recognised athletics meets.
type Meet string

const (
	RussellCup Meet = "RussellCup"
	CountyMeet Meet = "CountyMeet"
	AllComers  Meet = "AllComers"
)

// Meets lists every recognised meet in display order.
var Meets = []Meet{RussellCup, CountyMeet, AllComers}

var meetNames = map[Meet]string{
	RussellCup: "Russell Cup",
	CountyMeet: "County Meet",
	AllComers:  "All Comers",
}

// Plausible calendar years for results and archives.
const (
	MinYear = 1900
	MaxYear = 2100
)

const mimePDF = "application/pdf"

// Validation errors. Decoding failures wrap these.
var (
	ErrUnknownMeet   = errors.New("unknown meet")
	ErrInvalidYear   = errors.New("implausible year")
	ErrMissingPDF    = errors.New("results PDF is required")
	ErrNotPDF        = errors.New("attachment is not a PDF")
	ErrNotImage      = errors.New("attachment is not an image")
	ErrMissingURL    = errors.New("url is required")
	ErrMissingMIME   = errors.New("mime type is required")
	ErrMissingName   = errors.New("name is required")
	ErrMissingSlug   = errors.New("slug is required")
	ErrMissingTitle  = errors.New("title is required")
	ErrNegativeCount = errors.New("featuredNewsCount must be non-negative")
)

// Valid reports whether m is a recognised meet.
func (m Meet) Valid() bool {
	_, ok := meetNames[m]
	return ok
}

// DisplayName is the human-readable meet name, e.g. "Russell Cup".
func (m Meet) DisplayName() string {
	if n, ok := meetNames[m]; ok {
		return n
	}
	return string(m)
}

// Slug is the URL segment for the meet, e.g. "russell-cup".
func (m Meet) Slug() string {
	return slug.Make(m.DisplayName())
}

// ParseMeet returns the meet whose wire name is s.
func ParseMeet(s string) (Meet, error) {
	m := Meet(strings.TrimSpace(s))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMeet, s)
	}
	return m, nil
}

// MeetFromSlug returns the meet whose URL slug is s.
func MeetFromSlug(s string) (Meet, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Meets {
		if m.Slug() == s {
			return m, true
		}
	}
	return "", false
}

// ImageFormat is one rendition generated by the CMS upload plugin.
type ImageFormat struct {
	Name   string  `json:"name"`
	URL    string  `json:"url"`
	Mime   string  `json:"mime"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Size   float64 `json:"size"`
}

// UploadedFile is a media library entry (PDF or image).
type UploadedFile struct {
	ID              int                    `json:"id"`
	DocumentID      string                 `json:"documentId,omitempty"`
	Name            string                 `json:"name"`
	AlternativeText string                 `json:"alternativeText,omitempty"`
	Caption         string                 `json:"caption,omitempty"`
	URL             string                 `json:"url"`
	Mime            string                 `json:"mime"`
	Size            float64                `json:"size"`
	Width           int                    `json:"width,omitempty"`
	Height          int                    `json:"height,omitempty"`
	Formats         map[string]ImageFormat `json:"formats,omitempty"`
}

// Validate checks the fields every upload must carry.
func (f UploadedFile) Validate() error {
	if f.URL == "" {
		return ErrMissingURL
	}
	if f.Mime == "" {
		return ErrMissingMIME
	}
	return nil
}

// ValidatePDF checks that f is a usable results document.
func (f UploadedFile) ValidatePDF() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Name == "" {
		return ErrMissingName
	}
	if f.Mime != mimePDF || !strings.Contains(strings.ToLower(f.URL), ".pdf") {
		return fmt.Errorf("%w: %s (%s)", ErrNotPDF, f.URL, f.Mime)
	}
	return nil
}

// ValidateImage checks that f is an image.
func (f UploadedFile) ValidateImage() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if !strings.HasPrefix(f.Mime, "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, f.Mime)
	}
	return nil
}

// formatOrder lists renditions from smallest to largest.
var formatOrder = []string{"thumbnail", "small", "medium", "large"}

// BestFormat returns the URL of the smallest rendition at least minWidth
// pixels wide, falling back to the original upload.
func (f UploadedFile) BestFormat(minWidth int) string {
	for _, name := range formatOrder {
		if r, ok := f.Formats[name]; ok && r.URL != "" && r.Width >= minWidth {
			return r.URL
		}
	}
	return f.URL
}

// MeetResult is a published results document for one meet in one year.
type MeetResult struct {
	ID          int           `json:"id"`
	DocumentID  string        `json:"documentId,omitempty"`
	MeetName    Meet          `json:"meetName"`
	Year        int           `json:"year"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	ResultsPDF  *UploadedFile `json:"resultsPDF"`
	PublishedAt time.Time     `json:"publishedAt"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Validate enforces the meet result invariants.
func (r MeetResult) Validate() error {
	if !r.MeetName.Valid() {
		return fmt.Errorf("meet result %d: %w: %q", r.ID, ErrUnknownMeet, r.MeetName)
	}
	if r.Year < MinYear || r.Year > MaxYear {
		return fmt.Errorf("meet result %d: %w: %d", r.ID, ErrInvalidYear, r.Year)
	}
	if r.ResultsPDF == nil {
		return fmt.Errorf("meet result %d: %w", r.ID, ErrMissingPDF)
	}
	if err := r.ResultsPDF.ValidatePDF(); err != nil {
		return fmt.Errorf("meet result %d: %w", r.ID, err)
	}
	return nil
}

// NewsPost is a club news article.
type NewsPost struct {
	ID            int           `json:"id"`
	DocumentID    string        `json:"documentId,omitempty"`
	Slug          string        `json:"slug"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	Excerpt       string        `json:"excerpt,omitempty"`
	FeaturedImage *UploadedFile `json:"featuredImage,omitempty"`
	PublishedAt   time.Time     `json:"publishedAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Validate enforces the news post invariants.
func (p NewsPost) Validate() error {
	if p.Slug == "" {
		return fmt.Errorf("news post %d: %w", p.ID, ErrMissingSlug)
	}
	if p.Title == "" {
		return fmt.Errorf("news post %q: %w", p.Slug, ErrMissingTitle)
	}
	if p.FeaturedImage != nil {
		if err := p.FeaturedImage.ValidateImage(); err != nil {
			return fmt.Errorf("news post %q: featured image: %w", p.Slug, err)
		}
	}
	return nil
}

// ArchiveLink points at archived material for a year.
type ArchiveLink struct {
	ID          int    `json:"id"`
	DocumentID  string `json:"documentId,omitempty"`
	Year        int    `json:"year"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate enforces the archive link invariants.
func (a ArchiveLink) Validate() error {
	if a.Year < MinYear || a.Year > MaxYear {
		return fmt.Errorf("archive link %d: %w: %d", a.ID, ErrInvalidYear, a.Year)
	}
	if a.URL == "" {
		return fmt.Errorf("archive link %d: %w", a.ID, ErrMissingURL)
	}
	return nil
}

// HomepageSettings is the singleton homepage configuration.
type HomepageSettings struct {
	ID                int           `json:"id"`
	HeroTitle         string        `json:"heroTitle,omitempty"`
	HeroSubtitle      string        `json:"heroSubtitle,omitempty"`
	HeroImage         *UploadedFile `json:"heroImage,omitempty"`
	FeaturedNewsCount int           `json:"featuredNewsCount"`
	ShowArchiveLinks  bool          `json:"showArchiveLinks"`
}

// Validate enforces the settings invariants.
func (s HomepageSettings) Validate() error {
	if s.FeaturedNewsCount < 0 {
		return ErrNegativeCount
	}
	if s.HeroImage != nil {
		if err := s.HeroImage.ValidateImage(); err != nil {
			return fmt.Errorf("hero image: %w", err)
		}
	}
	return nil
}

// Pagination is the CMS meta.pagination block.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Meta is the CMS response meta block.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// MeetResults is a decoded meet result collection.
type MeetResults []MeetResult

// Validate checks every element.
func (rs MeetResults) Validate() error {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortByYearDesc returns a copy ordered most recent year first. Results from
// the same year keep their relative order.
func (rs MeetResults) SortByYearDesc() MeetResults {
	out := make(MeetResults, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year > out[j].Year
	})
	return out
}

// FilterByMeet returns the results belonging to m, order preserved.
func (rs MeetResults) FilterByMeet(m Meet) MeetResults {
	out := MeetResults{}
	for _, r := range rs {
		if r.MeetName == m {
			out = append(out, r)
		}
	}
	return out
}

// GroupByMeet splits results per meet, keyed in Meets order.
func (rs MeetResults) GroupByMeet() map[Meet]MeetResults {
	groups := make(map[Meet]MeetResults, len(Meets))
	for _, m := range Meets {
		groups[m] = rs.FilterByMeet(m)
	}
	return groups
}

// NewsPosts is a decoded news post collection.
type NewsPosts []NewsPost

// Validate checks every element.
func (ps NewsPosts) Validate() error {
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveLinks is a decoded archive link collection.
type ArchiveLinks []ArchiveLink

// Validate checks every element.
func (as ArchiveLinks) Validate() error {
	for _, a := range as {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
