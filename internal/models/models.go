package models

import (
	"strings"
	"time"
)

type ListingKind string

const (
	ListingPopular ListingKind = "popular"
	ListingLatest  ListingKind = "latest"
	ListingSearch  ListingKind = "search"
)

func ParseListingKind(raw string) (ListingKind, bool) {
	switch ListingKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ListingPopular:
		return ListingPopular, true
	case ListingLatest:
		return ListingLatest, true
	case ListingSearch:
		return ListingSearch, true
	default:
		return "", false
	}
}

// MangaSummary is one entry of a listing. URL is relative to the site base URL.
type MangaSummary struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type ListingPage struct {
	Manga       []MangaSummary `json:"manga"`
	HasNextPage bool           `json:"hasNextPage"`
}

type MangaStatus string

const (
	StatusUnknown   MangaStatus = "unknown"
	StatusOngoing   MangaStatus = "ongoing"
	StatusCompleted MangaStatus = "completed"
	StatusHiatus    MangaStatus = "hiatus"
	StatusCancelled MangaStatus = "cancelled"
)

type MangaDetails struct {
	URL          string      `json:"url"`
	Title        string      `json:"title"`
	Author       string      `json:"author"`
	Artist       string      `json:"artist"`
	Description  string      `json:"description"`
	Genres       []string    `json:"genres"`
	Status       MangaStatus `json:"status"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
}

// Chapter.Position is the chapter's index on the source page, so it survives
// the optional oldest-first reversal unchanged.
type Chapter struct {
	URL        string     `json:"url"`
	Name       string     `json:"name"`
	Position   int        `json:"position"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

type Page struct {
	Index    int    `json:"index"`
	ImageURL string `json:"imageUrl"`
}

type FilterKind string

const (
	FilterSelect FilterKind = "select"
	FilterText   FilterKind = "text"
)

type FilterValue struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

type Filter struct {
	Param  string        `json:"param" yaml:"param"`
	Label  string        `json:"label" yaml:"label"`
	Kind   FilterKind    `json:"kind" yaml:"kind"`
	Values []FilterValue `json:"values,omitempty" yaml:"values"`
}

func (f Filter) Allows(value string) bool {
	if f.Kind != FilterSelect {
		return true
	}
	for _, option := range f.Values {
		if option.Value == value {
			return true
		}
	}
	return false
}

type FilterSelection struct {
	Param string `json:"param"`
	Value string `json:"value"`
}

type Source struct {
	ID            int64      `json:"id"`
	Key           string     `json:"key"`
	Name          string     `json:"name"`
	Lang          string     `json:"lang"`
	ConnectorKind string     `json:"connectorKind"`
	BaseURL       string     `json:"baseUrl"`
	NSFW          bool       `json:"nsfw"`
	Enabled       bool       `json:"enabled"`
	Healthy       *bool      `json:"healthy,omitempty"`
	LastError     *string    `json:"lastError,omitempty"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
