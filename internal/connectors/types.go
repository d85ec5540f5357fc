package connectors

import (
	"context"
	"errors"

	"github.com/gabriel/manga-site-adapters/internal/models"
)

const (
	KindBuiltin = "builtin"
	KindYAML    = "yaml"
)

var (
	// ErrInvalidRequest marks failures to build an outgoing request. No network
	// call has been made when it is returned.
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnsupported    = errors.New("operation not supported by source")
)

type Connector interface {
	Key() string
	Name() string
	Kind() string
	Lang() string
	BaseURL() string
	NSFW() bool
	SupportsLatest() bool
	Filters() []models.Filter
	HealthCheck(ctx context.Context) error
	Popular(ctx context.Context, page int) (models.ListingPage, error)
	Latest(ctx context.Context, page int) (models.ListingPage, error)
	Search(ctx context.Context, page int, query string, filters []models.FilterSelection) (models.ListingPage, error)
	Details(ctx context.Context, manga models.MangaSummary) (models.MangaDetails, error)
	Chapters(ctx context.Context, manga models.MangaSummary) ([]models.Chapter, error)
	Pages(ctx context.Context, chapter models.Chapter) ([]models.Page, error)
}
