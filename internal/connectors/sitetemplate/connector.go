package sitetemplate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/fetch"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

// Fetcher executes a prepared request and returns the response body.
// *fetch.Client is the production implementation.
type Fetcher interface {
	Fetch(req *http.Request) ([]byte, error)
}

// Connector pairs a Template with a Fetcher to serve a whole site.
type Connector struct {
	template *Template
	fetcher  Fetcher
	kind     string
}

func NewConnector(cfg Config, kind string, fetcher Fetcher, opts ...Option) (*Connector, error) {
	template, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.Options{RequestsPerSecond: template.config.RequestsPerSecond})
	}
	if kind == "" {
		kind = connectors.KindYAML
	}
	return &Connector{template: template, fetcher: fetcher, kind: kind}, nil
}

func (c *Connector) Template() *Template {
	return c.template
}

func (c *Connector) Key() string {
	return c.template.config.Key
}

func (c *Connector) Name() string {
	return c.template.config.Name
}

func (c *Connector) Kind() string {
	return c.kind
}

func (c *Connector) Lang() string {
	return c.template.config.Lang
}

func (c *Connector) BaseURL() string {
	return c.template.config.BaseURL
}

func (c *Connector) NSFW() bool {
	return c.template.config.NSFW
}

func (c *Connector) SupportsLatest() bool {
	return c.template.config.latestSupported()
}

func (c *Connector) Filters() []models.Filter {
	filters := make([]models.Filter, len(c.template.config.Filters))
	copy(filters, c.template.config.Filters)
	return filters
}

func (c *Connector) HealthCheck(ctx context.Context) error {
	request, err := c.template.HomeRequest()
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, request); err != nil {
		return fmt.Errorf("request home page: %w", err)
	}
	return nil
}

func (c *Connector) Popular(ctx context.Context, page int) (models.ListingPage, error) {
	request, err := c.template.PopularRequest(page)
	if err != nil {
		return models.ListingPage{}, err
	}
	return c.listing(ctx, request, models.ListingPopular)
}

func (c *Connector) Latest(ctx context.Context, page int) (models.ListingPage, error) {
	request, err := c.template.LatestRequest(page)
	if err != nil {
		return models.ListingPage{}, err
	}
	return c.listing(ctx, request, models.ListingLatest)
}

func (c *Connector) Search(ctx context.Context, page int, query string, filters []models.FilterSelection) (models.ListingPage, error) {
	request, err := c.template.SearchRequest(page, query, filters)
	if err != nil {
		return models.ListingPage{}, err
	}
	return c.listing(ctx, request, models.ListingSearch)
}

func (c *Connector) Details(ctx context.Context, manga models.MangaSummary) (models.MangaDetails, error) {
	request, err := c.template.DetailRequest(manga)
	if err != nil {
		return models.MangaDetails{}, err
	}
	doc, err := c.document(ctx, request)
	if err != nil {
		return models.MangaDetails{}, err
	}

	details := c.template.ParseDetails(doc)
	details.URL = manga.URL
	if details.Title == "" {
		details.Title = manga.Title
	}
	if details.ThumbnailURL == "" {
		details.ThumbnailURL = manga.ThumbnailURL
	}
	return details, nil
}

func (c *Connector) Chapters(ctx context.Context, manga models.MangaSummary) ([]models.Chapter, error) {
	request, err := c.template.ChapterListRequest(manga)
	if err != nil {
		return nil, err
	}
	doc, err := c.document(ctx, request)
	if err != nil {
		return nil, err
	}
	return c.template.ParseChapterList(doc), nil
}

func (c *Connector) Pages(ctx context.Context, chapter models.Chapter) ([]models.Page, error) {
	request, err := c.template.PageListRequest(chapter)
	if err != nil {
		return nil, err
	}
	doc, err := c.document(ctx, request)
	if err != nil {
		return nil, err
	}
	return c.template.ParsePageList(doc)
}

func (c *Connector) listing(ctx context.Context, request Request, kind models.ListingKind) (models.ListingPage, error) {
	doc, err := c.document(ctx, request)
	if err != nil {
		return models.ListingPage{}, err
	}
	return c.template.ParseListingPage(doc, kind)
}

func (c *Connector) document(ctx context.Context, request Request) (*Document, error) {
	body, err := c.do(ctx, request)
	if err != nil {
		return nil, err
	}
	return NewDocument(body)
}

func (c *Connector) do(ctx context.Context, request Request) ([]byte, error) {
	req, err := request.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Fetch(req)
}
