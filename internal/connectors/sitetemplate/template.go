package sitetemplate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

// Template implements every request builder and parser for one site from its
// Config alone. A Template never changes after New returns, so one value can
// serve any number of goroutines.
type Template struct {
	config        Config
	base          *url.URL
	header        http.Header
	scriptPattern *regexp.Regexp
	dates         dateParser
	now           func() time.Time
}

type Option func(*Template)

// WithClock fixes the reference time used for relative chapter dates.
func WithClock(now func() time.Time) Option {
	return func(t *Template) {
		if now != nil {
			t.now = now
		}
	}
}

// Request describes an outgoing call. It carries everything the HTTP
// collaborator needs and nothing it does not.
type Request struct {
	Method string
	URL    string
	Header http.Header
}

func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", connectors.ErrInvalidRequest, err)
	}
	req.Header = r.Header.Clone()
	return req, nil
}

func New(cfg Config, opts ...Option) (*Template, error) {
	if err := cfg.normalizeAndValidate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	header := http.Header{}
	for key, value := range cfg.Headers {
		header.Set(key, value)
	}
	if cfg.Referer && header.Get("Referer") == "" {
		header.Set("Referer", cfg.BaseURL)
	}

	t := &Template{
		config: cfg,
		base:   base,
		header: header,
		dates:  newDateParser(cfg.DateFormat, cfg.DateLocale),
		now:    time.Now,
	}
	if cfg.Pages.Strategy == PageStrategyScript {
		t.scriptPattern = regexp.MustCompile(cfg.Pages.ScriptPattern)
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Config returns the normalized configuration.
func (t *Template) Config() Config {
	return t.config
}

func (t *Template) HomeRequest() (Request, error) {
	return t.newRequest(t.config.BaseURL + "/")
}

func (t *Template) PopularRequest(page int) (Request, error) {
	return t.listingRequest(t.config.Popular.Path, page)
}

func (t *Template) LatestRequest(page int) (Request, error) {
	if !t.config.latestSupported() {
		return Request{}, fmt.Errorf("%s latest listing: %w", t.config.Key, connectors.ErrUnsupported)
	}
	return t.listingRequest(t.config.Latest.Path, page)
}

func (t *Template) SearchRequest(page int, query string, filters []models.FilterSelection) (Request, error) {
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", connectors.ErrInvalidRequest, page)
	}

	query = strings.TrimSpace(query)
	if strings.IndexFunc(query, unicode.IsControl) >= 0 {
		return Request{}, fmt.Errorf("%w: query contains control characters", connectors.ErrInvalidRequest)
	}

	active, err := t.activeFilters(filters)
	if err != nil {
		return Request{}, err
	}
	if query == "" && len(active) == 0 {
		return Request{}, fmt.Errorf("%w: search needs a query or at least one filter", connectors.ErrInvalidRequest)
	}

	path := strings.Replace(t.config.Search.Path, pagePlaceholder, strconv.Itoa(page), 1)
	path = strings.Replace(path, queryPlaceholder, url.QueryEscape(query), 1)
	endpoint := t.config.BaseURL + ensurePathPrefix(path)

	if t.config.Search.FilterEncoding == FilterEncodingQuery && len(active) > 0 {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %v", connectors.ErrInvalidRequest, err)
		}
		values := parsed.Query()
		for _, selection := range active {
			values.Add(selection.Param, selection.Value)
		}
		parsed.RawQuery = values.Encode()
		endpoint = parsed.String()
	}

	return t.newRequest(endpoint)
}

func (t *Template) DetailRequest(manga models.MangaSummary) (Request, error) {
	relative, err := t.storedURL(manga.URL)
	if err != nil {
		return Request{}, err
	}
	return t.newRequest(t.config.BaseURL + relative)
}

func (t *Template) ChapterListRequest(manga models.MangaSummary) (Request, error) {
	if t.config.Chapters.Path == "" {
		return t.DetailRequest(manga)
	}
	relative, err := t.storedURL(manga.URL)
	if err != nil {
		return Request{}, err
	}
	path := strings.Replace(t.config.Chapters.Path, urlPlaceholder, relative, 1)
	return t.newRequest(t.config.BaseURL + ensurePathPrefix(path))
}

func (t *Template) PageListRequest(chapter models.Chapter) (Request, error) {
	relative, err := t.storedURL(chapter.URL)
	if err != nil {
		return Request{}, err
	}
	return t.newRequest(t.config.BaseURL + relative)
}

func (t *Template) listingRequest(pathTemplate string, page int) (Request, error) {
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", connectors.ErrInvalidRequest, page)
	}
	path := strings.Replace(pathTemplate, pagePlaceholder, strconv.Itoa(page), 1)
	return t.newRequest(t.config.BaseURL + ensurePathPrefix(path))
}

func (t *Template) activeFilters(selections []models.FilterSelection) ([]models.FilterSelection, error) {
	active := make([]models.FilterSelection, 0, len(selections))
	for _, selection := range selections {
		param := strings.TrimSpace(selection.Param)
		value := strings.TrimSpace(selection.Value)
		if value == "" {
			continue
		}

		filter, ok := t.filter(param)
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter %q", connectors.ErrInvalidRequest, param)
		}
		if !filter.Allows(value) {
			return nil, fmt.Errorf("%w: value %q is not allowed for filter %q", connectors.ErrInvalidRequest, value, param)
		}
		active = append(active, models.FilterSelection{Param: param, Value: value})
	}
	return active, nil
}

func (t *Template) filter(param string) (models.Filter, bool) {
	for _, filter := range t.config.Filters {
		if filter.Param == param {
			return filter, true
		}
	}
	return models.Filter{}, false
}

func (t *Template) newRequest(endpoint string) (Request, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return Request{}, fmt.Errorf("%w: %v", connectors.ErrInvalidRequest, err)
	}
	return Request{
		Method: http.MethodGet,
		URL:    endpoint,
		Header: t.header.Clone(),
	}, nil
}

// storedURL accepts the relative URL a listing produced. Absolute URLs on the
// site's own host are reduced to their path so addressing stays idempotent.
func (t *Template) storedURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", connectors.ErrInvalidRequest)
	}
	if strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, "//") {
		return trimmed, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", connectors.ErrInvalidRequest, err)
	}
	if parsed.Host != "" && !sameHost(parsed.Hostname(), t.base.Hostname()) {
		return "", fmt.Errorf("%w: url %q does not belong to %s", connectors.ErrInvalidRequest, trimmed, t.config.Name)
	}
	return t.relativeURL(trimmed), nil
}

func ensurePathPrefix(rawPath string) string {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return "/"
	}
	if strings.HasPrefix(rawPath, "/") {
		return rawPath
	}
	return "/" + rawPath
}

func sameHost(a string, b string) bool {
	trim := func(host string) string {
		host = strings.ToLower(host)
		for _, prefix := range []string{"www.", "m."} {
			host = strings.TrimPrefix(host, prefix)
		}
		return host
	}
	return trim(a) == trim(b)
}
