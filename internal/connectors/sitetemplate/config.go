package sitetemplate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gabriel/manga-site-adapters/internal/models"
)

const (
	pagePlaceholder  = "{page}"
	queryPlaceholder = "{query}"
	urlPlaceholder   = "{url}"

	DefaultDateFormat    = "January 2, 2006"
	DefaultScriptPattern = `var z_img='(.*?)';`
)

type PageStrategy string

const (
	PageStrategySelector PageStrategy = "selector"
	PageStrategyScript   PageStrategy = "script"
)

type FilterEncoding string

const (
	FilterEncodingQuery FilterEncoding = "query"
	FilterEncodingNone  FilterEncoding = "none"
)

var defaultImageAttrs = []string{"data-src", "data-lazy-src", "src"}

// Config describes one website. It is plain data: every site, built-in or
// loaded from YAML, goes through the same Template.
type Config struct {
	Key               string            `yaml:"key"`
	Name              string            `yaml:"name"`
	Lang              string            `yaml:"lang"`
	Enabled           *bool             `yaml:"enabled"`
	NSFW              bool              `yaml:"nsfw"`
	BaseURL           string            `yaml:"base_url"`
	SupportsLatest    *bool             `yaml:"supports_latest"`
	DateFormat        string            `yaml:"date_format"`
	DateLocale        string            `yaml:"date_locale"`
	Referer           bool              `yaml:"referer"`
	Headers           map[string]string `yaml:"headers"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`

	Popular  ListingConfig   `yaml:"popular"`
	Latest   ListingConfig   `yaml:"latest"`
	Search   SearchConfig    `yaml:"search"`
	Details  DetailsConfig   `yaml:"details"`
	Chapters ChaptersConfig  `yaml:"chapters"`
	Pages    PagesConfig     `yaml:"pages"`
	Filters  []models.Filter `yaml:"filters"`
}

type ListingConfig struct {
	Path              string   `yaml:"path"`
	ItemSelector      string   `yaml:"item_selector"`
	LinkSelector      string   `yaml:"link_selector"`
	TitleSelector     string   `yaml:"title_selector"`
	TitleAttr         string   `yaml:"title_attr"`
	ThumbnailSelector string   `yaml:"thumbnail_selector"`
	ThumbnailAttrs    []string `yaml:"thumbnail_attrs"`
	NextPageSelector  string   `yaml:"next_page_selector"`
}

type SearchConfig struct {
	ListingConfig  `yaml:",inline"`
	FilterEncoding FilterEncoding `yaml:"filter_encoding"`
}

// Field selects one text value. Attr reads an attribute instead of the
// element text; TrimPrefix drops a leading label such as "Author:".
type Field struct {
	Selector   string `yaml:"selector"`
	Attr       string `yaml:"attr"`
	TrimPrefix string `yaml:"trim_prefix"`
}

type DetailsConfig struct {
	Title         Field  `yaml:"title"`
	Author        Field  `yaml:"author"`
	Artist        Field  `yaml:"artist"`
	Description   Field  `yaml:"description"`
	Status        Field  `yaml:"status"`
	Thumbnail     Field  `yaml:"thumbnail"`
	GenreSelector string `yaml:"genre_selector"`
}

type ChaptersConfig struct {
	// Path is empty when chapters live on the detail page; otherwise it is
	// a template containing {url}, the manga's relative URL.
	Path         string `yaml:"path"`
	ItemSelector string `yaml:"item_selector"`
	LinkSelector string `yaml:"link_selector"`
	NameSelector string `yaml:"name_selector"`
	DateSelector string `yaml:"date_selector"`
	DateAttr     string `yaml:"date_attr"`
	Reverse      bool   `yaml:"reverse"`
}

type PagesConfig struct {
	Strategy      PageStrategy `yaml:"strategy"`
	ImageSelector string       `yaml:"image_selector"`
	ImageAttrs    []string     `yaml:"image_attrs"`
	ScriptPattern string       `yaml:"script_pattern"`
	ImageBaseURL  string       `yaml:"image_base_url"`
}

func (c *Config) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// latestSupported defaults to whether a latest path is configured.
func (c *Config) latestSupported() bool {
	if c.SupportsLatest == nil {
		return strings.TrimSpace(c.Latest.Path) != ""
	}
	return *c.SupportsLatest
}

func (c *Config) normalizeAndValidate() error {
	c.Key = strings.ToLower(strings.TrimSpace(c.Key))
	c.Name = strings.TrimSpace(c.Name)
	c.Lang = strings.ToLower(strings.TrimSpace(c.Lang))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if c.Key == "" {
		return fmt.Errorf("key is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Lang == "" {
		return fmt.Errorf("lang is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is invalid: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url")
	}

	if strings.TrimSpace(c.DateFormat) == "" {
		c.DateFormat = DefaultDateFormat
	}
	c.DateLocale = strings.ToLower(strings.TrimSpace(c.DateLocale))
	if c.DateLocale == "" {
		c.DateLocale = "en"
	}
	if err := validateDateLayout(c.DateFormat, c.DateLocale); err != nil {
		return fmt.Errorf("date_format: %w", err)
	}

	if err := validateListing("popular", c.Popular); err != nil {
		return err
	}
	if c.latestSupported() {
		c.Latest = inheritListing(c.Latest, c.Popular)
		if err := validateListing("latest", c.Latest); err != nil {
			return err
		}
	}
	c.Search.ListingConfig = inheritListing(c.Search.ListingConfig, c.Popular)
	if err := validateListing("search", c.Search.ListingConfig); err != nil {
		return err
	}
	if strings.Count(c.Search.Path, queryPlaceholder) != 1 {
		return fmt.Errorf("search.path must contain %s exactly once", queryPlaceholder)
	}
	switch c.Search.FilterEncoding {
	case "":
		c.Search.FilterEncoding = FilterEncodingQuery
	case FilterEncodingQuery, FilterEncodingNone:
	default:
		return fmt.Errorf("search.filter_encoding %q is not supported", c.Search.FilterEncoding)
	}

	if strings.TrimSpace(c.Chapters.ItemSelector) == "" {
		return fmt.Errorf("chapters.item_selector is required")
	}
	if c.Chapters.Path != "" && strings.Count(c.Chapters.Path, urlPlaceholder) != 1 {
		return fmt.Errorf("chapters.path must contain %s exactly once", urlPlaceholder)
	}

	switch c.Pages.Strategy {
	case "", PageStrategySelector:
		c.Pages.Strategy = PageStrategySelector
		if strings.TrimSpace(c.Pages.ImageSelector) == "" {
			return fmt.Errorf("pages.image_selector is required for the selector strategy")
		}
	case PageStrategyScript:
		if strings.TrimSpace(c.Pages.ScriptPattern) == "" {
			c.Pages.ScriptPattern = DefaultScriptPattern
		}
		pattern, err := regexp.Compile(c.Pages.ScriptPattern)
		if err != nil {
			return fmt.Errorf("pages.script_pattern is invalid: %w", err)
		}
		if pattern.NumSubexp() < 1 {
			return fmt.Errorf("pages.script_pattern needs one capture group")
		}
	default:
		return fmt.Errorf("pages.strategy %q is not supported", c.Pages.Strategy)
	}
	if len(c.Pages.ImageAttrs) == 0 {
		c.Pages.ImageAttrs = defaultImageAttrs
	}

	for index := range c.Filters {
		filter := &c.Filters[index]
		filter.Param = strings.TrimSpace(filter.Param)
		filter.Label = strings.TrimSpace(filter.Label)
		if filter.Param == "" || filter.Label == "" {
			return fmt.Errorf("filters[%d] needs param and label", index)
		}
		if filter.Kind == "" {
			filter.Kind = models.FilterSelect
		}
		switch filter.Kind {
		case models.FilterSelect:
			if len(filter.Values) == 0 {
				return fmt.Errorf("filter %q has no values", filter.Param)
			}
		case models.FilterText:
		default:
			return fmt.Errorf("filter %q has unsupported kind %q", filter.Param, filter.Kind)
		}
	}

	if c.Headers == nil {
		c.Headers = map[string]string{}
	}

	return nil
}

func validateListing(name string, listing ListingConfig) error {
	if strings.Count(listing.Path, pagePlaceholder) != 1 {
		return fmt.Errorf("%s.path must contain %s exactly once", name, pagePlaceholder)
	}
	if strings.TrimSpace(listing.ItemSelector) == "" {
		return fmt.Errorf("%s.item_selector is required", name)
	}
	return nil
}

// inheritListing fills empty selectors from the popular listing, which is how
// most sites share one card layout across listings.
func inheritListing(listing ListingConfig, base ListingConfig) ListingConfig {
	if listing.ItemSelector == "" {
		listing.ItemSelector = base.ItemSelector
		if listing.LinkSelector == "" {
			listing.LinkSelector = base.LinkSelector
		}
		if listing.TitleSelector == "" {
			listing.TitleSelector = base.TitleSelector
		}
		if listing.TitleAttr == "" {
			listing.TitleAttr = base.TitleAttr
		}
		if listing.ThumbnailSelector == "" {
			listing.ThumbnailSelector = base.ThumbnailSelector
		}
		if len(listing.ThumbnailAttrs) == 0 {
			listing.ThumbnailAttrs = base.ThumbnailAttrs
		}
	}
	if listing.NextPageSelector == "" {
		listing.NextPageSelector = base.NextPageSelector
	}
	return listing
}
