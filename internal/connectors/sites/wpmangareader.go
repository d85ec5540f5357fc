package sites

import (
	"strings"

	"github.com/gabriel/manga-site-adapters/internal/connectors/sitetemplate"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

type WPMangaReaderOption func(*sitetemplate.Config)

func WithDateFormat(layout string, locale string) WPMangaReaderOption {
	return func(cfg *sitetemplate.Config) {
		cfg.DateFormat = layout
		cfg.DateLocale = locale
	}
}

// WithMangaDirectory overrides the "/manga" listing directory some installs rename.
func WithMangaDirectory(directory string) WPMangaReaderOption {
	return func(cfg *sitetemplate.Config) {
		directory = "/" + strings.Trim(strings.TrimSpace(directory), "/")
		cfg.Popular.Path = directory + "/?page={page}&order=popular"
		cfg.Latest.Path = directory + "/?page={page}&order=update"
		cfg.Search.Path = directory + "/?page={page}&title={query}"
	}
}

func WithNSFW() WPMangaReaderOption {
	return func(cfg *sitetemplate.Config) {
		cfg.NSFW = true
	}
}

// WPMangaReader returns the config shared by sites running the WordPress
// MangaReader theme.
func WPMangaReader(key string, name string, baseURL string, lang string, opts ...WPMangaReaderOption) sitetemplate.Config {
	cfg := sitetemplate.Config{
		Key:        key,
		Name:       name,
		Lang:       lang,
		BaseURL:    baseURL,
		DateFormat: sitetemplate.DefaultDateFormat,
		DateLocale: "en",
		Popular: sitetemplate.ListingConfig{
			ItemSelector:      ".utao .uta .imgu, .listupd .bs .bsx, .listo .bs .bsx",
			LinkSelector:      "a",
			TitleAttr:         "title",
			ThumbnailSelector: "img",
			ThumbnailAttrs:    []string{"data-lazy-src", "data-src", "src"},
			NextPageSelector:  "div.pagination .next, div.hpage .r",
		},
		Details: sitetemplate.DetailsConfig{
			Title:         sitetemplate.Field{Selector: "h1.entry-title"},
			Author:        sitetemplate.Field{Selector: `.infotable tr:contains("Author") td:last-child, .tsinfo .imptdt:contains("Author") i, .fmed b:contains("Author") + span`},
			Artist:        sitetemplate.Field{Selector: `.infotable tr:contains("Artist") td:last-child, .tsinfo .imptdt:contains("Artist") i, .fmed b:contains("Artist") + span`},
			Description:   sitetemplate.Field{Selector: `.desc, .entry-content[itemprop="description"]`},
			Status:        sitetemplate.Field{Selector: `.infotable tr:contains("Status") td:last-child, .tsinfo .imptdt:contains("Status") i`},
			Thumbnail:     sitetemplate.Field{Selector: ".thumb img"},
			GenreSelector: "div.gnr a, .mgen a, .seriestugenre a",
		},
		Chapters: sitetemplate.ChaptersConfig{
			ItemSelector: "div.bxcl li, div.cl li, #chapterlist li",
			LinkSelector: ".lchx > a, span.leftoff a, div.eph-num > a",
			NameSelector: ".lch a, .chapternum",
			DateSelector: ".chapterdate",
		},
		Pages: sitetemplate.PagesConfig{
			Strategy:      sitetemplate.PageStrategySelector,
			ImageSelector: "div#readerarea img",
		},
		Filters: wpMangaReaderFilters(),
	}
	WithMangaDirectory("/manga")(&cfg)

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func wpMangaReaderFilters() []models.Filter {
	return []models.Filter{
		{
			Param: "status",
			Label: "Status",
			Values: []models.FilterValue{
				{Label: "All", Value: ""},
				{Label: "Ongoing", Value: "ongoing"},
				{Label: "Completed", Value: "completed"},
				{Label: "Hiatus", Value: "hiatus"},
			},
		},
		{
			Param: "type",
			Label: "Type",
			Values: []models.FilterValue{
				{Label: "All", Value: ""},
				{Label: "Manga", Value: "manga"},
				{Label: "Manhwa", Value: "manhwa"},
				{Label: "Manhua", Value: "manhua"},
				{Label: "Comic", Value: "comic"},
			},
		},
		{
			Param: "order",
			Label: "Sort By",
			Values: []models.FilterValue{
				{Label: "Default", Value: ""},
				{Label: "A-Z", Value: "title"},
				{Label: "Z-A", Value: "titlereverse"},
				{Label: "Latest Update", Value: "update"},
				{Label: "Latest Added", Value: "latest"},
				{Label: "Popular", Value: "popular"},
			},
		},
		{Param: "author", Label: "Author", Kind: models.FilterText},
		{Param: "yearx", Label: "Year", Kind: models.FilterText},
	}
}
