package sites

import (
	"github.com/gabriel/manga-site-adapters/internal/connectors/sitetemplate"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

func BainianManga() sitetemplate.Config {
	return sitetemplate.Config{
		Key:     "bainianmanga",
		Name:    "百年漫画",
		Lang:    "zh",
		BaseURL: "https://m.bnmanhua.com",
		Referer: true,
		Popular: sitetemplate.ListingConfig{
			Path:              "/page/hot/{page}.html",
			ItemSelector:      "ul.tbox_m > li.vbox",
			LinkSelector:      "a.vbox_t",
			TitleAttr:         "title",
			ThumbnailSelector: "mip-img",
			ThumbnailAttrs:    []string{"src"},
			NextPageSelector:  "a.pagelink_a",
		},
		Latest: sitetemplate.ListingConfig{Path: "/page/new/{page}.html"},
		Search: sitetemplate.SearchConfig{
			ListingConfig:  sitetemplate.ListingConfig{Path: "/index.php?m=vod-search-pg-{page}-wd-{query}.html"},
			FilterEncoding: sitetemplate.FilterEncodingNone,
		},
		Details: sitetemplate.DetailsConfig{
			Author:      sitetemplate.Field{Selector: "div.data p.dir", TrimPrefix: "作者："},
			Description: sitetemplate.Field{Selector: "div.tbox_js"},
		},
		Chapters: sitetemplate.ChaptersConfig{
			ItemSelector: "ul.list_block > li",
			LinkSelector: "a",
			Reverse:      true,
		},
		Pages: sitetemplate.PagesConfig{
			Strategy:     sitetemplate.PageStrategyScript,
			ImageBaseURL: "https://img.hltongchen.com/",
		},
		// The site exposes no genre parameter; the filter only mirrors its UI.
		Filters: []models.Filter{
			{Param: "genre", Label: "Genre", Values: []models.FilterValue{{Label: "All", Value: ""}}},
		},
	}
}
