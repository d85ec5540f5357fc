package sitetemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

var (
	ErrMalformedScriptData = errors.New("malformed embedded image data")
	ErrUnknownListing      = errors.New("unknown listing kind")
)

func (t *Template) listing(kind models.ListingKind) (ListingConfig, error) {
	switch kind {
	case models.ListingPopular:
		return t.config.Popular, nil
	case models.ListingLatest:
		if !t.config.latestSupported() {
			return ListingConfig{}, fmt.Errorf("%s latest listing: %w", t.config.Key, connectors.ErrUnsupported)
		}
		return t.config.Latest, nil
	case models.ListingSearch:
		return t.config.Search.ListingConfig, nil
	default:
		return ListingConfig{}, fmt.Errorf("%w: %q", ErrUnknownListing, kind)
	}
}

// ParseListing returns the manga cards of a listing page in document order.
// A selector that matches nothing yields an empty slice.
func (t *Template) ParseListing(doc *Document, kind models.ListingKind) ([]models.MangaSummary, error) {
	listing, err := t.listing(kind)
	if err != nil {
		return nil, err
	}

	items := make([]models.MangaSummary, 0)
	doc.Find(listing.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		if manga, ok := t.mangaFromElement(item, listing); ok {
			items = append(items, manga)
		}
	})
	return items, nil
}

func (t *Template) HasNextPage(doc *Document, kind models.ListingKind) bool {
	listing, err := t.listing(kind)
	if err != nil || strings.TrimSpace(listing.NextPageSelector) == "" {
		return false
	}
	return doc.Find(listing.NextPageSelector).Length() > 0
}

func (t *Template) ParseListingPage(doc *Document, kind models.ListingKind) (models.ListingPage, error) {
	items, err := t.ParseListing(doc, kind)
	if err != nil {
		return models.ListingPage{}, err
	}
	return models.ListingPage{Manga: items, HasNextPage: t.HasNextPage(doc, kind)}, nil
}

func (t *Template) mangaFromElement(item *goquery.Selection, listing ListingConfig) (models.MangaSummary, bool) {
	link := linkOf(item, listing.LinkSelector)
	relative := t.relativeURL(link.AttrOr("href", ""))
	if relative == "" {
		return models.MangaSummary{}, false
	}

	title := ""
	switch {
	case listing.TitleSelector != "":
		node := item.Find(listing.TitleSelector).First()
		if listing.TitleAttr != "" {
			title = cleanText(node.AttrOr(listing.TitleAttr, ""))
		} else {
			title = cleanText(node.Text())
		}
	case listing.TitleAttr != "":
		title = cleanText(link.AttrOr(listing.TitleAttr, ""))
	}
	if title == "" {
		title = cleanText(link.AttrOr("title", ""))
	}
	if title == "" {
		title = cleanText(link.Text())
	}

	manga := models.MangaSummary{URL: relative, Title: title}
	if listing.ThumbnailSelector != "" {
		attrs := listing.ThumbnailAttrs
		if len(attrs) == 0 {
			attrs = defaultImageAttrs
		}
		manga.ThumbnailURL = t.absoluteURL(firstAttr(item.Find(listing.ThumbnailSelector).First(), attrs))
	}

	return manga, true
}

// ParseDetails never fails: every field missing from the page stays empty.
func (t *Template) ParseDetails(doc *Document) models.MangaDetails {
	cfg := t.config.Details

	details := models.MangaDetails{
		Title:       fieldText(doc, cfg.Title),
		Author:      fieldText(doc, cfg.Author),
		Artist:      fieldText(doc, cfg.Artist),
		Description: blockText(doc, cfg.Description),
		Genres:      []string{},
		Status:      parseStatus(fieldText(doc, cfg.Status)),
	}

	if cfg.GenreSelector != "" {
		seen := map[string]struct{}{}
		doc.Find(cfg.GenreSelector).Each(func(_ int, node *goquery.Selection) {
			genre := cleanText(node.Text())
			if genre == "" {
				return
			}
			if _, exists := seen[genre]; exists {
				return
			}
			seen[genre] = struct{}{}
			details.Genres = append(details.Genres, genre)
		})
	}

	if cfg.Thumbnail.Selector != "" {
		node := doc.Find(cfg.Thumbnail.Selector).First()
		attrs := defaultImageAttrs
		if cfg.Thumbnail.Attr != "" {
			attrs = []string{cfg.Thumbnail.Attr}
		}
		details.ThumbnailURL = t.absoluteURL(firstAttr(node, attrs))
	}

	return details
}

// ParseChapterList returns chapters in source order, or reversed when the
// site lists newest first and the config asks for oldest first. Position
// always records the source order.
func (t *Template) ParseChapterList(doc *Document) []models.Chapter {
	cfg := t.config.Chapters
	now := t.now()

	chapters := make([]models.Chapter, 0)
	doc.Find(cfg.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		link := linkOf(item, cfg.LinkSelector)
		relative := t.relativeURL(link.AttrOr("href", ""))
		if relative == "" {
			return
		}

		name := ""
		if cfg.NameSelector != "" {
			name = cleanText(item.Find(cfg.NameSelector).First().Text())
		}
		if name == "" {
			name = cleanText(link.Text())
		}

		chapter := models.Chapter{URL: relative, Name: name, Position: len(chapters)}
		if cfg.DateSelector != "" {
			node := item.Find(cfg.DateSelector).First()
			raw := node.Text()
			if cfg.DateAttr != "" {
				raw = node.AttrOr(cfg.DateAttr, "")
			}
			chapter.UploadedAt = t.dates.parse(raw, now)
		}
		chapters = append(chapters, chapter)
	})

	if cfg.Reverse {
		slices.Reverse(chapters)
	}
	return chapters
}

func (t *Template) ParsePageList(doc *Document) ([]models.Page, error) {
	switch t.config.Pages.Strategy {
	case PageStrategyScript:
		return t.pagesFromScript(doc)
	default:
		return t.pagesFromSelector(doc), nil
	}
}

func (t *Template) pagesFromSelector(doc *Document) []models.Page {
	pages := make([]models.Page, 0)
	doc.Find(t.config.Pages.ImageSelector).Each(func(_ int, node *goquery.Selection) {
		imageURL := t.absoluteURL(firstAttr(node, t.config.Pages.ImageAttrs))
		if imageURL == "" {
			return
		}
		pages = append(pages, models.Page{Index: len(pages), ImageURL: imageURL})
	})
	return pages
}

// pagesFromScript finds an inline JSON array of image paths. A page without
// the assignment is an empty chapter; an assignment that is not valid JSON is
// an error, since silently returning nothing would look the same.
func (t *Template) pagesFromScript(doc *Document) ([]models.Page, error) {
	match := t.scriptPattern.FindStringSubmatch(doc.Raw())
	if len(match) < 2 {
		return []models.Page{}, nil
	}

	var paths []string
	if err := json.Unmarshal([]byte(match[1]), &paths); err != nil {
		return nil, fmt.Errorf("decode script image list: %w: %w", ErrMalformedScriptData, err)
	}

	// Every entry becomes a page, blank ones included.
	pages := make([]models.Page, 0, len(paths))
	for i, path := range paths {
		path = strings.TrimSpace(path)
		imageURL := t.config.Pages.ImageBaseURL + path
		if t.config.Pages.ImageBaseURL == "" {
			imageURL = t.absoluteURL(path)
		}
		pages = append(pages, models.Page{Index: i, ImageURL: imageURL})
	}
	return pages, nil
}

func (t *Template) absoluteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "//") {
		return t.base.Scheme + ":" + trimmed
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	return t.base.ResolveReference(ref).String()
}

// relativeURL drops scheme and host, keeping path, query and fragment.
func (t *Template) relativeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	resolved := t.base.ResolveReference(ref)

	relative := resolved.EscapedPath()
	if relative == "" {
		relative = "/"
	}
	if resolved.RawQuery != "" {
		relative += "?" + resolved.RawQuery
	}
	if resolved.Fragment != "" {
		relative += "#" + resolved.EscapedFragment()
	}
	return relative
}

func linkOf(item *goquery.Selection, selector string) *goquery.Selection {
	if selector != "" {
		return item.Find(selector).First()
	}
	if item.Is("a") {
		return item
	}
	return item.Find("a[href]").First()
}

func fieldText(doc *Document, field Field) string {
	if strings.TrimSpace(field.Selector) == "" {
		return ""
	}
	node := doc.Find(field.Selector).First()
	if node.Length() == 0 {
		return ""
	}

	text := node.Text()
	if field.Attr != "" {
		text = node.AttrOr(field.Attr, "")
	}
	return trimLabel(cleanText(text), field.TrimPrefix)
}

func blockText(doc *Document, field Field) string {
	if strings.TrimSpace(field.Selector) == "" {
		return ""
	}

	parts := make([]string, 0)
	doc.Find(field.Selector).Each(func(_ int, node *goquery.Selection) {
		text := node.Text()
		if field.Attr != "" {
			text = node.AttrOr(field.Attr, "")
		}
		if cleaned := trimLabel(cleanText(text), field.TrimPrefix); cleaned != "" {
			parts = append(parts, cleaned)
		}
	})
	return strings.Join(parts, "\n")
}

func trimLabel(text string, prefix string) string {
	if prefix == "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(text, prefix))
}

func firstAttr(node *goquery.Selection, attrs []string) string {
	if node == nil || node.Length() == 0 {
		return ""
	}
	for _, attr := range attrs {
		value := strings.TrimSpace(node.AttrOr(attr, ""))
		if value == "" || strings.HasPrefix(value, "data:") {
			continue
		}
		return value
	}
	return ""
}

func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func parseStatus(raw string) models.MangaStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return models.StatusUnknown
	}

	switch {
	case containsAny(normalized, "ongoing", "berjalan", "publishing", "连载"):
		return models.StatusOngoing
	case containsAny(normalized, "completed", "complete", "tamat", "finished", "完结"):
		return models.StatusCompleted
	case containsAny(normalized, "hiatus"):
		return models.StatusHiatus
	case containsAny(normalized, "cancelled", "canceled", "dropped"):
		return models.StatusCancelled
	default:
		return models.StatusUnknown
	}
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
