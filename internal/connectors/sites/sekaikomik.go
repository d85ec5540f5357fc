package sites

import "github.com/gabriel/manga-site-adapters/internal/connectors/sitetemplate"

func Sekaikomik() sitetemplate.Config {
	return WPMangaReader(
		"sekaikomik",
		"Sekaikomik",
		"https://www.sekaikomik.in",
		"id",
		WithDateFormat("January 2, 2006", "id"),
		WithNSFW(),
	)
}
