package sitetemplate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// localizedMonths maps a locale to its month names. Each entry lists the full
// names followed by the abbreviations that differ from English.
var localizedMonths = map[string]map[string]string{
	"en": {},
	"id": {
		"januari": "January", "februari": "February", "maret": "March", "april": "April",
		"mei": "May", "juni": "June", "juli": "July", "agustus": "August",
		"september": "September", "oktober": "October", "november": "November", "desember": "December",
		"agu": "Aug", "agt": "Aug", "okt": "Oct", "des": "Dec",
	},
	"zh": {},
}

var monthPatterns = buildMonthPatterns()

var (
	relativeUnitPattern = regexp.MustCompile(`(?i)(\d+)\s*(detik|menit|jam|hari|minggu|bulan|tahun|seconds|second|secs|sec|minutes|minute|mins|min|hours|hour|hrs|hr|days|day|weeks|week|months|month|years|year)`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

func buildMonthPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(localizedMonths))
	for locale, names := range localizedMonths {
		if len(names) == 0 {
			continue
		}
		// Longest names first so "juni" wins over a shorter prefix.
		keys := make([]string, 0, len(names))
		for name := range names {
			keys = append(keys, regexp.QuoteMeta(name))
		}
		sort.Slice(keys, func(i, j int) bool {
			return len(keys[i]) > len(keys[j])
		})
		patterns[locale] = regexp.MustCompile(`(?i)\b(` + strings.Join(keys, "|") + `)\b`)
	}
	return patterns
}

type dateParser struct {
	layout string
	locale string
}

func newDateParser(layout string, locale string) dateParser {
	return dateParser{layout: layout, locale: locale}
}

func validateDateLayout(layout string, locale string) error {
	if _, ok := localizedMonths[locale]; !ok {
		return fmt.Errorf("locale %q is not supported", locale)
	}
	reference := time.Date(2019, time.March, 14, 15, 9, 26, 0, time.UTC)
	formatted := reference.Format(layout)
	if formatted == layout {
		return fmt.Errorf("layout %q has no date fields", layout)
	}
	if _, err := time.Parse(layout, formatted); err != nil {
		return fmt.Errorf("layout %q does not round-trip: %w", layout, err)
	}
	return nil
}

// parse returns nil when the text matches neither the site layout nor a
// relative expression. An unparseable date never fails a chapter list.
func (p dateParser) parse(raw string, now time.Time) *time.Time {
	text := strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.ReplaceAll(raw, "\u00a0", " "), " "))
	if text == "" {
		return nil
	}

	translated := p.translateMonths(text)
	if parsed, err := time.ParseInLocation(p.layout, translated, time.UTC); err == nil {
		utc := parsed.UTC()
		return &utc
	}

	return parseRelativeTime(text, now)
}

func (p dateParser) translateMonths(text string) string {
	pattern, ok := monthPatterns[p.locale]
	if !ok {
		return text
	}
	names := localizedMonths[p.locale]
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		if english, ok := names[strings.ToLower(match)]; ok {
			return english
		}
		return match
	})
}

func parseRelativeTime(raw string, now time.Time) *time.Time {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return nil
	}
	if strings.Contains(normalized, "just now") || strings.Contains(normalized, "baru saja") {
		result := now.UTC()
		return &result
	}
	if strings.Contains(normalized, "yesterday") || strings.Contains(normalized, "kemarin") {
		result := now.UTC().AddDate(0, 0, -1)
		return &result
	}

	matches := relativeUnitPattern.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return nil
	}

	result := now.UTC()
	for _, match := range matches {
		quantity, err := strconv.Atoi(match[1])
		if err != nil || quantity <= 0 {
			continue
		}

		switch match[2] {
		case "second", "seconds", "sec", "secs", "detik":
			result = result.Add(-time.Duration(quantity) * time.Second)
		case "minute", "minutes", "min", "mins", "menit":
			result = result.Add(-time.Duration(quantity) * time.Minute)
		case "hour", "hours", "hr", "hrs", "jam":
			result = result.Add(-time.Duration(quantity) * time.Hour)
		case "day", "days", "hari":
			result = result.AddDate(0, 0, -quantity)
		case "week", "weeks", "minggu":
			result = result.AddDate(0, 0, -7*quantity)
		case "month", "months", "bulan":
			result = result.AddDate(0, -quantity, 0)
		case "year", "years", "tahun":
			result = result.AddDate(-quantity, 0, 0)
		}
	}

	return &result
}
