package sitetemplate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParserLayouts(t *testing.T) {
	cases := []struct {
		name     string
		layout   string
		locale   string
		raw      string
		expected time.Time
	}{
		{name: "english default", layout: DefaultDateFormat, locale: "en", raw: "March 5, 2024", expected: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{name: "indonesian month", layout: DefaultDateFormat, locale: "id", raw: "Agustus 17, 2023", expected: time.Date(2023, time.August, 17, 0, 0, 0, 0, time.UTC)},
		{name: "indonesian lowercase", layout: DefaultDateFormat, locale: "id", raw: "desember 1, 2022", expected: time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{name: "numeric layout", layout: "2006-01-02", locale: "zh", raw: "2021-11-30", expected: time.Date(2021, time.November, 30, 0, 0, 0, 0, time.UTC)},
		{name: "non breaking space", layout: "02 Jan 2006", locale: "en", raw: "09\u00a0Feb   2020", expected: time.Date(2020, time.February, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, validateDateLayout(tc.layout, tc.locale))
			parsed := newDateParser(tc.layout, tc.locale).parse(tc.raw, fixedNow)
			require.NotNil(t, parsed)
			assert.Equal(t, tc.expected, *parsed)
		})
	}
}

func TestDateParserRelative(t *testing.T) {
	parser := newDateParser(DefaultDateFormat, "id")

	cases := map[string]time.Time{
		"just now":          fixedNow,
		"Baru saja":         fixedNow,
		"yesterday":         fixedNow.AddDate(0, 0, -1),
		"3 hours ago":       fixedNow.Add(-3 * time.Hour),
		"5 menit yang lalu": fixedNow.Add(-5 * time.Minute),
		"2 minggu lalu":     fixedNow.AddDate(0, 0, -14),
		"1 bulan lalu":      fixedNow.AddDate(0, -1, 0),
		"1 year, 2 months":  fixedNow.AddDate(-1, 0, 0).AddDate(0, -2, 0),
	}

	for raw, expected := range cases {
		parsed := parser.parse(raw, fixedNow)
		require.NotNil(t, parsed, raw)
		assert.Equal(t, expected, *parsed, raw)
	}
}

func TestDateParserUnparseable(t *testing.T) {
	parser := newDateParser(DefaultDateFormat, "en")

	assert.Nil(t, parser.parse("", fixedNow))
	assert.Nil(t, parser.parse("   ", fixedNow))
	assert.Nil(t, parser.parse("new", fixedNow))
	assert.Nil(t, parser.parse("Chapter 12", fixedNow))
}

func TestValidateDateLayout(t *testing.T) {
	assert.NoError(t, validateDateLayout("January 2, 2006", "en"))
	assert.NoError(t, validateDateLayout("02/01/2006", "id"))
	assert.Error(t, validateDateLayout("yyyy-MM-dd", "en"))
	assert.Error(t, validateDateLayout(DefaultDateFormat, "fr"))
}
