package sitetemplate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSiteYAML = `
key: sitea
name: Site A
lang: en
base_url: https://sitea.test
requests_per_second: 2
popular:
  path: /popular/{page}
  item_selector: div.card
  link_selector: a
  next_page_selector: a.next
search:
  path: /?s={query}&page={page}
  filter_encoding: none
chapters:
  item_selector: ul.chapters li
  reverse: true
pages:
  strategy: script
  image_base_url: https://img.sitea.test/
filters:
  - param: genre
    label: Genre
    values:
      - label: All
        value: ""
`

const disabledSiteYAML = `
key: siteb
name: Site B
lang: en
enabled: false
base_url: https://siteb.test
popular:
  path: /popular/{page}
  item_selector: div.card
chapters:
  item_selector: li
pages:
  image_selector: img
`

const brokenSiteYAML = `
key: sitec
name: Site C
lang: en
base_url: https://sitec.test
popular:
  path: /popular
  item_selector: div.card
`

func writeSite(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeSite(t, tmpDir, "a.yaml", validSiteYAML)
	writeSite(t, tmpDir, "b.yml", disabledSiteYAML)
	writeSite(t, tmpDir, "notes.txt", "not a site")

	seen := make([]Config, 0)
	loaded, err := LoadFromDir(tmpDir, func(cfg Config) Fetcher {
		seen = append(seen, cfg)
		return &countingFetcher{}
	})
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	connector := loaded[0]
	assert.Equal(t, "sitea", connector.Key())
	assert.Equal(t, "yaml", connector.Kind())
	require.Len(t, seen, 1)
	assert.Equal(t, 2.0, seen[0].RequestsPerSecond)

	template := connector.(*Connector).Template()
	cfg := template.Config()
	assert.Equal(t, PageStrategyScript, cfg.Pages.Strategy)
	assert.Equal(t, DefaultScriptPattern, cfg.Pages.ScriptPattern)
	assert.True(t, cfg.Chapters.Reverse)
	assert.Equal(t, FilterEncodingNone, cfg.Search.FilterEncoding)
	assert.Equal(t, "a.next", cfg.Search.NextPageSelector)
}

func TestLoadFromDirReportsBrokenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeSite(t, tmpDir, "a.yaml", validSiteYAML)
	writeSite(t, tmpDir, "c.yaml", brokenSiteYAML)
	writeSite(t, tmpDir, "d.yaml", "key: [unterminated")

	loaded, err := LoadFromDir(tmpDir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
	assert.Contains(t, err.Error(), "d.yaml")
	require.Len(t, loaded, 1)
	assert.Equal(t, "sitea", loaded[0].Key())
}

func TestLoadFromDirMissingDir(t *testing.T) {
	loaded, err := LoadFromDir(filepath.Join(t.TempDir(), "absent"), nil)
	assert.NoError(t, err)
	assert.Empty(t, loaded)

	loaded, err = LoadFromDir("  ", nil)
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

const misplacedKeySiteYAML = `
key: sited
name: Site D
lang: en
base_url: https://sited.test
popular:
  path: /popular/{page}
  item_selector: div.card
search:
  path: /?s={query}&page={page}
chapters:
  item_selector: li
  date_format: Jan 2, 2006
pages:
  image_selector: img
`

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	tmpDir := t.TempDir()
	writeSite(t, tmpDir, "d.yaml", misplacedKeySiteYAML)

	_, err := LoadFile(filepath.Join(tmpDir, "d.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date_format")

	writeSite(t, tmpDir, "a.yaml", validSiteYAML)
	loaded, err := LoadFromDir(tmpDir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "d.yaml")
	require.Len(t, loaded, 1)
	assert.Equal(t, "sitea", loaded[0].Key())
}

func TestLoadFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	writeSite(t, tmpDir, "empty.yaml", "")

	_, err := LoadFile(filepath.Join(tmpDir, "empty.yaml"))
	assert.EqualError(t, err, "site config is empty")
}
