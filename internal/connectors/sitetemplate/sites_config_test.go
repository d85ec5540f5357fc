package sitetemplate

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShippedSite(t *testing.T, name string) *Template {
	t.Helper()

	_, currentFile, _, _ := runtime.Caller(0)
	sitePath := filepath.Join(filepath.Dir(currentFile), "..", "..", "..", "sites", name)

	cfg, err := LoadFile(sitePath)
	require.NoError(t, err)
	template, err := New(cfg, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return template
}

func TestMgekoListing(t *testing.T) {
	template := loadShippedSite(t, "mgeko.yaml")

	doc := mustParse(t, `
<ul class="novel-list">
  <li class="novel-item">
    <a href="/manga/solo-leveling/" title="Solo Leveling">
      <figure class="cover"><img src="data:image/gif;base64,R0lGODlhAQABAAAAACw=" data-src="https://imgsrv.mgeko.cc/covers/solo-leveling.jpg"></figure>
      <h4 class="novel-title">Solo Leveling</h4>
    </a>
  </li>
  <li class="novel-item">
    <a href="/manga/omniscient-reader/">
      <figure class="cover"><img data-src="/covers/omniscient.jpg"></figure>
      <h4 class="novel-title">Omniscient Reader</h4>
    </a>
  </li>
</ul>
<ul class="pagination"><li class="PagedList-skipToNext"><a href="/browse-comics/?results=2">&raquo;</a></li></ul>`)

	manga, err := template.ParseListing(doc, models.ListingPopular)
	require.NoError(t, err)
	assert.Equal(t, []models.MangaSummary{
		{URL: "/manga/solo-leveling/", Title: "Solo Leveling", ThumbnailURL: "https://imgsrv.mgeko.cc/covers/solo-leveling.jpg"},
		{URL: "/manga/omniscient-reader/", Title: "Omniscient Reader", ThumbnailURL: "https://www.mgeko.cc/covers/omniscient.jpg"},
	}, manga)
	assert.True(t, template.HasNextPage(doc, models.ListingPopular))
	assert.True(t, template.HasNextPage(doc, models.ListingLatest))
}

func TestMgekoChapters(t *testing.T) {
	template := loadShippedSite(t, "mgeko.yaml")
	assert.Equal(t, "Jan 2, 2006", template.Config().DateFormat)

	request, err := template.ChapterListRequest(models.MangaSummary{URL: "/manga/solo-leveling/"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.mgeko.cc/manga/solo-leveling/all-chapters/", request.URL)

	chapters := template.ParseChapterList(mustParse(t, `
<ul class="chapter-list">
  <li><a href="/reader/en/solo-leveling-chapter-201/"><strong class="chapter-title">Chapter 201</strong><time class="chapter-update">3 days ago</time></a></li>
  <li><a href="/reader/en/solo-leveling-chapter-1/"><strong class="chapter-title">Chapter 1</strong><time class="chapter-update">Aug 7, 2023</time></a></li>
</ul>`))

	require.Len(t, chapters, 2)
	assert.Equal(t, "/reader/en/solo-leveling-chapter-201/", chapters[0].URL)
	assert.Equal(t, "Chapter 201", chapters[0].Name)
	require.NotNil(t, chapters[0].UploadedAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, -3), *chapters[0].UploadedAt)

	assert.Equal(t, "Chapter 1", chapters[1].Name)
	require.NotNil(t, chapters[1].UploadedAt)
	assert.Equal(t, time.Date(2023, time.August, 7, 0, 0, 0, 0, time.UTC), *chapters[1].UploadedAt)
}

func TestMgekoPages(t *testing.T) {
	template := loadShippedSite(t, "mgeko.yaml")

	pages, err := template.ParsePageList(mustParse(t, `
<div id="chapter-reader">
  <img src="https://imgsrv4.mgeko.cc/solo-leveling/201/1.jpg">
  <img data-src="https://imgsrv4.mgeko.cc/solo-leveling/201/2.jpg">
</div>`))
	require.NoError(t, err)
	assert.Equal(t, []models.Page{
		{Index: 0, ImageURL: "https://imgsrv4.mgeko.cc/solo-leveling/201/1.jpg"},
		{Index: 1, ImageURL: "https://imgsrv4.mgeko.cc/solo-leveling/201/2.jpg"},
	}, pages)
}
