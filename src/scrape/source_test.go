// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godchecker/godchecker/src/feed"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		rw.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestKunaichoCollect(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<a href="/a">2026年9月10日 園遊会</a>
		<a href="/b">日程のないお知らせ</a>
		<ul><li>9月12日 宮中晩餐会のご日程について</li><li>短い</li></ul>
	</body></html>`)

	src := Kunaicho(srv.URL)
	items, err := src.Collect(context.Background(), NewClient(0, "", 0))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "皇族行事: 園遊会", items[0].Title)
	assert.True(t, strings.HasPrefix(items[0].ID, "imperial_2026-09-10_"))
	assert.Equal(t, "宮内庁", items[0].Authority)
	assert.Equal(t, []string{"imperial"}, items[0].Tags)
	assert.Equal(t, srv.URL, items[0].SourceURL)

	start, err := items[0].Start()
	require.NoError(t, err)
	assert.Equal(t, 9, start.In(feed.JST).Hour())
	end, err := time.Parse(time.RFC3339, items[0].EndAt)
	require.NoError(t, err)
	assert.Equal(t, 12, end.In(feed.JST).Hour())

	assert.True(t, strings.HasPrefix(items[1].Title, "皇族行事: "), "deep-scanned list item")
}

func TestMOFAKeywordFilterAndDeferral(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<a href="/x">国賓来日に関する発表</a>
		<a href="/y">9月10日 通常の記者会見</a>
	</body></html>`)

	src := MOFA(srv.URL)
	items, err := src.Collect(context.Background(), NewClient(0, "", 0))
	require.NoError(t, err)
	require.Len(t, items, 1, "non-keyword announcements are filtered out")

	// No date in the matching text: deferred about a week out.
	start, err := items[0].Start()
	require.NoError(t, err)
	until := time.Until(start)
	assert.Greater(t, until, 6*24*time.Hour)
	assert.Less(t, until, 8*24*time.Hour)
	assert.Equal(t, 10, start.In(feed.JST).Hour())
}

func TestTrafficSkipsUndatedAndInfersArea(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<a href="/1">9月10日 皇居周辺の交通規制のお知らせ</a>
		<a href="/2">交通規制のお知らせ（日付未定）</a>
		<a href="/3">9月11日 羽田空港 通行止めについて</a>
	</body></html>`)

	src := Traffic(srv.URL)
	items, err := src.Collect(context.Background(), NewClient(0, "", 0))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "皇居周辺", items[0].Area)
	assert.Equal(t, "羽田空港周辺/首都高1号羽田線", items[1].Area)
	assert.ElementsMatch(t, []string{"imperial", "pm", "state"}, items[0].Tags)
}

func TestCollectToleratesPartialFailure(t *testing.T) {
	good := serveHTML(t, `<html><body><a>9月10日 会見</a></body></html>`)
	bad := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, "nope", http.StatusNotFound)
	}))
	t.Cleanup(bad.Close)

	src := Kantei(bad.URL, good.URL)
	items, err := src.Collect(context.Background(), NewClient(0, "", 0))
	require.NoError(t, err, "one reachable page is enough")
	assert.Len(t, items, 1)
}

func TestCollectAllPagesUnreachable(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, "nope", http.StatusNotFound)
	}))
	t.Cleanup(bad.Close)

	src := Kantei(bad.URL)
	_, err := src.Collect(context.Background(), NewClient(0, "", 0))
	assert.Error(t, err)
}

func TestScraperRunMergesAndSorts(t *testing.T) {
	// Dates are computed at runtime so the retention cutoff never bites.
	d1 := time.Now().In(feed.JST).AddDate(0, 0, 7)
	d2 := time.Now().In(feed.JST).AddDate(0, 0, 14)
	srv := serveHTML(t, `<html><body>
		<a>`+d2.Format("2006年1月2日")+` 会見その二</a>
		<a>`+d1.Format("2006年1月2日")+` 会見その一</a>
	</body></html>`)

	s := New(NewClient(0, "", 0), []*Source{Kantei(srv.URL)}, "", nil)
	items, results := s.Run(context.Background())

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Len(t, items, 2)
	assert.Less(t, items[0].StartAt, items[1].StartAt)
}

func TestScraperRunReportsFailingSource(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, "nope", http.StatusForbidden)
	}))
	t.Cleanup(bad.Close)
	day := time.Now().In(feed.JST).AddDate(0, 0, 7)
	good := serveHTML(t, `<html><body><a>`+day.Format("2006年1月2日")+` 園遊会</a></body></html>`)

	s := New(NewClient(0, "", 0), []*Source{Kantei(bad.URL), Kunaicho(good.URL)}, "", nil)
	items, results := s.Run(context.Background())

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NotEmpty(t, items, "healthy sources still contribute")
}
