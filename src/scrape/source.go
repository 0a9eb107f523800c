// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/godchecker/godchecker/src/feed"
)

// UndatedPolicy decides what happens to a matching announcement that
// carries no recognizable date.
type UndatedPolicy int

const (
	// SkipUndated drops the announcement (avoids false positives).
	SkipUndated UndatedPolicy = iota
	// DeferUndated tentatively places it a week out at the default clock;
	// a later announcement with a real date supersedes it by id.
	DeferUndated
)

// Source describes one official site to collect from. Site HTML changes
// often, so matching is deliberately loose: visible text of anchors (and,
// where configured, list/table cells) is scanned for keywords and dates.
type Source struct {
	Name      string
	// IDPrefix is the feed id namespace (imperial, pm, state, traffic).
	IDPrefix  string
	URLs      []string
	Authority string
	Area      string
	Purpose   string
	Tags      []string

	// TitlePrefix labels items from this source; FallbackTitle is used
	// when stripping the date leaves nothing.
	TitlePrefix   string
	FallbackTitle string

	// Keywords filter candidate texts; empty accepts everything dated.
	Keywords []string

	// Default is the assumed time of day; EndClock, when set, pins the end
	// to the same day instead of Window past the start.
	Default  Clock
	EndClock *Clock
	Window   time.Duration

	Undated UndatedPolicy

	// DeepScan also scans li/td/p cells (layouts that list schedules in
	// tables rather than links).
	DeepScan bool

	// AreaFor, when set, picks the area from the matched text.
	AreaFor func(text string) string
}

var reDatePrefix = regexp.MustCompile(`\d{1,2}月\d{1,2}日.?|\d{4}年\d{1,2}月\d{1,2}日.?`)

const titleCutset = " ・:：-"

// Collect fetches every URL of the source and extracts items. Individual
// page failures are tolerated; an error is returned only when no page
// could be fetched at all.
func (s *Source) Collect(ctx context.Context, client *Client) ([]feed.Item, error) {
	now := time.Now().In(feed.JST)

	var items []feed.Item
	var fetched int
	var lastErr error
	for _, url := range s.URLs {
		doc, err := client.GetDocument(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		fetched++
		items = append(items, s.extract(doc, url, now)...)
	}
	if fetched == 0 && lastErr != nil {
		return nil, errors.Wrapf(lastErr, "source %s", s.Name)
	}
	return items, nil
}

func (s *Source) extract(doc *html.Node, url string, now time.Time) []feed.Item {
	var items []feed.Item
	for _, text := range elementTexts(doc, "a") {
		if it, ok := s.itemFromText(text, url, now); ok {
			items = append(items, it)
		}
	}
	if s.DeepScan {
		for _, text := range elementTexts(doc, "li", "td", "p") {
			if len([]rune(text)) < 6 {
				continue
			}
			if it, ok := s.itemFromText(text, url, now); ok {
				items = append(items, it)
			}
		}
	}
	return items
}

func (s *Source) itemFromText(text, url string, now time.Time) (feed.Item, bool) {
	if len(s.Keywords) > 0 && !containsAny(text, s.Keywords) {
		return feed.Item{}, false
	}

	start, dated := GuessDate(text, now, s.Default)
	if !dated {
		if s.Undated == SkipUndated {
			return feed.Item{}, false
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), s.Default.Hour, s.Default.Minute, 0, 0, feed.JST).AddDate(0, 0, 7)
	}

	var end time.Time
	if s.EndClock != nil {
		end = time.Date(start.Year(), start.Month(), start.Day(), s.EndClock.Hour, s.EndClock.Minute, 0, 0, feed.JST)
	} else if s.Window > 0 {
		end = start.Add(s.Window)
	}

	title := strings.Trim(reDatePrefix.ReplaceAllString(text, ""), titleCutset)
	if title == "" {
		title = s.FallbackTitle
	}
	title = truncateRunes(title, 120)

	id := fmt.Sprintf("%s_%s_%06d", s.IDPrefix, start.Format("2006-01-02"), xxhash.Sum64String(text)%1_000_000)

	it := feed.New(id, s.TitlePrefix+title, start, end)
	it.Purpose = s.Purpose
	it.Authority = s.Authority
	it.Area = s.Area
	if s.AreaFor != nil {
		it.Area = s.AreaFor(text)
	}
	it.Tags = append([]string{}, s.Tags...)
	it.SourceURL = url
	return it, true
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
