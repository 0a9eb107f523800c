// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package feed defines the restriction feed document: the items produced by
// the scraper and published as restrictions.json.
package feed

import (
	"encoding/json"
	"sort"
	"time"
)

// JST is the timezone every feed timestamp is expressed in.
var JST = time.FixedZone("JST", 9*60*60)

// DefaultWindow is assumed when an announcement carries no end time.
const DefaultWindow = 3 * time.Hour

// Item is one publicly announced schedule/restriction entry.
// The field set and JSON names are the published feed contract; consumers
// treat geometry as an opaque GeoJSON blob.
type Item struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Purpose   string          `json:"purpose"`
	Desc      string          `json:"desc"`
	Authority string          `json:"authority"`
	Area      string          `json:"area"`
	StartAt   string          `json:"startAt"`
	EndAt     string          `json:"endAt"`
	Geometry  json.RawMessage `json:"geometry"`
	Roads     []string        `json:"roads"`
	Tags      []string        `json:"tags"`
	SourceURL string          `json:"sourceUrl"`
	NewsURL   string          `json:"newsUrl,omitempty"`
}

// New builds an item with the feed's defaults applied: timestamps rendered
// in JST, a 3 hour window when end is zero, and non-nil roads/tags slices so
// the JSON arrays are never null.
func New(id, title string, start, end time.Time) Item {
	if end.IsZero() {
		end = start.Add(DefaultWindow)
	}
	return Item{
		ID:      id,
		Title:   title,
		StartAt: start.In(JST).Format(time.RFC3339),
		EndAt:   end.In(JST).Format(time.RFC3339),
		Roads:   []string{},
		Tags:    []string{},
	}
}

// Start parses the item's start timestamp.
func (it Item) Start() (time.Time, error) {
	return time.Parse(time.RFC3339, it.StartAt)
}

// Dedupe removes duplicate ids, keeping the last occurrence so that later
// sources (and manual overrides) win. Input order is otherwise preserved.
func Dedupe(items []Item) []Item {
	last := make(map[string]int, len(items))
	for i, it := range items {
		last[it.ID] = i
	}
	out := make([]Item, 0, len(last))
	for i, it := range items {
		if last[it.ID] == i {
			out = append(out, it)
		}
	}
	return out
}

// Cutoff drops items whose start time is older than retention before now.
// Items with an unparseable start time are dropped too; they cannot be
// ordered and the scraper never emits them.
func Cutoff(items []Item, now time.Time, retention time.Duration) []Item {
	limit := now.Add(-retention)
	out := items[:0:0]
	for _, it := range items {
		st, err := it.Start()
		if err != nil {
			continue
		}
		if !st.Before(limit) {
			out = append(out, it)
		}
	}
	return out
}

// SortByStart orders items by their startAt string. RFC3339 timestamps in a
// single zone sort correctly as strings, which matches how the published
// document has always been ordered.
func SortByStart(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartAt < items[j].StartAt
	})
}

// Encode renders the published document: a JSON array indented with two
// spaces, multibyte text left unescaped where possible.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.MarshalIndent(items, "", "  ")
}
