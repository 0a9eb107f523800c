// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/godchecker/godchecker/src/feed"
	"github.com/godchecker/godchecker/src/metrics"
)

// DefaultRetention keeps two months of history in the feed.
const DefaultRetention = 60 * 24 * time.Hour

// Result summarizes one source's part of a run.
type Result struct {
	Source string
	Items  int
	Err    error
}

// Scraper runs all sources and assembles the published feed.
type Scraper struct {
	Client    *Client
	Sources   []*Source
	ManualDir string
	Retention time.Duration
	Log       *logrus.Entry
}

// New assembles a scraper with defaults filled in.
func New(client *Client, sources []*Source, manualDir string, log *logrus.Entry) *Scraper {
	if client == nil {
		client = NewClient(0, "", 3)
	}
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scraper{
		Client:    client,
		Sources:   sources,
		ManualDir: manualDir,
		Retention: DefaultRetention,
		Log:       log,
	}
}

// Run collects from every source concurrently. A failing source never
// aborts the run; its failure is reported in the results and the remaining
// sources still contribute. The returned items are deduped, merged with
// manual overrides, trimmed to the retention window and sorted by start.
func (s *Scraper) Run(ctx context.Context) ([]feed.Item, []Result) {
	started := time.Now()

	perSource := make([][]feed.Item, len(s.Sources))
	results := make([]Result, len(s.Sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range s.Sources {
		g.Go(func() error {
			items, err := src.Collect(ctx, s.Client)
			perSource[i] = items
			results[i] = Result{Source: src.Name, Items: len(items), Err: err}
			if err != nil {
				metrics.ScrapeSourceErrors.WithLabelValues(src.Name).Inc()
				s.Log.WithError(err).WithField("source", src.Name).Warn("source failed")
			}
			return nil
		})
	}
	_ = g.Wait() // sources report failures via results, never as errors

	var all []feed.Item
	for _, items := range perSource {
		all = append(all, items...)
	}

	all = feed.Dedupe(all)
	if s.ManualDir != "" {
		all = feed.MergeManual(all, s.ManualDir)
	}
	all = feed.Cutoff(all, time.Now().In(feed.JST), s.Retention)
	feed.SortByStart(all)

	metrics.ScrapeDuration.Observe(time.Since(started).Seconds())
	metrics.ScrapeItems.Set(float64(len(all)))

	s.Log.WithFields(logrus.Fields{
		"items":    len(all),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("scrape run finished")

	return all, results
}
