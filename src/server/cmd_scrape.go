// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/godchecker/godchecker/src/config"
	"github.com/godchecker/godchecker/src/feed"
	"github.com/godchecker/godchecker/src/scrape"
	"github.com/godchecker/godchecker/src/storage"
)

var cmdScrape = &cobra.Command{
	Use:   "scrape",
	Short: "Collect all sources once, store the feed and write the export file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := storage.NewPool(cfg.Database.Driver, cfg.Database.Source,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Init(); err != nil {
			return err
		}

		return runScrapeOnce(cmd.Context(), cfg, db, newScraper(cfg, log))
	},
}

func init() {
	cmdRoot.AddCommand(cmdScrape)
}

// newScraper wires the collector from the configuration: per-source URL
// overrides, the shared HTTP client and the retention window.
func newScraper(cfg config.Config, log *logrus.Entry) *scrape.Scraper {
	client := scrape.NewClient(
		time.Duration(cfg.Scrape.Timeout)*time.Second,
		cfg.Scrape.UserAgent,
		uint64(cfg.Scrape.MaxRetries))

	sources := []*scrape.Source{
		scrape.Kunaicho(cfg.Scrape.Sources.Kunaicho...),
		scrape.Kantei(cfg.Scrape.Sources.Kantei...),
		scrape.MOFA(cfg.Scrape.Sources.MOFA...),
		scrape.Traffic(cfg.Scrape.Sources.Traffic...),
	}

	s := scrape.New(client, sources, cfg.Feed.ManualDir, log)
	s.Retention = cfg.Retention()
	return s
}

// runScrapeOnce is one full collection cycle: scrape, replace the stored
// feed, record the run and refresh the export file.
func runScrapeOnce(ctx context.Context, cfg config.Config, db storage.DB, scraper *scrape.Scraper) error {
	started := time.Now()
	items, results := scraper.Run(ctx)

	run := storage.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		ItemCount:  len(items),
		Sources:    make(map[string]int, len(results)),
	}
	var errs []string
	for _, r := range results {
		run.Sources[r.Source] = r.Items
		if r.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.Source, r.Err))
		}
	}
	run.Error = strings.Join(errs, "; ")

	if err := db.ReplaceItems(ctx, items); err != nil {
		return err
	}
	if _, err := db.RecordRun(ctx, run); err != nil {
		return err
	}

	return exportFeed(items, cfg.Feed.ExportPath)
}

// exportFeed writes the feed document to path, creating parent directories
// as needed. An empty path disables the export.
func exportFeed(items []feed.Item, path string) error {
	if path == "" {
		return nil
	}

	doc, err := feed.Encode(items)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(doc, '\n'), 0o644)
}
