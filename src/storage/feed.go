// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/godchecker/godchecker/src/feed"
	"github.com/godchecker/godchecker/src/metrics"
)

// Run records one scrape run.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	ItemCount  int       `json:"itemCount"`
	// Sources holds the per-source result summary, stored as JSON.
	Sources map[string]int `json:"sources"`
	Error   string         `json:"error,omitempty"`
}

// ReplaceItems swaps the whole stored feed for the given items in one
// transaction, so readers never observe a half-written run.
func (db DB) ReplaceItems(ctx context.Context, items []feed.Item) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	metrics.DBQueriesTotal.WithLabelValues("replace_items").Inc()

	tx, err := db.pool.BeginTx(ctx, nil)
	if err != nil {
		metrics.DBErrors.WithLabelValues("replace_items").Inc()
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		metrics.DBErrors.WithLabelValues("replace_items").Inc()
		return errors.Wrap(err, "clear items")
	}

	insert := db.rebind(`INSERT INTO items (id, start_at, end_at, doc) VALUES (?, ?, ?, ?)`)
	for _, it := range items {
		doc, err := json.Marshal(it)
		if err != nil {
			return errors.Wrapf(err, "encode item %s", it.ID)
		}
		if _, err := tx.ExecContext(ctx, insert, it.ID, it.StartAt, it.EndAt, string(doc)); err != nil {
			metrics.DBErrors.WithLabelValues("replace_items").Inc()
			return errors.Wrapf(err, "insert item %s", it.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// LoadItems returns the stored feed ordered by start time.
func (db DB) LoadItems(ctx context.Context) ([]feed.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	metrics.DBQueriesTotal.WithLabelValues("load_items").Inc()

	rows, err := db.pool.QueryContext(ctx, `SELECT doc FROM items ORDER BY start_at, id`)
	if err != nil {
		metrics.DBErrors.WithLabelValues("load_items").Inc()
		return nil, errors.Wrap(err, "query items")
	}
	defer rows.Close()

	items := []feed.Item{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		var it feed.Item
		if err := json.Unmarshal([]byte(doc), &it); err != nil {
			return nil, errors.Wrap(err, "decode item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RecordRun stores a scrape run summary. A fresh uuid is assigned when the
// run has none.
func (db DB) RecordRun(ctx context.Context, run Run) (Run, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	metrics.DBQueriesTotal.WithLabelValues("record_run").Inc()

	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return run, errors.Wrap(err, "encode sources")
	}

	insert := db.rebind(`INSERT INTO scrape_runs (id, started_at, finished_at, item_count, sources, error)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = db.pool.ExecContext(ctx, insert,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.ItemCount, string(sources), run.Error)
	if err != nil {
		metrics.DBErrors.WithLabelValues("record_run").Inc()
		return run, errors.Wrap(err, "insert run")
	}
	return run, nil
}

// LastRun returns the most recent scrape run, or ok=false when none exists.
func (db DB) LastRun(ctx context.Context) (Run, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	metrics.DBQueriesTotal.WithLabelValues("last_run").Inc()

	row := db.pool.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, item_count, sources, error
		 FROM scrape_runs ORDER BY finished_at DESC, id DESC LIMIT 1`)

	var run Run
	var started, finished int64
	var sources string
	err := row.Scan(&run.ID, &started, &finished, &run.ItemCount, &sources, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		metrics.DBErrors.WithLabelValues("last_run").Inc()
		return Run{}, false, errors.Wrap(err, "scan run")
	}

	run.StartedAt = time.Unix(started, 0)
	run.FinishedAt = time.Unix(finished, 0)
	if err := json.Unmarshal([]byte(sources), &run.Sources); err != nil {
		return Run{}, false, errors.Wrap(err, "decode sources")
	}
	return run, true, nil
}
