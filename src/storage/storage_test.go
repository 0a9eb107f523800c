// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godchecker/godchecker/src/feed"
)

func testDB(t *testing.T) DB {
	t.Helper()
	db, err := NewPool("sqlite", filepath.Join(t.TempDir(), "godchecker.db"), 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init())
	return db
}

func TestReplaceAndLoadItems(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	later := feed.New("b", "later", time.Date(2026, 9, 10, 10, 0, 0, 0, feed.JST), time.Time{})
	sooner := feed.New("a", "sooner", time.Date(2026, 9, 1, 9, 0, 0, 0, feed.JST), time.Time{})

	require.NoError(t, db.ReplaceItems(ctx, []feed.Item{later, sooner}))

	items, err := db.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID, "items load ordered by start time")
	assert.Equal(t, "sooner", items[0].Title)

	// A new run replaces the previous feed entirely.
	require.NoError(t, db.ReplaceItems(ctx, []feed.Item{later}))
	items, err = db.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestLoadItemsEmpty(t *testing.T) {
	db := testDB(t)
	items, err := db.LoadItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items, "empty feed is an empty array, not null")
}

func TestRecordAndLastRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, ok, err := db.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	started := time.Now().Add(-time.Minute).Truncate(time.Second)
	run, err := db.RecordRun(ctx, Run{
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		ItemCount:  12,
		Sources:    map[string]int{"kunaicho": 5, "kantei": 7},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	got, ok, err := db.LastRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 12, got.ItemCount)
	assert.Equal(t, map[string]int{"kunaicho": 5, "kantei": 7}, got.Sources)
	assert.Equal(t, started.Unix(), got.StartedAt.Unix())
}

func TestUnknownDriver(t *testing.T) {
	_, err := NewPool("oracle", "", 1, 1)
	assert.Error(t, err)
}
