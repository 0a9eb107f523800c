// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/godchecker/godchecker/src/feed"
)

func TestGuessDate(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, feed.JST)
	def := Clock{Hour: 9}

	tests := []struct {
		text string
		want time.Time
		ok   bool
	}{
		{"2025年9月10日 歓迎行事", time.Date(2025, 9, 10, 9, 0, 0, 0, feed.JST), true},
		{"9月10日 ご日程", time.Date(2026, 9, 10, 9, 0, 0, 0, feed.JST), true},
		{"2025-09-10 announcement", time.Date(2025, 9, 10, 9, 0, 0, 0, feed.JST), true},
		{"2025/09/10 会見", time.Date(2025, 9, 10, 9, 0, 0, 0, feed.JST), true},
		{"令和の一般参賀について", time.Time{}, false},
		{"13月40日", time.Time{}, false},
	}

	for _, tc := range tests {
		got, ok := GuessDate(tc.text, now, def)
		assert.Equal(t, tc.ok, ok, "text %q", tc.text)
		if tc.ok {
			assert.True(t, got.Equal(tc.want), "text %q: got %v want %v", tc.text, got, tc.want)
		}
	}
}

func TestGuessDateDefaultClock(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, feed.JST)
	got, ok := GuessDate("9月10日", now, Clock{Hour: 7, Minute: 30})
	assert.True(t, ok)
	assert.Equal(t, 7, got.Hour())
	assert.Equal(t, 30, got.Minute())
}
