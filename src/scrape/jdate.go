// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"regexp"
	"time"

	"github.com/godchecker/godchecker/src/feed"
)

// Clock is a time of day assumed when an announcement has no time.
type Clock struct {
	Hour   int
	Minute int
}

// Official pages mix 2025年9月10日, 9月10日, 2025-09-10 and 2025/09/10.
// The year-bearing pattern also covers the ASCII separators, so it runs
// first; a bare month/day takes the current year.
var (
	reYearMonthDay = regexp.MustCompile(`(20\d{2})[年/.\-]\s*(\d{1,2})[月/.\-]\s*(\d{1,2})日?`)
	reMonthDay     = regexp.MustCompile(`(\d{1,2})[月/.\-]\s*(\d{1,2})日?`)
)

// GuessDate loosely extracts a date from Japanese announcement text. The
// returned time is in JST at the given default clock. Undated text returns
// ok=false; callers decide per source whether to skip or defer such items.
func GuessDate(text string, now time.Time, def Clock) (time.Time, bool) {
	if m := reYearMonthDay.FindStringSubmatch(text); m != nil {
		if t, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), def); ok {
			return t, true
		}
	}
	if m := reMonthDay.FindStringSubmatch(text); m != nil {
		// No year given: assume this year. Past dates are kept as-is
		// rather than rolled to next year; the retention cutoff handles
		// them.
		if t, ok := makeDate(now.In(feed.JST).Year(), atoi(m[1]), atoi(m[2]), def); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func makeDate(year, month, day int, def Clock) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, def.Hour, def.Minute, 0, 0, feed.JST), true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
