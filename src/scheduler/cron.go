// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Schedule is a parsed cron expression. Supported forms:
//   - standard five fields: "0 3 * * *"
//   - intervals: "@every 15m"
//   - shorthands: @hourly, @daily, @midnight, @weekly, @monthly, @yearly
type Schedule struct {
	every time.Duration

	minute  fieldSet
	hour    fieldSet
	day     fieldSet
	month   fieldSet
	weekday fieldSet
}

type fieldSet map[int]bool

// Parse parses a cron expression.
func Parse(expr string) (*Schedule, error) {
	expr = strings.TrimSpace(expr)

	if rest, ok := strings.CutPrefix(expr, "@every "); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid interval %q", rest)
		}
		if d <= 0 {
			return nil, errors.Errorf("interval must be positive, got %s", d)
		}
		return &Schedule{every: d}, nil
	}

	switch expr {
	case "@yearly", "@annually":
		expr = "0 0 1 1 *"
	case "@monthly":
		expr = "0 0 1 * *"
	case "@weekly":
		expr = "0 0 * * 0"
	case "@daily", "@midnight":
		expr = "0 0 * * *"
	case "@hourly":
		expr = "0 * * * *"
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, errors.Errorf("expected 5 cron fields, got %d", len(fields))
	}

	bounds := []struct {
		name     string
		min, max int
		dst      *fieldSet
	}{
		{"minute", 0, 59, nil},
		{"hour", 0, 23, nil},
		{"day", 1, 31, nil},
		{"month", 1, 12, nil},
		{"weekday", 0, 6, nil},
	}

	s := &Schedule{}
	bounds[0].dst = &s.minute
	bounds[1].dst = &s.hour
	bounds[2].dst = &s.day
	bounds[3].dst = &s.month
	bounds[4].dst = &s.weekday

	for i, b := range bounds {
		set, err := parseField(fields[i], b.min, b.max)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s field", b.name)
		}
		*b.dst = set
	}
	return s, nil
}

// parseField parses one field: "*", "*/n", single values, ranges and
// comma-separated combinations of these.
func parseField(field string, min, max int) (fieldSet, error) {
	set := make(fieldSet)

	for _, part := range strings.Split(field, ",") {
		step := 1
		if base, stepStr, ok := strings.Cut(part, "/"); ok {
			n, err := strconv.Atoi(stepStr)
			if err != nil || n < 1 {
				return nil, errors.Errorf("bad step %q", stepStr)
			}
			step = n
			part = base
		}

		lo, hi := min, max
		switch {
		case part == "*":
			// full range
		case strings.Contains(part, "-"):
			loStr, hiStr, _ := strings.Cut(part, "-")
			var err1, err2 error
			lo, err1 = strconv.Atoi(loStr)
			hi, err2 = strconv.Atoi(hiStr)
			if err1 != nil || err2 != nil || lo > hi {
				return nil, errors.Errorf("bad range %q", part)
			}
		default:
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, errors.Errorf("bad value %q", part)
			}
			lo, hi = n, n
		}

		if lo < min || hi > max {
			return nil, errors.Errorf("%q out of range [%d-%d]", part, min, max)
		}
		for v := lo; v <= hi; v += step {
			set[v] = true
		}
	}

	if len(set) == 0 {
		return nil, errors.New("empty field")
	}
	return set, nil
}

// Next returns the first scheduled time strictly after t.
func (s *Schedule) Next(t time.Time) time.Time {
	if s.every > 0 {
		return t.Add(s.every)
	}

	// Scan minute by minute, bounded to four years.
	next := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(4, 0, 0)
	for next.Before(limit) {
		if s.matches(next) {
			return next
		}
		next = next.Add(time.Minute)
	}
	return time.Time{}
}

func (s *Schedule) matches(t time.Time) bool {
	return s.minute[t.Minute()] &&
		s.hour[t.Hour()] &&
		s.day[t.Day()] &&
		s.month[int(t.Month())] &&
		s.weekday[int(t.Weekday())]
}
