// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package scheduler runs the recurring tasks (the hourly scrape, shell
// cache install retries) in-process, so a deployment needs no external
// cron.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/godchecker/godchecker/src/feed"
)

// taskTimeout bounds a single task run.
const taskTimeout = 5 * time.Minute

// TaskFunc is one unit of scheduled work.
type TaskFunc func(ctx context.Context) error

type task struct {
	name  string
	sched *Schedule
	run   TaskFunc

	mu       sync.Mutex
	running  bool
	next     time.Time
	lastRun  time.Time
	lastErr  string
	runs     int64
	failures int64
}

// Status is a point-in-time view of a task, exposed via the health
// endpoint and the status TUI.
type Status struct {
	Name     string    `json:"name"`
	NextRun  time.Time `json:"nextRun"`
	LastRun  time.Time `json:"lastRun,omitempty"`
	LastErr  string    `json:"lastError,omitempty"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
}

// Scheduler runs registered tasks on their cron schedules. Task times are
// evaluated in JST, the timezone the feed (and its sources) live in.
type Scheduler struct {
	log *logrus.Entry
	loc *time.Location

	mu      sync.Mutex
	tasks   []*task
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an empty scheduler.
func New(log *logrus.Entry) *Scheduler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{log: log, loc: feed.JST}
}

// Add registers a task under a cron expression.
func (s *Scheduler) Add(name, expr string, fn TaskFunc) error {
	if fn == nil {
		return errors.New("scheduler: task func is required")
	}
	sched, err := Parse(expr)
	if err != nil {
		return errors.Wrapf(err, "scheduler: task %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, &task{
		name:  name,
		sched: sched,
		run:   fn,
		next:  sched.Next(time.Now().In(s.loc)),
	})
	return nil
}

// Start launches the scheduler loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler: already running")
	}
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for in-flight tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

// RunNow triggers a task immediately, regardless of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var found *task
	for _, t := range s.tasks {
		if t.name == name {
			found = t
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return errors.Errorf("scheduler: no task named %q", name)
	}
	s.execute(ctx, found)
	return nil
}

// Snapshot reports all tasks in registration order.
func (s *Scheduler) Snapshot() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.tasks))
	for _, t := range s.tasks {
		t.mu.Lock()
		out = append(out, Status{
			Name:     t.name,
			NextRun:  t.next,
			LastRun:  t.lastRun,
			LastErr:  t.lastErr,
			Runs:     t.runs,
			Failures: t.failures,
		})
		t.mu.Unlock()
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, t := range s.due(now.In(s.loc)) {
				s.execute(ctx, t)
			}
		}
	}
}

func (s *Scheduler) due(now time.Time) []*task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*task
	for _, t := range s.tasks {
		t.mu.Lock()
		if !t.running && !t.next.IsZero() && now.After(t.next) {
			due = append(due, t)
		}
		t.mu.Unlock()
	}
	return due
}

func (s *Scheduler) execute(ctx context.Context, t *task) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	err := t.run(runCtx)

	t.mu.Lock()
	t.running = false
	t.lastRun = time.Now().In(s.loc)
	t.runs++
	if err != nil {
		t.failures++
		t.lastErr = err.Error()
	} else {
		t.lastErr = ""
	}
	t.next = t.sched.Next(time.Now().In(s.loc))
	t.mu.Unlock()

	if err != nil {
		s.log.WithError(err).WithField("task", t.name).Error("task failed")
		return
	}
	s.log.WithField("task", t.name).Debug("task finished")
}
