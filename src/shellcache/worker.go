// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package shellcache

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/godchecker/godchecker/src/metrics"
)

// ErrNotInstalled is returned by Activate when no install has succeeded.
var ErrNotInstalled = errors.New("shellcache: no installed store to activate")

// Worker owns the shell cache lifecycle. A worker serves pass-through until
// Install and Activate have both succeeded; the server retries installation
// on a schedule until that point.
type Worker struct {
	storage Storage
	version string
	shell   []string
	log     *logrus.Entry

	mu        sync.RWMutex
	installed Store
	current   Store
}

// New creates a worker for one cache version and a fixed shell asset list.
func New(storage Storage, version string, shell []string, log *logrus.Entry) *Worker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Worker{
		storage: storage,
		version: version,
		shell:   append([]string(nil), shell...),
		log:     log.WithField("cache", version),
	}
}

// Version returns the cache version name.
func (w *Worker) Version() string { return w.version }

// Shell returns the asset manifest.
func (w *Worker) Shell() []string { return append([]string(nil), w.shell...) }

// Install opens (or reopens) the versioned store and bulk-populates it with
// every shell asset. Any single failure fails the whole install and nothing
// is retained; the caller is expected to retry later.
func (w *Worker) Install(ctx context.Context) error {
	store, err := w.storage.Open(w.version)
	if err != nil {
		metrics.ShellInstalls.WithLabelValues("error").Inc()
		return errors.Wrap(err, "open store")
	}
	if err := store.AddAll(ctx, w.shell); err != nil {
		metrics.ShellInstalls.WithLabelValues("error").Inc()
		return err
	}

	w.mu.Lock()
	w.installed = store
	w.mu.Unlock()

	metrics.ShellInstalls.WithLabelValues("ok").Inc()
	metrics.ShellAssets.Set(float64(len(store.Keys())))
	w.log.WithField("assets", len(w.shell)).Info("shell cache installed")
	return nil
}

// Activate publishes the installed store as current, so every request from
// now on is governed by it, and deletes superseded version stores.
func (w *Worker) Activate(ctx context.Context) error {
	w.mu.Lock()
	if w.installed == nil {
		w.mu.Unlock()
		return ErrNotInstalled
	}
	w.current = w.installed
	w.mu.Unlock()

	for _, name := range w.storage.Names() {
		if name == w.version {
			continue
		}
		if err := w.storage.Delete(name); err != nil {
			w.log.WithError(err).WithField("store", name).Warn("could not delete superseded store")
			continue
		}
		w.log.WithField("store", name).Info("deleted superseded store")
	}

	w.log.Info("shell cache activated")
	return nil
}

// Active reports whether an installed store currently governs requests.
func (w *Worker) Active() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current != nil
}

func (w *Worker) store() Store {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Handler returns the fetch interceptor wrapped around origin.
//
// Data paths (".json" suffix) are never looked up in the store: they go
// straight to origin so the feed is always live. Everything else is served
// cache-first; a miss falls through to exactly one origin call and the
// result is not written back.
func (w *Worker) Handler(origin http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, DataSuffix) {
			metrics.ShellBypass.Inc()
			origin.ServeHTTP(rw, req)
			return
		}
		// Snapshots are GET responses; other methods pass through.
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			origin.ServeHTTP(rw, req)
			return
		}
		store := w.store()
		if store == nil {
			origin.ServeHTTP(rw, req)
			return
		}

		resp, ok := store.Match(req.URL.Path)
		if !ok {
			metrics.ShellMisses.Inc()
			origin.ServeHTTP(rw, req)
			return
		}
		metrics.ShellHits.Inc()
		w.writeSnapshot(rw, req, resp)
	})
}

func (w *Worker) writeSnapshot(rw http.ResponseWriter, req *http.Request, resp *Response) {
	h := rw.Header()
	for key, values := range resp.Header {
		h[key] = values
	}
	h.Set("X-Shell-Cache", "hit")
	if resp.ETag != "" {
		h.Set("ETag", resp.ETag)
		if etagMatches(req.Header.Get("If-None-Match"), resp.ETag) {
			rw.WriteHeader(http.StatusNotModified)
			return
		}
	}
	rw.WriteHeader(resp.Status)
	if req.Method != http.MethodHead {
		rw.Write(resp.Body)
	}
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
