// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package web serves the app shell, the restriction feed and the
// operational endpoints. The shell cache wraps the mux built here; data
// paths reach these handlers directly on every request.
package web

import (
	"embed"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/godchecker/godchecker/src/scheduler"
	"github.com/godchecker/godchecker/src/storage"
)

//go:embed data
var embFS embed.FS

// Data carries the handlers' dependencies.
type Data struct {
	DB    storage.DB
	Log   *logrus.Entry
	Sched *scheduler.Scheduler

	Title   string
	Version string
}

// Routes builds the origin mux: everything the shell cache installs from
// and falls through to.
func (data *Data) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", data.handle(data.handleIndex))
	mux.Handle("GET /index.html", data.handle(data.handleIndex))
	mux.Handle("GET /manifest.webmanifest", data.handle(data.handleManifest))
	mux.Handle("GET /icons/", data.handle(data.handleIcon))

	mux.Handle("GET /restrictions.json", data.handle(data.handleRestrictions))

	mux.Handle("GET /api/healthz", data.handle(data.handleAPIHealthz))
	mux.Handle("GET /about", data.handle(data.handleAbout))
	mux.Handle("GET /view", data.handle(data.handleView))

	return mux
}

// handle adapts error-returning handlers: failures are logged and surface
// as a plain 500, never silently swallowed.
func (data *Data) handle(fn func(rw http.ResponseWriter, req *http.Request) error) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if err := fn(rw, req); err != nil {
			data.Log.WithError(err).WithField("path", req.URL.Path).Error("handler failed")
			http.Error(rw, "internal server error", http.StatusInternalServerError)
		}
	})
}
