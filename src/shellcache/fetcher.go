// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package shellcache

import (
	"bytes"
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// HandlerFetcher adapts an http.Handler into a Fetcher, so the install step
// populates the cache from the same origin that serves cache misses.
type HandlerFetcher struct {
	Origin http.Handler
}

func (f HandlerFetcher) Fetch(ctx context.Context, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", path)
	}

	rec := &snapshotWriter{header: make(http.Header), status: http.StatusOK}
	f.Origin.ServeHTTP(rec, req)

	return &Response{
		Status: rec.status,
		Header: rec.header.Clone(),
		Body:   rec.body.Bytes(),
	}, nil
}

// snapshotWriter is a minimal in-memory http.ResponseWriter.
type snapshotWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (w *snapshotWriter) Header() http.Header { return w.header }

func (w *snapshotWriter) WriteHeader(status int) { w.status = status }

func (w *snapshotWriter) Write(p []byte) (int, error) { return w.body.Write(p) }
