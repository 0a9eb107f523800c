// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package shellcache serves the fixed app shell cache-first from a named,
// versioned store while requests for data files bypass the store entirely,
// so the restriction feed is never stale behind a cache.
//
// The lifecycle has three steps: Install pre-populates a store with every
// shell asset (all or nothing),
// Activate makes that store govern all subsequent requests without a
// restart, and the fetch interceptor answers shell requests from the store,
// falling through to the origin on a miss.
package shellcache

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
)

// DataSuffix classifies a request as a data resource. Paths carrying this
// suffix are never looked up in, or written to, the shell cache.
const DataSuffix = ".json"

// Response is a stored snapshot of an origin response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// ETag is a fingerprint of Body, set when the snapshot is stored.
	ETag string
}

// Clone returns an independent copy so callers cannot mutate stored state.
func (r *Response) Clone() *Response {
	c := &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   append([]byte(nil), r.Body...),
		ETag:   r.ETag,
	}
	return c
}

// Fingerprint computes the ETag value for a response body.
func Fingerprint(body []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%016x", xxhash.Sum64(body)))
}

// Fetcher retrieves a resource by root-relative path. The server wires this
// to the origin handler; tests substitute fakes, including offline ones.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*Response, error)
}

// Store is one named cache generation mapping request paths to snapshots.
type Store interface {
	// Name returns the store's version name.
	Name() string
	// AddAll fetches every path and stores the snapshots. The operation is
	// all or nothing: if any single fetch fails or returns a non-2xx
	// status, no entry is retained and the store is left as it was.
	AddAll(ctx context.Context, paths []string) error
	// Match returns the stored snapshot for path, if any. No fetch occurs.
	Match(path string) (*Response, bool)
	// Put stores a single snapshot, replacing any previous one.
	Put(path string, resp *Response)
	// Keys lists the stored paths.
	Keys() []string
}

// Storage manages named stores. Opening an existing name returns the same
// store; bumping the version name is the only invalidation mechanism.
type Storage interface {
	Open(name string) (Store, error)
	Names() []string
	Delete(name string) error
}
