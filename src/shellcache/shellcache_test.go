// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package shellcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testShell = []string{
	"/",
	"/index.html",
	"/manifest.webmanifest",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

// testOrigin is a fake network: a handler with per-path hit counting and an
// offline switch.
type testOrigin struct {
	mu      sync.Mutex
	files   map[string]string
	hits    map[string]int
	offline bool
}

func newTestOrigin() *testOrigin {
	files := map[string]string{
		"/restrictions.json": `[{"id":"imperial_2026-08-26_000001"}]`,
		"/api/healthz":       `{"status":"healthy"}`,
	}
	for _, path := range testShell {
		files[path] = "shell content of " + path
	}
	return &testOrigin{files: files, hits: make(map[string]int)}
}

func (o *testOrigin) setOffline(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.offline = v
}

func (o *testOrigin) hitCount(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[path]
}

func (o *testOrigin) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	o.mu.Lock()
	o.hits[req.URL.Path]++
	offline := o.offline
	body, ok := o.files[req.URL.Path]
	o.mu.Unlock()

	if offline {
		http.Error(rw, "network unavailable", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.NotFound(rw, req)
		return
	}
	rw.Header().Set("Content-Type", "text/plain")
	rw.Write([]byte(body))
}

func newTestWorker(t *testing.T, origin *testOrigin) *Worker {
	t.Helper()
	storage := NewMemoryStorage(HandlerFetcher{Origin: origin})
	return New(storage, "godchecker-static-v1", testShell, nil)
}

func TestInstallPopulatesEveryManifestPath(t *testing.T) {
	origin := newTestOrigin()
	storage := NewMemoryStorage(HandlerFetcher{Origin: origin})
	w := New(storage, "godchecker-static-v1", testShell, nil)

	require.NoError(t, w.Install(context.Background()))

	store, err := storage.Open("godchecker-static-v1")
	require.NoError(t, err)
	for _, path := range testShell {
		resp, ok := store.Match(path)
		require.True(t, ok, "missing snapshot for %s", path)
		assert.Equal(t, "shell content of "+path, string(resp.Body))
		assert.NotEmpty(t, resp.ETag)
	}
}

func TestInstallFailureRetainsNothing(t *testing.T) {
	origin := newTestOrigin()
	origin.mu.Lock()
	delete(origin.files, "/icons/icon-512.png") // one asset 404s
	origin.mu.Unlock()

	storage := NewMemoryStorage(HandlerFetcher{Origin: origin})
	w := New(storage, "godchecker-static-v1", testShell, nil)

	err := w.Install(context.Background())
	require.Error(t, err)

	store, err := storage.Open("godchecker-static-v1")
	require.NoError(t, err)
	assert.Empty(t, store.Keys(), "failed install must not retain a partial population")
	assert.False(t, w.Active())
}

func TestInstallIdempotent(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)

	require.NoError(t, w.Install(context.Background()))

	first, err := w.storage.Open(w.version)
	require.NoError(t, err)
	keys := first.Keys()

	require.NoError(t, w.Install(context.Background()))
	again, err := w.storage.Open(w.version)
	require.NoError(t, err)
	assert.Equal(t, keys, again.Keys(), "reinstall with unchanged manifest must keep the same key set")
}

func TestCachedShellServedWithoutNetwork(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	handler := w.Handler(origin)
	before := origin.hitCount("/index.html")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shell content of /index.html", rec.Body.String())
	assert.Equal(t, "hit", rec.Header().Get("X-Shell-Cache"))
	assert.Equal(t, before, origin.hitCount("/index.html"), "cache hit must not contact the network")
}

func TestShellServedOffline(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	origin.setOffline(true)
	handler := w.Handler(origin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shell content of /index.html", rec.Body.String())
}

func TestDataBypassIsUnconditional(t *testing.T) {
	origin := newTestOrigin()
	storage := NewMemoryStorage(HandlerFetcher{Origin: origin})
	w := New(storage, "godchecker-static-v1", testShell, nil)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	// Even a cache entry planted at a .json path must never be served.
	store, err := storage.Open("godchecker-static-v1")
	require.NoError(t, err)
	store.Put("/restrictions.json", &Response{Status: http.StatusOK, Header: http.Header{}, Body: []byte("stale")})

	handler := w.Handler(origin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restrictions.json", nil))
	assert.Equal(t, 1, origin.hitCount("/restrictions.json"))
	assert.NotEqual(t, "stale", rec.Body.String())

	// With the network gone the data request must fail: no cached fallback.
	origin.setOffline(true)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restrictions.json", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDataBypassNeverConsultsStore(t *testing.T) {
	origin := newTestOrigin()
	storage := &spyStorage{inner: NewMemoryStorage(HandlerFetcher{Origin: origin})}
	w := New(storage, "godchecker-static-v1", testShell, nil)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	handler := w.Handler(origin)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/restrictions.json", nil))

	assert.Zero(t, storage.matches("/restrictions.json"), "data requests must not hit the cache lookup path")
}

func TestMissFetchesExactlyOnceAndIsNotWrittenBack(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	handler := w.Handler(origin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, 1, origin.hitCount("/api/healthz"))
	assert.Equal(t, `{"status":"healthy"}`, rec.Body.String())

	// A second request misses again: nothing was written back.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, 2, origin.hitCount("/api/healthz"))

	store, err := w.storage.Open(w.version)
	require.NoError(t, err)
	_, cached := store.Match("/api/healthz")
	assert.False(t, cached)
}

func TestPassThroughBeforeActivation(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)
	require.NoError(t, w.Install(context.Background()))
	// Not activated: requests go to the network.

	handler := w.Handler(origin)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, 2, origin.hitCount("/index.html"), "install fetch plus pass-through fetch")
}

func TestActivateRequiresInstall(t *testing.T) {
	w := newTestWorker(t, newTestOrigin())
	err := w.Activate(context.Background())
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestActivateDeletesSupersededStores(t *testing.T) {
	origin := newTestOrigin()
	storage := NewMemoryStorage(HandlerFetcher{Origin: origin})

	// A previous version's store is still around.
	old, err := storage.Open("godchecker-static-v0")
	require.NoError(t, err)
	old.Put("/index.html", &Response{Status: http.StatusOK, Header: http.Header{}, Body: []byte("old")})

	w := New(storage, "godchecker-static-v1", testShell, nil)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	assert.Equal(t, []string{"godchecker-static-v1"}, storage.Names())
}

func TestConditionalRequestGets304(t *testing.T) {
	origin := newTestOrigin()
	w := newTestWorker(t, origin)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	handler := w.Handler(origin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

// spyStorage counts Match calls per path.
type spyStorage struct {
	inner Storage

	mu    sync.Mutex
	calls map[string]int
}

func (s *spyStorage) Open(name string) (Store, error) {
	st, err := s.inner.Open(name)
	if err != nil {
		return nil, err
	}
	return &spyStore{Store: st, parent: s}, nil
}

func (s *spyStorage) Names() []string { return s.inner.Names() }

func (s *spyStorage) Delete(name string) error { return s.inner.Delete(name) }

func (s *spyStorage) matches(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

type spyStore struct {
	Store
	parent *spyStorage
}

func (s *spyStore) Match(path string) (*Response, bool) {
	s.parent.mu.Lock()
	if s.parent.calls == nil {
		s.parent.calls = make(map[string]int)
	}
	s.parent.calls[path]++
	s.parent.mu.Unlock()
	return s.Store.Match(path)
}
