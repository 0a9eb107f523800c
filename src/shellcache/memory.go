// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package shellcache

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStorage keeps stores in process memory. The shell is a small,
// bounded set of assets, so there is no eviction; superseded stores are
// deleted during activation.
type MemoryStorage struct {
	fetcher Fetcher

	mu     sync.RWMutex
	stores map[string]*memoryStore
}

// NewMemoryStorage returns storage whose AddAll populates stores through
// fetcher.
func NewMemoryStorage(fetcher Fetcher) *MemoryStorage {
	return &MemoryStorage{
		fetcher: fetcher,
		stores:  make(map[string]*memoryStore),
	}
}

func (s *MemoryStorage) Open(name string) (Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[name]; ok {
		return st, nil
	}
	st := &memoryStore{
		name:    name,
		fetcher: s.fetcher,
		entries: make(map[string]*Response),
	}
	s.stores[name] = st
	return st, nil
}

func (s *MemoryStorage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStorage) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stores[name]; !ok {
		return errors.Errorf("shellcache: no store named %q", name)
	}
	delete(s.stores, name)
	return nil
}

type memoryStore struct {
	name    string
	fetcher Fetcher

	mu      sync.RWMutex
	entries map[string]*Response
}

func (st *memoryStore) Name() string { return st.name }

func (st *memoryStore) AddAll(ctx context.Context, paths []string) error {
	// Stage every snapshot first so a late failure leaves no partial
	// population behind.
	staged := make(map[string]*Response, len(paths))
	for _, path := range paths {
		resp, err := st.fetcher.Fetch(ctx, path)
		if err != nil {
			return errors.Wrapf(err, "shellcache: fetch %s", path)
		}
		if resp.Status < 200 || resp.Status > 299 {
			return errors.Errorf("shellcache: fetch %s: status %d", path, resp.Status)
		}
		snap := resp.Clone()
		snap.ETag = Fingerprint(snap.Body)
		staged[path] = snap
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for path, snap := range staged {
		st.entries[path] = snap
	}
	return nil
}

func (st *memoryStore) Match(path string) (*Response, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	resp, ok := st.entries[path]
	if !ok {
		return nil, false
	}
	return resp.Clone(), true
}

func (st *memoryStore) Put(path string, resp *Response) {
	snap := resp.Clone()
	if snap.ETag == "" {
		snap.ETag = Fingerprint(snap.Body)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries[path] = snap
}

func (st *memoryStore) Keys() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	keys := make([]string, 0, len(st.entries))
	for path := range st.entries {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	return keys
}
