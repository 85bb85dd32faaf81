package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type download struct {
	name        string
	contentType string
	data        []byte
	expires     time.Time
}

// downloadStore keeps generated files in memory until they expire.
type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
	ttl   time.Duration
	now   func() time.Time
}

func newDownloadStore(ttl time.Duration) *downloadStore {
	return &downloadStore{items: make(map[string]download), ttl: ttl, now: time.Now}
}

// put stores data and returns its download id.
func (s *downloadStore) put(name, contentType string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	id := uuid.NewString()
	s.items[id] = download{name: name, contentType: contentType, data: data, expires: s.now().Add(s.ttl)}
	return id
}

func (s *downloadStore) get(id string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[id]
	if !ok {
		return download{}, false
	}
	if !s.now().Before(d.expires) {
		delete(s.items, id)
		return download{}, false
	}
	return d, true
}

func (s *downloadStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *downloadStore) sweepLocked() {
	now := s.now()
	for id, d := range s.items {
		if !now.Before(d.expires) {
			delete(s.items, id)
		}
	}
}
