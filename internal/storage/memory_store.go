package storage

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type MemoryStore struct {
	// go-cache locks per call; mu makes a batch atomic to readers.
	mu    sync.RWMutex
	cache *cache.Cache
}

// NewMemoryStore keeps values for ttl after their last write. A zero ttl
// keeps them until the process exits.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &MemoryStore{
		cache: cache.New(expiration, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *MemoryStore) Apply(_ context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range batch.Put {
		s.cache.Set(k, v, cache.DefaultExpiration)
	}
	for _, k := range batch.Remove {
		s.cache.Delete(k)
	}
	return nil
}
