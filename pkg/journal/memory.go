package journal

import (
	"sync"
	"time"

	"github.com/bluele/gcache"
)

// Memory is an LRU-bounded in-process journal. Evicted or expired pairs can
// be claimed again.
type Memory struct {
	mu    sync.Mutex
	cache gcache.Cache
	ttl   time.Duration
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultConfig().Size
	}
	return &Memory{
		cache: gcache.New(size).LRU().Build(),
		ttl:   ttl,
	}
}

func (m *Memory) Claim(identity, salt string) (bool, error) {
	k := key(identity, salt)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.cache.Get(k); err == nil {
		return false, nil
	}
	if m.ttl > 0 {
		return true, m.cache.SetWithExpire(k, struct{}{}, m.ttl)
	}
	return true, m.cache.Set(k, struct{}{})
}

func (m *Memory) Close() error {
	m.cache.Purge()
	return nil
}
