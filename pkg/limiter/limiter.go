// Package limiter throttles registration attempts per identity.
package limiter

import (
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/time/rate"
)

const (
	defaultCacheSize = 1000
	defaultExpire    = 24 * time.Hour
)

type Config struct {
	// Rate is attempts per second; zero disables limiting.
	Rate      float64 `yaml:"rate" mapstructure:"rate"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
	CacheSize int     `yaml:"cachesize" mapstructure:"cachesize"`
}

func DefaultConfig() Config {
	return Config{Rate: 5, Burst: 10, CacheSize: defaultCacheSize}
}

// IdentityLimiter keeps one token bucket per identity in an LRU cache.
type IdentityLimiter struct {
	cache gcache.Cache
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

// New returns nil when cfg.Rate is zero; a nil limiter allows everything.
func New(cfg Config) *IdentityLimiter {
	if cfg.Rate <= 0 {
		return nil
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &IdentityLimiter{
		cache: gcache.New(cfg.CacheSize).LRU().Build(),
		r:     rate.Limit(cfg.Rate),
		b:     cfg.Burst,
	}
}

func (l *IdentityLimiter) Allow(identity string) bool {
	if l == nil {
		return true
	}
	return l.get(identity).Allow()
}

func (l *IdentityLimiter) get(identity string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, err := l.cache.Get(identity); err == nil {
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(l.r, l.b)
	_ = l.cache.SetWithExpire(identity, limiter, defaultExpire)
	return limiter
}
