// Package journal remembers issued salts so an identity never receives the
// same salt twice.
package journal

import (
	"errors"
	"fmt"
	"time"
)

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

var ErrUnknownBackend = errors.New("journal: unknown backend")

// Journal records (identity, salt) pairs.
type Journal interface {
	// Claim records salt for identity. It reports false when the pair was
	// already recorded.
	Claim(identity, salt string) (bool, error)
	Close() error
}

type Config struct {
	Backend string        `yaml:"backend" mapstructure:"backend"`
	Path    string        `yaml:"path" mapstructure:"path"`
	Size    int           `yaml:"size" mapstructure:"size"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Path:    "./data/journal",
		Size:    100000,
		TTL:     30 * 24 * time.Hour,
	}
}

// Open builds the journal selected by cfg.Backend.
func Open(cfg Config) (Journal, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(cfg.Size, cfg.TTL), nil
	case BackendBadger:
		return OpenBadger(cfg.Path, cfg.TTL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

func key(identity, salt string) string {
	return identity + "\x00" + salt
}
