package storage

import (
	"fmt"
	"strings"
	"time"
)

// Announcement is what was last published for one menu date.
type Announcement struct {
	// Digest fingerprints the dishes that were announced.
	Digest string
	// Revision counts republications after the menu was edited; 0 is the first.
	Revision int
}

// Store keeps the latest Announcement per menu date. Records expire after
// Options.MenuTTL so past days do not accumulate.
type Store interface {
	Close() error
	LastAnnouncement(date string) (Announcement, bool, error)
	RecordAnnouncement(date string, a Announcement) error
}

// Options controls retention for the concrete stores.
type Options struct {
	MenuTTL         time.Duration
	CleanupInterval time.Duration
	RedisAddr       string
	KeyPrefix       string
}

const (
	defaultMenuTTL         = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultKeyPrefix       = "alright:menu:"
)

// NewStore opens the backend named by typ: none, bbolt or redis.
func NewStore(typ, path string, opts Options) (Store, error) {
	opts = withDefaults(opts)

	switch strings.TrimSpace(strings.ToLower(typ)) {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return openRedis(opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func withDefaults(opts Options) Options {
	if opts.MenuTTL <= 0 {
		opts.MenuTTL = defaultMenuTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	return opts
}

// noopStore forgets everything, so every menu is announced on every pass.
type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) LastAnnouncement(string) (Announcement, bool, error) {
	return Announcement{}, false, nil
}

func (noopStore) RecordAnnouncement(string, Announcement) error { return nil }
