// Package history remembers the last city the widget looked up successfully.
// Every backend holds exactly one value under one key; a save replaces it.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Key is the single key every backend stores the last city under.
const Key = "lastCity"

// Backend names accepted by Open.
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendMemcached = "memcached"
)

// ErrEmptyCity is returned by SaveLastCity for an empty or whitespace-only name.
var ErrEmptyCity = errors.New("history: city is empty")

// Store persists the last-searched city.
// LastCity returns ("", false, nil) when nothing has been saved yet, or after
// ClearLastCity. Clearing an empty store is not an error.
type Store interface {
	LastCity(ctx context.Context) (string, bool, error)
	SaveLastCity(ctx context.Context, city string) error
	ClearLastCity(ctx context.Context) error
}

// Pinger is implemented by backends that can report reachability (health checks).
type Pinger interface {
	Ping() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	FilePath string

	SQLitePath string

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
}

// Open returns the Store for opts.Backend. The caller closes it if it implements io.Closer.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.FilePath), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case BackendMemcached:
		return NewMemcachedStore(opts.MemcachedAddrs, opts.MemcachedTimeout, opts.MemcachedMaxIdleConns)
	default:
		return nil, fmt.Errorf("history: unknown backend %q", opts.Backend)
	}
}

func cleanCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ErrEmptyCity
	}
	return city, nil
}
