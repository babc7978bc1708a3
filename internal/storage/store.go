package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/paths"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is a key-value store partitioned into named tables.
// A missing key is reported through ok == false, never as an error.
type Store interface {
	Get(ctx context.Context, table, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, table, key string, value []byte) error
	Remove(ctx context.Context, table, key string) error
	Scan(ctx context.Context, table string) (map[string][]byte, error)
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendSQLite Backend = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend
	// Path is the data directory. Empty means the user data directory.
	Path string
}

// Open opens the configured backend.
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendBadger, BackendSQLite:
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}

	dir, err := paths.EnsureDir(paths.Resolve(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("prepare storage directory: %w", err)
	}
	cfg.Path = dir

	if cfg.Backend == BackendSQLite {
		return OpenSQLite(filepath.Join(cfg.Path, "catalog.db"))
	}
	bcfg := DefaultBadgerConfig()
	bcfg.Path = filepath.Join(cfg.Path, "badger")
	bcfg.Logger = logger
	return OpenBadger(bcfg)
}
