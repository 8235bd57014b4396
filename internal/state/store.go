package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// #region store
// Store persists the single engine snapshot.
//
// Load returns Default() and a nil error when nothing has been saved yet, and
// an error wrapping ErrCorrupt when the saved snapshot cannot be decoded.
// Save overwrites the snapshot wholesale.
type Store interface {
	Load(ctx context.Context) (EngineState, error)
	Save(ctx context.Context, s EngineState) error
	Close() error
}

// #endregion store

// #region options
// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend       Backend
	Path          string // file and sqlite
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(ctx, &redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}, opts.RedisKey)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}

// #endregion options
