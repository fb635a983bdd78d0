package cache

import (
	"context"
	"fmt"

	"github.com/matzehuels/foldgraph/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string // file backend
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open creates the backend named by cfg.Backend. An empty name selects
// the file backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.Mongo)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput,
			fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend), "open cache")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
