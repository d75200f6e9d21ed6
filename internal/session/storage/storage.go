// Package storage is the local key/value store that keeps the session between
// runs of the CLI.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Open builds the backend named by cfg.Driver.
func Open(cfg internal.SessionConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStorage(internal.ExpandHome(cfg.Path))
	case "redis":
		client, err := NewRedisConn(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(client, cfg.Redis.Prefix, cfg.Redis.Timeout), nil
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}
