// cmd/trajrec/storage.go
package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/trajrec/trajrec/internal/config"
	"github.com/trajrec/trajrec/internal/storage"
	"github.com/trajrec/trajrec/internal/storage/gormdb"
	"github.com/trajrec/trajrec/internal/storage/memory"
)

// newBackend creates the storage backend selected by configuration.
func newBackend(cfg config.StorageConfig, log zerolog.Logger) (storage.Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite", "postgres":
		return gormdb.New(cfg.Type, log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
