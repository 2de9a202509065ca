package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
)

// NewStore opens the backend named in the storage config.
func NewStore(logger *common.Logger, cfg common.StorageConfig) (interfaces.PersistenceStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "badger":
		return NewBadgerStore(logger, cfg.Path)
	case "sqlite":
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "stockverse.db")
		}
		return NewSQLiteStore(logger, path)
	case "memory":
		logger.Warn().Msg("Using in-memory storage - state will not survive a restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
