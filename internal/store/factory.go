package store

import (
	"fmt"

	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// NewEntityStore creates an entity store based on configuration
func NewEntityStore(config *Config) (EntityStore, error) {
	if config == nil {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "Storage config is nil", "")
	}

	switch config.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if config.ConnectionString == "" {
			return nil, utils.NewAppError(utils.ErrCodeConfiguration, "SQLite connection string is required", "")
		}
		return NewSQLiteStore(config), nil
	case "postgres":
		if config.ConnectionString == "" {
			return nil, utils.NewAppError(utils.ErrCodeConfiguration, "PostgreSQL connection string is required", "")
		}
		return NewPostgresStore(config), nil
	default:
		return nil, utils.NewAppError(utils.ErrCodeConfiguration,
			fmt.Sprintf("Unsupported storage type: %s", config.Type), "")
	}
}
