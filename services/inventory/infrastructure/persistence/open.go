// Package persistence selects the document store adapter named by
// STORE_DRIVER.
package persistence

import (
	"fmt"

	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/database"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	"github.com/ghuser/nurseryinventory/services/inventory/infrastructure/persistence/memory"
	"github.com/ghuser/nurseryinventory/services/inventory/infrastructure/persistence/postgres"
)

// Open returns the store for cfg.StoreDriver. db is required for postgres
// and ignored for memory.
func Open(cfg *config.Config, db *database.Database) (repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return memory.NewStore(memory.WithMaxWrites(cfg.MaxTransactionWrites)), nil
	case config.StoreDriverPostgres, "":
		if db == nil {
			return nil, fmt.Errorf("persistence: postgres store requires a database connection")
		}
		return postgres.NewDocumentStore(db, postgres.WithMaxWrites(cfg.MaxTransactionWrites)), nil
	default:
		return nil, fmt.Errorf("persistence: unknown store driver %q", cfg.StoreDriver)
	}
}
