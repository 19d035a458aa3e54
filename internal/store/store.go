// Package store provides the data providers that materialize the dashboard
// dataset from Postgres or SQLite.
package store

import (
	"context"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// Store loads and persists the collections the metrics engine consumes.
type Store interface {
	// LoadDataset reads every table into a fresh snapshot.
	LoadDataset(ctx context.Context) (*model.Dataset, error)
	// SaveDataset upserts every record in ds, keyed by primary key.
	SaveDataset(ctx context.Context, ds *model.Dataset) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
