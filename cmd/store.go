package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/camaras-ia/licencias-cli/internal/dashboard"
	"github.com/camaras-ia/licencias-cli/internal/metrics"
	"github.com/camaras-ia/licencias-cli/internal/resilience"
	"github.com/camaras-ia/licencias-cli/internal/store"
)

const defaultSQLiteDSN = "licencias.db"

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newService wires the metrics engine and the guarded loader into a
// dashboard service.
func newService(st store.Store) (*dashboard.Service, *time.Location, error) {
	loc, err := cfg.Dashboard.Location()
	if err != nil {
		return nil, nil, err
	}
	engine := metrics.NewEngine(
		metrics.WithLocation(loc),
		metrics.WithPalette(cfg.Dashboard.Palette),
	)

	r := cfg.Store.Retry
	loader := dashboard.NewGuardedLoader(st,
		resilience.NewBreaker("store", r.BreakerThreshold, r.BreakerCooldown),
		resilience.Policy{Attempts: r.Attempts, Backoff: r.Backoff},
	)

	svc := dashboard.NewService(loader, engine, dashboard.Options{
		SnapshotTTL:  cfg.Dashboard.SnapshotTTL,
		CacheEntries: cfg.Dashboard.CacheEntries,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	return svc, loc, nil
}
