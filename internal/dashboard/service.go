// Package dashboard orchestrates dataset loading, role scoping and metric
// computation, and memoizes the results per snapshot.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/camaras-ia/licencias-cli/internal/metrics"
	"github.com/camaras-ia/licencias-cli/internal/model"
	"github.com/camaras-ia/licencias-cli/internal/scope"
)

// ErrForbidden is returned when the actor's role does not allow an operation.
var ErrForbidden = eris.New("dashboard: forbidden")

// DatasetLoader supplies dataset snapshots. store.Store satisfies it.
type DatasetLoader interface {
	LoadDataset(ctx context.Context) (*model.Dataset, error)
}

// Options tunes snapshot and result caching.
type Options struct {
	// SnapshotTTL is how long a loaded dataset is served before reloading.
	// Zero keeps it until Refresh.
	SnapshotTTL time.Duration
	// CacheEntries bounds the result cache. Zero disables it.
	CacheEntries int
	// CacheTTL expires cached results. Zero keeps them until eviction.
	CacheTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// SnapshotInfo describes the dataset currently being served.
type SnapshotInfo struct {
	Version      uint64    `json:"version" yaml:"version"`
	LoadedAt     time.Time `json:"loaded_at" yaml:"loaded_at"`
	Applications int       `json:"applications" yaml:"applications"`
	Companies    int       `json:"companies" yaml:"companies"`
	Chambers     int       `json:"chambers" yaml:"chambers"`
	Profiles     int       `json:"profiles" yaml:"profiles"`
	Activities   int       `json:"activities" yaml:"activities"`
}

// Stats reports snapshot and cache state.
type Stats struct {
	Snapshot *SnapshotInfo `json:"snapshot" yaml:"snapshot"`
	Cache    CacheStats    `json:"cache" yaml:"cache"`
}

type snapshot struct {
	ds   *model.Dataset
	info SnapshotInfo
}

// Service computes dashboard bundles for an actor. It is safe for
// concurrent use.
type Service struct {
	loader      DatasetLoader
	engine      *metrics.Engine
	cache       *ResultCache
	snapshotTTL time.Duration
	clock       func() time.Time

	mu      sync.RWMutex
	snap    *snapshot
	version uint64
	flight  singleflight.Group
}

// NewService creates a Service reading from loader.
func NewService(loader DatasetLoader, engine *metrics.Engine, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	cache := NewResultCache(opts.CacheEntries, opts.CacheTTL)
	cache.now = clock
	return &Service{
		loader:      loader,
		engine:      engine,
		cache:       cache,
		snapshotTTL: opts.SnapshotTTL,
		clock:       clock,
	}
}

// Overview computes the overview bundle.
func (s *Service) Overview(ctx context.Context, actor model.Actor, p metrics.OverviewParams) (*metrics.Overview, error) {
	p.Now = s.reference(p.Now)
	v, err := s.cached(ctx, actor, "overview", overviewKey(p), func(_ context.Context, ds *model.Dataset) (any, error) {
		return s.engine.Overview(ds, p), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*metrics.Overview), nil
}

// Usage computes the usage bundle.
func (s *Service) Usage(ctx context.Context, actor model.Actor, p metrics.UsageParams) (*metrics.Usage, error) {
	p.Now = s.reference(p.Now)
	v, err := s.cached(ctx, actor, "usage", usageKey(p), func(_ context.Context, ds *model.Dataset) (any, error) {
		return s.engine.Usage(ds, p), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*metrics.Usage), nil
}

// Business computes the business-environment bundle.
func (s *Service) Business(ctx context.Context, actor model.Actor) (*metrics.Business, error) {
	v, err := s.cached(ctx, actor, "business", "", func(_ context.Context, ds *model.Dataset) (any, error) {
		return s.engine.Business(ds), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*metrics.Business), nil
}

// Dashboard computes all three bundles concurrently.
func (s *Service) Dashboard(ctx context.Context, actor model.Actor, p metrics.Params) (*metrics.Bundle, error) {
	now := s.reference(p.Overview.Now)
	p.Overview.Now = now
	if p.Usage.Now.IsZero() {
		p.Usage.Now = now
	} else {
		p.Usage.Now = s.reference(p.Usage.Now)
	}
	key := overviewKey(p.Overview) + "#" + usageKey(p.Usage)
	v, err := s.cached(ctx, actor, "dashboard", key, func(ctx context.Context, ds *model.Dataset) (any, error) {
		return s.engine.Compute(ctx, ds, p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*metrics.Bundle), nil
}

// Refresh reloads the dataset immediately and drops every cached result.
// Only administrators may refresh.
func (s *Service) Refresh(ctx context.Context, actor model.Actor) (*SnapshotInfo, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	info := snap.info
	return &info, nil
}

// Stats returns the current snapshot and cache statistics.
func (s *Service) Stats() Stats {
	st := Stats{Cache: s.cache.Stats()}
	s.mu.RLock()
	if s.snap != nil {
		info := s.snap.info
		st.Snapshot = &info
	}
	s.mu.RUnlock()
	return st
}

type computeFunc func(ctx context.Context, ds *model.Dataset) (any, error)

// cached resolves a pipeline result through the snapshot, the result cache
// and a per-key singleflight so concurrent identical requests compute once.
func (s *Service) cached(ctx context.Context, actor model.Actor, pipeline, params string, compute computeFunc) (any, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("v%d|%s|%s|%s", snap.info.Version, actorKey(actor), pipeline, params)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	// The shared computation outlives any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("compute:"+key, func() (any, error) {
		start := time.Now()
		scoped := scope.Apply(snap.ds, actor)
		out, err := compute(shared, scoped)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, out)
		zap.L().Debug("dashboard: computed",
			zap.String("pipeline", pipeline),
			zap.String("role", string(actor.Role)),
			zap.String("chamber", actor.ChamberName),
			zap.Uint64("version", snap.info.Version),
			zap.Duration("elapsed", time.Since(start)),
		)
		return out, nil
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "dashboard: compute %s", pipeline)
	case res := <-ch:
		if res.Err != nil {
			return nil, eris.Wrapf(res.Err, "dashboard: compute %s", pipeline)
		}
		return res.Val, nil
	}
}

// snapshot returns the current dataset, reloading it when missing or stale.
// A failed reload keeps serving the previous snapshot.
func (s *Service) snapshot(ctx context.Context) (*snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil && !s.stale(snap) {
		return snap, nil
	}

	fresh, err := s.load(ctx)
	if err != nil {
		if snap != nil {
			zap.L().Warn("dashboard: reload failed, serving previous snapshot",
				zap.Uint64("version", snap.info.Version), zap.Error(err))
			return snap, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (s *Service) stale(snap *snapshot) bool {
	return s.snapshotTTL > 0 && s.clock().Sub(snap.info.LoadedAt) > s.snapshotTTL
}

// load reads a new snapshot. Concurrent callers share one load.
func (s *Service) load(ctx context.Context) (*snapshot, error) {
	v, err, _ := s.flight.Do("snapshot", func() (any, error) {
		start := time.Now()
		ds, err := s.loader.LoadDataset(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "dashboard: load snapshot")
		}
		if ds == nil {
			ds = &model.Dataset{}
		}

		s.mu.Lock()
		s.version++
		snap := &snapshot{ds: ds, info: SnapshotInfo{
			Version:      s.version,
			LoadedAt:     s.clock(),
			Applications: len(ds.Applications),
			Companies:    len(ds.Companies),
			Chambers:     len(ds.Chambers),
			Profiles:     len(ds.Profiles),
			Activities:   len(ds.Activities),
		}}
		s.snap = snap
		s.mu.Unlock()

		// Keys embed the version, so older results can never be served again.
		s.cache.Purge()

		zap.L().Info("dashboard: snapshot loaded",
			zap.Uint64("version", snap.info.Version),
			zap.Int("applications", snap.info.Applications),
			zap.Int("profiles", snap.info.Profiles),
			zap.Duration("elapsed", time.Since(start)),
		)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

// reference pins the pipeline reference time to the minute so requests in
// the same minute share cache entries.
func (s *Service) reference(now time.Time) time.Time {
	if now.IsZero() {
		now = s.clock()
	}
	return now.Truncate(time.Minute)
}

func actorKey(a model.Actor) string {
	if a.Role == model.RoleChamber {
		return string(a.Role) + ":" + strings.ToLower(strings.TrimSpace(a.ChamberName))
	}
	return string(a.Role)
}

func rangeKey(r *metrics.DateRange) string {
	if r == nil {
		return "all"
	}
	return timeKey(r.Start) + ".." + timeKey(r.End)
}

func timeKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func overviewKey(p metrics.OverviewParams) string {
	return rangeKey(p.DateRange) + "|" + timeKey(p.Now)
}

func usageKey(p metrics.UsageParams) string {
	return strings.Join([]string{rangeKey(p.DateRange), string(p.UserType), p.ChamberID, timeKey(p.Now)}, "|")
}
