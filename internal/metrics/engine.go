// Package metrics derives the dashboard bundles (overview, usage and business
// environment) from a scoped dataset. Every pipeline is a pure function of
// its inputs: no I/O, no hidden state, and the reference time is a parameter.
package metrics

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

// DefaultPalette is the color cycle used for chart slices.
var DefaultPalette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444",
	"#8b5cf6", "#ec4899", "#06b6d4", "#84cc16",
}

// Engine computes dashboard bundles. It is safe for concurrent use.
type Engine struct {
	loc     *time.Location
	palette []string
	clock   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone used for calendar bucketing.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithPalette overrides the slice color cycle.
func WithPalette(colors []string) Option {
	return func(e *Engine) {
		if len(colors) > 0 {
			e.palette = append([]string(nil), colors...)
		}
	}
}

// WithClock sets the clock used when params carry no reference time.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates an Engine with UTC bucketing and the default palette.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loc:     time.UTC,
		palette: DefaultPalette,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's bucketing time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) color(i int) string {
	return e.palette[i%len(e.palette)]
}

func (e *Engine) reference(now time.Time) time.Time {
	if now.IsZero() {
		now = e.clock()
	}
	return now.In(e.loc)
}

// DateRange is an inclusive time window. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// Contains reports whether t falls inside the range. A nil range contains
// everything.
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Params groups the filter inputs of all three pipelines.
type Params struct {
	Overview OverviewParams `json:"overview"`
	Usage    UsageParams    `json:"usage"`
}

// Bundle holds the three dashboard results.
type Bundle struct {
	Overview *Overview `json:"overview"`
	Usage    *Usage    `json:"usage"`
	Business *Business `json:"business"`
}

// Compute runs the three pipelines concurrently. They share only read-only
// inputs, so no ordering between them is required.
func (e *Engine) Compute(ctx context.Context, ds *model.Dataset, p Params) (*Bundle, error) {
	if ds == nil {
		ds = &model.Dataset{}
	}
	var b Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b.Overview = e.Overview(ds, p.Overview)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b.Usage = e.Usage(ds, p.Usage)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b.Business = e.Business(ds)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "metrics: compute")
	}
	return &b, nil
}
