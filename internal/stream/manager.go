// Package stream decides which chunks are resident around a moving viewpoint.
package stream

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"chunkstream/internal/world"
)

// Viewpoint supplies the position chunks are streamed around. ok is false
// when no viewpoint exists yet.
type Viewpoint interface {
	Position() (pos mgl32.Vec3, ok bool)
}

// ViewpointFunc adapts a function to Viewpoint.
type ViewpointFunc func() (mgl32.Vec3, bool)

func (f ViewpointFunc) Position() (mgl32.Vec3, bool) {
	return f()
}

// Releaser destroys the rendering resources of an evicted chunk.
type Releaser interface {
	Release(coord world.ChunkCoord)
}

// LoadRequest asks for the chunk at Coord to be loaded.
type LoadRequest struct {
	Coord world.ChunkCoord
}

// TickResult summarises one streaming tick.
type TickResult struct {
	Center   world.ChunkCoord
	Enqueued int
	Evicted  []world.ChunkCoord
	Requests []LoadRequest
}

// Manager maintains the world store around a viewpoint. It is driven from a
// single loop and is not safe for concurrent use.
type Manager struct {
	cfg       Config
	store     *world.Store
	saves     *world.SaveCache
	dirty     *world.DirtySet
	generator world.Generator
	releaser  Releaser
	queue     *LoadQueue
	timer     *Timer
	metrics   *Metrics
	logger    *zap.Logger
}

// Option customises a Manager.
type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func WithReleaser(r Releaser) Option {
	return func(m *Manager) {
		m.releaser = r
	}
}

func NewManager(cfg Config, store *world.Store, saves *world.SaveCache, dirty *world.DirtySet, generator world.Generator, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stream config: %w", err)
	}
	if store == nil || saves == nil || dirty == nil || generator == nil {
		return nil, fmt.Errorf("stream manager requires a store, save cache, dirty set and generator")
	}
	m := &Manager{
		cfg:       cfg,
		store:     store,
		saves:     saves,
		dirty:     dirty,
		generator: generator,
		queue:     NewLoadQueue(),
		timer:     NewTimer(cfg.TickPeriod),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) Queue() *LoadQueue {
	return m.queue
}

// Update advances the tick timer by delta and runs a tick on the edge. ran
// reports whether a tick happened.
func (m *Manager) Update(ctx context.Context, delta time.Duration, vp Viewpoint) (TickResult, bool, error) {
	if !m.timer.Advance(delta) {
		return TickResult{}, false, nil
	}
	res, err := m.Tick(ctx, vp)
	return res, true, err
}

// Tick enqueues missing wanted chunks, evicts chunks beyond the unload
// radius and drains the load queue under the budget.
func (m *Manager) Tick(ctx context.Context, vp Viewpoint) (TickResult, error) {
	if vp == nil {
		m.logger.Debug("No viewpoint, skipping stream tick")
		return TickResult{}, nil
	}
	pos, ok := vp.Position()
	if !ok {
		m.logger.Debug("No viewpoint, skipping stream tick")
		return TickResult{}, nil
	}
	center := world.WorldToChunk(pos, m.store.Dimensions())
	res := TickResult{Center: center}

	for _, coord := range m.Wanted(center) {
		if m.store.Has(coord) {
			continue
		}
		if m.queue.Push(coord) {
			res.Enqueued++
		}
	}

	for _, coord := range m.store.Coords() {
		if !m.outsideUnload(center, coord) {
			continue
		}
		if err := m.evict(coord); err != nil {
			return res, err
		}
		res.Evicted = append(res.Evicted, coord)
	}

	for _, coord := range m.queue.Drain(m.cfg.LoadBudget) {
		res.Requests = append(res.Requests, LoadRequest{Coord: coord})
	}
	m.metrics.observeRequests(len(res.Requests))
	m.metrics.ObserveState(m.store.Len(), m.queue.Len(), m.dirty.Len())

	if res.Enqueued > 0 || len(res.Evicted) > 0 || len(res.Requests) > 0 {
		m.logger.Debug("Stream tick",
			zap.Stringer("center", center),
			zap.Int("enqueued", res.Enqueued),
			zap.Int("evicted", len(res.Evicted)),
			zap.Int("requested", len(res.Requests)),
			zap.Int("queued", m.queue.Len()),
		)
	}
	return res, nil
}

// Wanted returns every coordinate within the view radius on X and Z and the
// configured Y band, nearest ring first.
func (m *Manager) Wanted(center world.ChunkCoord) []world.ChunkCoord {
	r := m.cfg.ViewRadius
	out := make([]world.ChunkCoord, 0, (2*r+1)*(2*r+1)*(m.cfg.YMax-m.cfg.YMin+1))
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			for y := m.cfg.YMin; y <= m.cfg.YMax; y++ {
				out = append(out, world.ChunkCoord{X: center.X + dx, Y: y, Z: center.Z + dz})
			}
		}
	}
	ring := func(c world.ChunkCoord) int {
		return max(abs(c.X-center.X), abs(c.Z-center.Z))
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := ring(out[i]), ring(out[j])
		if ri != rj {
			return ri < rj
		}
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

func (m *Manager) outsideUnload(center, coord world.ChunkCoord) bool {
	r := m.cfg.UnloadRadius
	return abs(coord.X-center.X) > r ||
		abs(coord.Z-center.Z) > r ||
		abs(coord.Y-center.Y) > m.cfg.verticalUnloadRadius()
}

func (m *Manager) evict(coord world.ChunkCoord) error {
	ch, ok := m.store.Get(coord)
	if !ok {
		return nil
	}
	logger := m.logger.With(zap.Int("x", coord.X), zap.Int("y", coord.Y), zap.Int("z", coord.Z))
	if ch.Modified {
		if err := m.saves.Save(coord, ch.Grid); err != nil {
			return fmt.Errorf("evict chunk %v: %w", coord, err)
		}
		logger.Debug("Saved modified chunk")
	}
	m.store.Remove(coord)
	if m.releaser != nil {
		m.releaser.Release(coord)
	}
	m.dirty.Drop(coord)
	m.dirty.MarkNeighbors(m.store, coord)
	m.metrics.observeEvict(ch.Modified)
	logger.Debug("Evicted chunk")
	return nil
}

// HandleLoads inserts the requested chunks, restoring saved grids before
// falling back to the generator. Requests for chunks already present are
// ignored.
func (m *Manager) HandleLoads(ctx context.Context, reqs []LoadRequest) (int, error) {
	loaded := 0
	for _, req := range reqs {
		if m.store.Has(req.Coord) {
			continue
		}
		grid, source, err := m.gridFor(ctx, req.Coord)
		if err != nil {
			return loaded, err
		}
		m.store.Insert(world.NewChunk(req.Coord, grid))
		m.dirty.Touch(m.store, req.Coord)
		m.metrics.observeLoad(source)
		loaded++
		m.logger.Debug("Loaded chunk",
			zap.Int("x", req.Coord.X), zap.Int("y", req.Coord.Y), zap.Int("z", req.Coord.Z),
			zap.String("source", source),
		)
	}
	if loaded > 0 {
		m.metrics.ObserveState(m.store.Len(), m.queue.Len(), m.dirty.Len())
	}
	return loaded, nil
}

func (m *Manager) gridFor(ctx context.Context, coord world.ChunkCoord) (*world.Grid, string, error) {
	grid, ok, err := m.saves.Load(coord)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return grid, SourceSaveCache, nil
	}
	grid, err = m.generator.Generate(ctx, coord, m.store.Dimensions())
	if err != nil {
		return nil, "", fmt.Errorf("generate chunk %v: %w", coord, err)
	}
	if grid == nil || grid.Dimensions() != m.store.Dimensions() {
		return nil, "", fmt.Errorf("generate chunk %v: generator returned a grid of the wrong size", coord)
	}
	return grid, SourceGenerator, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
