// Package sim runs chunk streaming and remeshing as one ordered loop.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"chunkstream/internal/mesh"
	"chunkstream/internal/stream"
	"chunkstream/internal/world"
)

// Config bundles everything a Simulation needs besides its collaborators.
type Config struct {
	Stream     stream.Config
	Dimensions world.Dimensions
	Mesher     mesh.Variant
	Materials  mesh.Materials
}

// Frame reports the work done by one Update or Tick call.
type Frame struct {
	Ticked bool
	Stream stream.TickResult
	Loaded int
	Meshed int
}

// Simulation owns the world store and everything that mutates it. All
// methods must be called from the same goroutine.
type Simulation struct {
	cfg       Config
	store     *world.Store
	saves     *world.SaveCache
	dirty     *world.DirtySet
	stream    *stream.Manager
	presenter Presenter
	metrics   *Metrics
	logger    *zap.Logger
}

// Option customises a Simulation.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	registry prometheus.Registerer
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers streaming and meshing metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

func New(cfg Config, generator world.Generator, presenter Presenter, opts ...Option) (*Simulation, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if presenter == nil {
		return nil, errors.New("simulation requires a presenter")
	}
	if _, err := mesh.ParseVariant(string(cfg.Mesher)); err != nil {
		return nil, err
	}

	store := world.NewStore(cfg.Dimensions)
	saves, err := world.NewSaveCache(cfg.Dimensions)
	if err != nil {
		return nil, err
	}
	dirty := world.NewDirtySet()
	mgr, err := stream.NewManager(cfg.Stream, store, saves, dirty, generator,
		stream.WithLogger(o.logger.Named("stream")),
		stream.WithMetrics(stream.NewMetrics(o.registry)),
		stream.WithReleaser(presenter),
	)
	if err != nil {
		saves.Close()
		return nil, err
	}
	return &Simulation{
		cfg:       cfg,
		store:     store,
		saves:     saves,
		dirty:     dirty,
		stream:    mgr,
		presenter: presenter,
		metrics:   NewMetrics(o.registry),
		logger:    o.logger,
	}, nil
}

func (s *Simulation) Store() *world.Store {
	return s.store
}

func (s *Simulation) Dirty() *world.DirtySet {
	return s.dirty
}

func (s *Simulation) SaveCache() *world.SaveCache {
	return s.saves
}

func (s *Simulation) Stream() *stream.Manager {
	return s.stream
}

// Update advances the streaming timer by delta. On a tick edge it streams
// and loads; dirty chunks are remeshed on every call.
func (s *Simulation) Update(ctx context.Context, delta time.Duration, vp stream.Viewpoint) (Frame, error) {
	var frame Frame
	res, ran, err := s.stream.Update(ctx, delta, vp)
	if err != nil {
		return frame, err
	}
	if ran {
		frame.Ticked = true
		frame.Stream = res
		if frame.Loaded, err = s.stream.HandleLoads(ctx, res.Requests); err != nil {
			return frame, err
		}
	}
	frame.Meshed, err = s.Remesh()
	return frame, err
}

// Tick runs one full step regardless of the timer: stream, load, remesh.
func (s *Simulation) Tick(ctx context.Context, vp stream.Viewpoint) (Frame, error) {
	frame := Frame{Ticked: true}
	res, err := s.stream.Tick(ctx, vp)
	if err != nil {
		return frame, err
	}
	frame.Stream = res
	if frame.Loaded, err = s.stream.HandleLoads(ctx, res.Requests); err != nil {
		return frame, err
	}
	frame.Meshed, err = s.Remesh()
	return frame, err
}

// Remesh rebuilds every dirty chunk in mark order. A chunk stays dirty when
// its build or attach fails, and the first failure is returned.
func (s *Simulation) Remesh() (int, error) {
	meshed := 0
	for _, coord := range s.dirty.Pending() {
		if !s.store.Has(coord) {
			s.dirty.Drop(coord)
			continue
		}
		start := time.Now()
		m, err := mesh.Build(s.cfg.Mesher, s.store, coord, s.cfg.Materials)
		if err != nil {
			s.metrics.observeFailure()
			return meshed, err
		}
		s.metrics.observeBuild(string(s.cfg.Mesher), time.Since(start).Seconds(), m.Quads())
		if err := s.presenter.Attach(coord, m); err != nil {
			s.metrics.observeFailure()
			return meshed, fmt.Errorf("attach mesh %v: %w", coord, err)
		}
		s.dirty.Clear(coord)
		meshed++
		s.logger.Debug("Meshed chunk",
			zap.Stringer("chunk", coord),
			zap.Int("quads", m.Quads()),
		)
	}
	return meshed, nil
}

// Block returns the block at a world voxel position; unloaded chunks read as Air.
func (s *Simulation) Block(x, y, z int) world.Block {
	return s.store.BlockAt(world.ChunkCoord{}, x, y, z)
}

// SetBlock edits the block at a world voxel position. The owning chunk is
// flagged modified and it and its loaded neighbours are marked dirty. It
// reports false when the chunk is not loaded or the block is unchanged.
func (s *Simulation) SetBlock(x, y, z int, b world.Block) bool {
	coord, lx, ly, lz := world.Locate(world.ChunkCoord{}, x, y, z, s.cfg.Dimensions)
	ch, ok := s.store.Get(coord)
	if !ok {
		return false
	}
	if !ch.SetLocal(lx, ly, lz, b) {
		return false
	}
	s.dirty.Touch(s.store, coord)
	return true
}

// Close releases the save cache codecs.
func (s *Simulation) Close() {
	s.saves.Close()
}
