package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkstream/internal/atlas"
	"chunkstream/internal/mesh"
	"chunkstream/internal/stream"
	"chunkstream/internal/terrain"
	"chunkstream/internal/world"
)

func testConfig(variant mesh.Variant) Config {
	return Config{
		Stream: stream.Config{
			ViewRadius:   1,
			UnloadRadius: 1,
			TickPeriod:   50 * time.Millisecond,
			YMin:         0,
			YMax:         0,
			LoadBudget:   9,
		},
		Dimensions: world.DefaultDimensions,
		Mesher:     variant,
		Materials:  mesh.Materials{Atlas: atlas.Default(), Tiles: atlas.DefaultTiles()},
	}
}

type failingPresenter struct {
	*MeshStore
	err error
}

func (p *failingPresenter) Attach(coord world.ChunkCoord, m *mesh.Mesh) error {
	if p.err != nil {
		return p.err
	}
	return p.MeshStore.Attach(coord, m)
}

func fixedViewpoint(pos *mgl32.Vec3) stream.Viewpoint {
	return stream.ViewpointFunc(func() (mgl32.Vec3, bool) { return *pos, true })
}

func newSim(t *testing.T, cfg Config, p Presenter, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(cfg, terrain.Showcase{PillarHeight: 4}, p, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestTickStreamsLoadsAndMeshes(t *testing.T) {
	meshes := NewMeshStore()
	reg := prometheus.NewRegistry()
	s := newSim(t, testConfig(mesh.Greedy), meshes, WithRegisterer(reg))
	pos := mgl32.Vec3{8, 8, 8}

	frame, err := s.Tick(context.Background(), fixedViewpoint(&pos))
	require.NoError(t, err)
	assert.Equal(t, 9, frame.Loaded)
	assert.Equal(t, 9, frame.Meshed)
	assert.Equal(t, 9, meshes.Len())
	assert.Zero(t, s.Dirty().Len())

	center, ok := meshes.Mesh(world.ChunkCoord{})
	require.True(t, ok)
	assert.False(t, center.Empty())

	quads, _ := meshes.Totals()
	assert.Equal(t, float64(quads), testutil.ToFloat64(s.metrics.quads.WithLabelValues("greedy")))
}

func TestNaiveAndGreedyWorldsHaveSameArea(t *testing.T) {
	pos := mgl32.Vec3{8, 8, 8}
	area := map[mesh.Variant]float32{}
	for _, v := range []mesh.Variant{mesh.Naive, mesh.Greedy} {
		meshes := NewMeshStore()
		s := newSim(t, testConfig(v), meshes)
		_, err := s.Tick(context.Background(), fixedViewpoint(&pos))
		require.NoError(t, err)
		for _, coord := range s.Store().Coords() {
			m, ok := meshes.Mesh(coord)
			require.True(t, ok)
			area[v] += m.Area()
		}
	}
	assert.InDelta(t, area[mesh.Naive], area[mesh.Greedy], 1e-3)
}

func TestSetBlockAtBoundaryDirtiesNeighbor(t *testing.T) {
	meshes := NewMeshStore()
	s := newSim(t, testConfig(mesh.Naive), meshes)
	pos := mgl32.Vec3{8, 8, 8}
	_, err := s.Tick(context.Background(), fixedViewpoint(&pos))
	require.NoError(t, err)

	before, _ := meshes.Mesh(world.ChunkCoord{X: -1})
	beforeQuads := before.Quads()

	// carve out the floor voxel at local x=0 of chunk 0; the west neighbour
	// now shows its +x face.
	require.True(t, s.SetBlock(0, 0, 3, world.Air))
	assert.True(t, s.Dirty().Contains(world.ChunkCoord{}))
	assert.True(t, s.Dirty().Contains(world.ChunkCoord{X: -1}))
	ch, _ := s.Store().Get(world.ChunkCoord{})
	assert.True(t, ch.Modified)
	assert.Equal(t, world.Air, s.Block(0, 0, 3))

	n, err := s.Remesh()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	after, _ := meshes.Mesh(world.ChunkCoord{X: -1})
	assert.Equal(t, beforeQuads+1, after.Quads())

	assert.False(t, s.SetBlock(0, 0, 3, world.Air), "unchanged block is not an edit")
	assert.False(t, s.SetBlock(500, 0, 0, world.Stone), "unloaded chunk cannot be edited")
}

func TestEvictionReleasesMeshAndReloadRestoresEdit(t *testing.T) {
	meshes := NewMeshStore()
	s := newSim(t, testConfig(mesh.Greedy), meshes)
	pos := mgl32.Vec3{8, 8, 8}
	vp := fixedViewpoint(&pos)
	ctx := context.Background()

	_, err := s.Tick(ctx, vp)
	require.NoError(t, err)
	require.True(t, s.SetBlock(3, 1, 3, world.Stone))

	pos = mgl32.Vec3{16*10 + 8, 8, 8}
	frame, err := s.Tick(ctx, vp)
	require.NoError(t, err)
	assert.Len(t, frame.Stream.Evicted, 9)
	_, ok := meshes.Mesh(world.ChunkCoord{})
	assert.False(t, ok, "evicted chunk mesh released")
	assert.True(t, s.SaveCache().Has(world.ChunkCoord{}))

	pos = mgl32.Vec3{8, 8, 8}
	_, err = s.Tick(ctx, vp)
	require.NoError(t, err)
	assert.Equal(t, world.Stone, s.Block(3, 1, 3))
}

func TestMissingTileKeepsChunkDirty(t *testing.T) {
	cfg := testConfig(mesh.Greedy)
	cfg.Materials.Tiles = atlas.TileTable{}
	s := newSim(t, cfg, NewMeshStore())
	pos := mgl32.Vec3{8, 8, 8}

	_, err := s.Tick(context.Background(), fixedViewpoint(&pos))
	require.ErrorIs(t, err, atlas.ErrMissingTile)
	assert.Equal(t, 9, s.Dirty().Len())
}

func TestAttachFailureKeepsChunkDirty(t *testing.T) {
	boom := errors.New("gpu lost")
	p := &failingPresenter{MeshStore: NewMeshStore(), err: boom}
	s := newSim(t, testConfig(mesh.Naive), p)
	pos := mgl32.Vec3{8, 8, 8}

	_, err := s.Tick(context.Background(), fixedViewpoint(&pos))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 9, s.Dirty().Len())

	p.err = nil
	n, err := s.Remesh()
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Zero(t, s.Dirty().Len())
}

func TestUpdateRemeshesBetweenTicks(t *testing.T) {
	meshes := NewMeshStore()
	s := newSim(t, testConfig(mesh.Greedy), meshes)
	pos := mgl32.Vec3{8, 8, 8}
	vp := fixedViewpoint(&pos)
	ctx := context.Background()

	frame, err := s.Update(ctx, 10*time.Millisecond, vp)
	require.NoError(t, err)
	assert.False(t, frame.Ticked)
	assert.Zero(t, s.Store().Len())

	frame, err = s.Update(ctx, 50*time.Millisecond, vp)
	require.NoError(t, err)
	assert.True(t, frame.Ticked)
	assert.Equal(t, 9, frame.Meshed)

	require.True(t, s.SetBlock(8, 6, 8, world.Stone))
	frame, err = s.Update(ctx, time.Millisecond, vp)
	require.NoError(t, err)
	assert.False(t, frame.Ticked)
	assert.Equal(t, 5, frame.Meshed)
}

func TestNewRejectsUnknownMesher(t *testing.T) {
	cfg := testConfig("marching")
	_, err := New(cfg, terrain.Flat{}, NewMeshStore())
	require.Error(t, err)
}
