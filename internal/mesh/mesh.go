// Package mesh turns chunk block grids into textured triangle surfaces.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"chunkstream/internal/atlas"
	"chunkstream/internal/world"
)

// ErrChunkNotLoaded is returned when asked to mesh a chunk missing from the store.
var ErrChunkNotLoaded = errors.New("chunk not loaded")

// quadIndices triangulates four emitted vertices.
var quadIndices = [6]uint32{0, 2, 1, 0, 3, 2}

// Mesh holds the triangle buffers for one chunk. Positions are local to the
// chunk; Origin places the chunk in the world.
type Mesh struct {
	Coord     world.ChunkCoord
	Origin    mgl32.Vec3
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func newMesh(coord world.ChunkCoord, dim world.Dimensions) *Mesh {
	return &Mesh{
		Coord:  coord,
		Origin: world.ChunkOrigin(coord, dim),
	}
}

func (m *Mesh) appendQuad(corners [4]mgl32.Vec3, normal mgl32.Vec3, rect atlas.UVRect, rot atlas.Rotation) {
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, corners[:]...)
	m.Normals = append(m.Normals, normal, normal, normal, normal)
	m.UVs = atlas.AppendUVs(m.UVs, rect, rot)
	for _, i := range quadIndices {
		m.Indices = append(m.Indices, base+i)
	}
}

// Quads is the number of emitted quads.
func (m *Mesh) Quads() int {
	return len(m.Positions) / 4
}

func (m *Mesh) Empty() bool {
	return len(m.Positions) == 0
}

// Area sums the surface area of every quad.
func (m *Mesh) Area() float32 {
	var total float32
	for q := 0; q+3 < len(m.Positions); q += 4 {
		p0 := m.Positions[q]
		e1 := m.Positions[q+1].Sub(p0)
		e2 := m.Positions[q+3].Sub(p0)
		total += e1.Cross(e2).Len()
	}
	return total
}

// Variant selects the meshing algorithm.
type Variant string

const (
	Naive  Variant = "naive"
	Greedy Variant = "greedy"
)

// ParseVariant validates a configured mesher name.
func ParseVariant(name string) (Variant, error) {
	switch Variant(name) {
	case Naive, Greedy:
		return Variant(name), nil
	default:
		return "", fmt.Errorf("unknown mesher %q", name)
	}
}

// Materials carries the atlas layout and tile assignments used for UVs.
type Materials struct {
	Atlas atlas.Atlas
	Tiles atlas.TileTable
}

func (m Materials) uv(b world.Block, d Direction) (atlas.UVRect, error) {
	tile, err := m.Tiles.Lookup(b, d.FaceKind())
	if err != nil {
		return atlas.UVRect{}, err
	}
	return m.Atlas.UV(tile), nil
}

// Build meshes the chunk at coord with the chosen variant.
func Build(v Variant, store *world.Store, coord world.ChunkCoord, mats Materials) (*Mesh, error) {
	switch v {
	case Naive:
		return BuildNaive(store, coord, mats)
	case Greedy:
		return BuildGreedy(store, coord, mats)
	default:
		return nil, fmt.Errorf("unknown mesher %q", v)
	}
}

// sampler reads voxels relative to one chunk, falling back to the store for
// positions owned by neighbouring chunks.
type sampler struct {
	store *world.Store
	coord world.ChunkCoord
	grid  *world.Grid
	dim   world.Dimensions
}

func newSampler(store *world.Store, coord world.ChunkCoord) (*sampler, error) {
	ch, ok := store.Get(coord)
	if !ok {
		return nil, fmt.Errorf("mesh chunk %v: %w", coord, ErrChunkNotLoaded)
	}
	return &sampler{
		store: store,
		coord: coord,
		grid:  ch.Grid,
		dim:   ch.Grid.Dimensions(),
	}, nil
}

func (s *sampler) at(x, y, z int) world.Block {
	if s.dim.Contains(x, y, z) {
		return s.grid.Local(x, y, z)
	}
	return s.store.BlockAt(s.coord, x, y, z)
}

// surface returns the kind a solid voxel is drawn as.
func (s *sampler) surface(x, y, z int, b world.Block) world.Block {
	return b.Surface(s.at(x, y+1, z).IsAir())
}
