package world

import (
	"context"
	"sort"
)

// Generator describes terrain population for chunks. Implementations must be
// deterministic for a given coordinate.
type Generator interface {
	Generate(ctx context.Context, coord ChunkCoord, dim Dimensions) (*Grid, error)
}

// Store is the authoritative index of loaded chunks. It is owned by the
// simulation loop and is not safe for concurrent use.
type Store struct {
	dim    Dimensions
	chunks map[ChunkCoord]*Chunk
}

func NewStore(dim Dimensions) *Store {
	return &Store{
		dim:    dim,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

func (s *Store) Dimensions() Dimensions {
	return s.dim
}

func (s *Store) Get(coord ChunkCoord) (*Chunk, bool) {
	ch, ok := s.chunks[coord]
	return ch, ok
}

func (s *Store) Has(coord ChunkCoord) bool {
	_, ok := s.chunks[coord]
	return ok
}

// Insert adds the chunk, replacing any chunk already stored at its coordinate.
func (s *Store) Insert(ch *Chunk) {
	s.chunks[ch.Coord] = ch
}

// Remove deletes and returns the chunk at coord.
func (s *Store) Remove(coord ChunkCoord) (*Chunk, bool) {
	ch, ok := s.chunks[coord]
	if ok {
		delete(s.chunks, coord)
	}
	return ch, ok
}

func (s *Store) Len() int {
	return len(s.chunks)
}

// Coords returns the loaded coordinates in X, Y, Z order.
func (s *Store) Coords() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(s.chunks))
	for coord := range s.chunks {
		out = append(out, coord)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// BlockAt resolves a voxel given relative to the chunk at base. Positions
// may fall outside base; they are looked up in whichever chunk owns them.
// Voxels in chunks that are not loaded read as Air.
func (s *Store) BlockAt(base ChunkCoord, x, y, z int) Block {
	if s.dim.Contains(x, y, z) {
		if ch, ok := s.chunks[base]; ok {
			return ch.Grid.Local(x, y, z)
		}
		return Air
	}
	coord, lx, ly, lz := Locate(base, x, y, z, s.dim)
	ch, ok := s.chunks[coord]
	if !ok {
		return Air
	}
	return ch.Grid.Local(lx, ly, lz)
}
