package sim

import (
	"sync"

	"chunkstream/internal/mesh"
	"chunkstream/internal/world"
)

// Presenter receives finished chunk meshes. Attach replaces any mesh already
// attached for the coordinate; Release drops it when the chunk is evicted.
type Presenter interface {
	Attach(coord world.ChunkCoord, m *mesh.Mesh) error
	Release(coord world.ChunkCoord)
}

// MeshStore is a Presenter that keeps the latest mesh per chunk in memory.
type MeshStore struct {
	mu     sync.RWMutex
	meshes map[world.ChunkCoord]*mesh.Mesh
}

func NewMeshStore() *MeshStore {
	return &MeshStore{
		meshes: make(map[world.ChunkCoord]*mesh.Mesh),
	}
}

func (s *MeshStore) Attach(coord world.ChunkCoord, m *mesh.Mesh) error {
	s.mu.Lock()
	s.meshes[coord] = m
	s.mu.Unlock()
	return nil
}

func (s *MeshStore) Release(coord world.ChunkCoord) {
	s.mu.Lock()
	delete(s.meshes, coord)
	s.mu.Unlock()
}

func (s *MeshStore) Mesh(coord world.ChunkCoord) (*mesh.Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[coord]
	return m, ok
}

func (s *MeshStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// Totals sums quads and triangles over every attached mesh.
func (s *MeshStore) Totals() (quads, triangles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meshes {
		quads += m.Quads()
		triangles += len(m.Indices) / 3
	}
	return quads, triangles
}
