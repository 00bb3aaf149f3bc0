package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"chunkstream/internal/atlas"
	"chunkstream/internal/world"
)

// naiveCorners holds the unit-cube corner offsets of each face, ordered so
// that quadIndices winds counter-clockwise seen from outside.
var naiveCorners = [6][4][3]float32{
	PosX: {{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}},
	NegX: {{0, 0, 1}, {0, 0, 0}, {0, 1, 0}, {0, 1, 1}},
	PosY: {{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
	NegY: {{0, 0, 1}, {1, 0, 1}, {1, 0, 0}, {0, 0, 0}},
	PosZ: {{1, 0, 1}, {0, 0, 1}, {0, 1, 1}, {1, 1, 1}},
	NegZ: {{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
}

var naiveRotation = [6]atlas.Rotation{
	PosX: atlas.R180,
	NegX: atlas.R180,
	PosY: atlas.R0,
	NegY: atlas.R0,
	PosZ: atlas.R180,
	NegZ: atlas.R180,
}

// BuildNaive emits one unit quad for every solid voxel face whose neighbour
// is Air. Neighbours in unloaded chunks count as Air.
func BuildNaive(store *world.Store, coord world.ChunkCoord, mats Materials) (*Mesh, error) {
	s, err := newSampler(store, coord)
	if err != nil {
		return nil, err
	}
	m := newMesh(coord, s.dim)

	for z := 0; z < s.dim.Z; z++ {
		for y := 0; y < s.dim.Y; y++ {
			for x := 0; x < s.dim.X; x++ {
				b := s.grid.Local(x, y, z)
				if b.IsAir() {
					continue
				}
				kind := s.surface(x, y, z, b)
				for _, d := range Directions {
					dx, dy, dz := d.Offset()
					if !s.at(x+dx, y+dy, z+dz).IsAir() {
						continue
					}
					rect, err := mats.uv(kind, d)
					if err != nil {
						return nil, fmt.Errorf("mesh chunk %v: %w", coord, err)
					}
					m.appendQuad(naiveQuad(d, x, y, z), d.Normal(), rect, naiveRotation[d])
				}
			}
		}
	}
	return m, nil
}

func naiveQuad(d Direction, x, y, z int) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	base := mgl32.Vec3{float32(x), float32(y), float32(z)}
	for i, c := range naiveCorners[d] {
		out[i] = base.Add(mgl32.Vec3{c[0], c[1], c[2]})
	}
	return out
}
