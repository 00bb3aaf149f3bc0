package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"chunkstream/internal/atlas"
	"chunkstream/internal/world"
)

// sweepAxes is the order in which boundary planes are swept.
var sweepAxes = [3]int{2, 0, 1}

// planeAxes maps a sweep axis to the in-plane (u, v) axes.
var planeAxes = [3][2]int{
	0: {1, 2},
	1: {0, 2},
	2: {0, 1},
}

// greedyOrder picks which rectangle corner becomes each emitted vertex.
// Corners are c0=(u,v) c1=(u+w,v) c2=(u+w,v+h) c3=(u,v+h).
var greedyOrder = [6][4]int{
	PosX: {0, 3, 2, 1},
	NegX: {0, 1, 2, 3},
	PosY: {0, 1, 2, 3},
	NegY: {0, 3, 2, 1},
	PosZ: {0, 3, 2, 1},
	NegZ: {0, 1, 2, 3},
}

var greedyRotation = [6]atlas.Rotation{
	PosX: atlas.R180,
	NegX: atlas.R90,
	PosY: atlas.R90,
	NegY: atlas.R180,
	PosZ: atlas.R90,
	NegZ: atlas.R180,
}

// FaceID identifies a visible face for merging. Two mask cells merge only
// when their FaceIDs are equal; the zero value marks an empty cell.
type FaceID uint64

const faceVisible FaceID = 1 << 63

func newFaceID(d Direction, b world.Block, tile atlas.Tile) FaceID {
	return faceVisible |
		FaceID(d)<<56 |
		FaceID(b)<<48 |
		FaceID(tile.X&0xFFFFFF)<<24 |
		FaceID(tile.Y&0xFFFFFF)
}

func (f FaceID) Direction() Direction {
	return Direction((f >> 56) & 0x7)
}

func (f FaceID) Block() world.Block {
	return world.Block((f >> 48) & 0xFF)
}

func (f FaceID) Tile() atlas.Tile {
	return atlas.Tile{
		X: uint32((f >> 24) & 0xFFFFFF),
		Y: uint32(f & 0xFFFFFF),
	}
}

// BuildGreedy merges coplanar faces with the same FaceID into maximal
// rectangles, sweeping every boundary plane of the chunk along each axis.
// Faces on the chunk border are culled against loaded neighbours exactly as
// BuildNaive does.
func BuildGreedy(store *world.Store, coord world.ChunkCoord, mats Materials) (*Mesh, error) {
	s, err := newSampler(store, coord)
	if err != nil {
		return nil, err
	}
	m := newMesh(coord, s.dim)

	for _, axis := range sweepAxes {
		uAxis, vAxis := planeAxes[axis][0], planeAxes[axis][1]
		su, sv := s.dim.Axis(uAxis), s.dim.Axis(vAxis)
		size := s.dim.Axis(axis)
		mask := make([]FaceID, su*sv)

		for slice := 0; slice <= size; slice++ {
			if err := s.fillMask(mask, axis, slice, mats); err != nil {
				return nil, fmt.Errorf("mesh chunk %v: %w", coord, err)
			}
			for v := 0; v < sv; v++ {
				for u := 0; u < su; {
					id := mask[u+v*su]
					if id == 0 {
						u++
						continue
					}
					w := 1
					for u+w < su && mask[u+w+v*su] == id {
						w++
					}
					h := 1
				grow:
					for v+h < sv {
						row := (v + h) * su
						for k := 0; k < w; k++ {
							if mask[u+k+row] != id {
								break grow
							}
						}
						h++
					}
					for dv := 0; dv < h; dv++ {
						row := (v + dv) * su
						for k := 0; k < w; k++ {
							mask[u+k+row] = 0
						}
					}
					d := id.Direction()
					rect := mats.Atlas.UV(id.Tile())
					m.appendQuad(greedyQuad(d, axis, slice, u, v, w, h), d.Normal(), rect, greedyRotation[d])
					u += w
				}
			}
		}
	}
	return m, nil
}

// fillMask records the visible faces lying on the boundary plane between
// layer slice-1 and layer slice along axis. Only faces of voxels inside the
// chunk are recorded; voxels across the chunk border are read for culling.
func (s *sampler) fillMask(mask []FaceID, axis, slice int, mats Materials) error {
	uAxis, vAxis := planeAxes[axis][0], planeAxes[axis][1]
	su, sv := s.dim.Axis(uAxis), s.dim.Axis(vAxis)
	size := s.dim.Axis(axis)

	var pos [3]int
	for v := 0; v < sv; v++ {
		for u := 0; u < su; u++ {
			pos[uAxis], pos[vAxis] = u, v

			pos[axis] = slice - 1
			before := s.at(pos[0], pos[1], pos[2])
			beforePos := pos
			pos[axis] = slice
			after := s.at(pos[0], pos[1], pos[2])
			afterPos := pos

			var (
				b   world.Block
				p   [3]int
				dir Direction
			)
			switch {
			case slice > 0 && !before.IsAir() && after.IsAir():
				b, p, dir = before, beforePos, directionFor(axis, true)
			case slice < size && !after.IsAir() && before.IsAir():
				b, p, dir = after, afterPos, directionFor(axis, false)
			default:
				mask[u+v*su] = 0
				continue
			}

			kind := s.surface(p[0], p[1], p[2], b)
			tile, err := mats.Tiles.Lookup(kind, dir.FaceKind())
			if err != nil {
				return err
			}
			mask[u+v*su] = newFaceID(dir, kind, tile)
		}
	}
	return nil
}

func greedyQuad(d Direction, axis, slice, u, v, w, h int) [4]mgl32.Vec3 {
	uAxis, vAxis := planeAxes[axis][0], planeAxes[axis][1]
	rect := [4][2]int{
		{u, v},
		{u + w, v},
		{u + w, v + h},
		{u, v + h},
	}
	var out [4]mgl32.Vec3
	for i, c := range greedyOrder[d] {
		var p mgl32.Vec3
		p[axis] = float32(slice)
		p[uAxis] = float32(rect[c][0])
		p[vAxis] = float32(rect[c][1])
		out[i] = p
	}
	return out
}
