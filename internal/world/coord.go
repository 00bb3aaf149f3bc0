package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk in chunk space.
type ChunkCoord struct {
	X int
	Y int
	Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add offsets the coordinate.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Less orders coordinates by X, then Y, then Z.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// Neighbors returns the six face-adjacent coordinates.
func (c ChunkCoord) Neighbors() [6]ChunkCoord {
	return [6]ChunkCoord{
		c.Add(1, 0, 0),
		c.Add(-1, 0, 0),
		c.Add(0, 1, 0),
		c.Add(0, -1, 0),
		c.Add(0, 0, 1),
		c.Add(0, 0, -1),
	}
}

// Dimensions defines the size of a chunk in blocks on each axis.
type Dimensions struct {
	X int
	Y int
	Z int
}

// DefaultDimensions is the reference 16x16x16 chunk.
var DefaultDimensions = Dimensions{X: 16, Y: 16, Z: 16}

// Volume is the number of voxels in a chunk.
func (d Dimensions) Volume() int {
	return d.X * d.Y * d.Z
}

// Axis returns the size along axis 0 (X), 1 (Y) or 2 (Z).
func (d Dimensions) Axis(a int) int {
	switch a {
	case 0:
		return d.X
	case 1:
		return d.Y
	default:
		return d.Z
	}
}

// Contains reports whether a local position lies inside the chunk.
func (d Dimensions) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < d.X && y < d.Y && z < d.Z
}

// ChunkOrigin is the world position of the chunk's minimum corner.
func ChunkOrigin(c ChunkCoord, dim Dimensions) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * dim.X),
		float32(c.Y * dim.Y),
		float32(c.Z * dim.Z),
	}
}

// WorldToChunk returns the chunk containing a world position.
func WorldToChunk(pos mgl32.Vec3, dim Dimensions) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(float64(pos.X()))), dim.X),
		Y: floorDiv(int(math.Floor(float64(pos.Y()))), dim.Y),
		Z: floorDiv(int(math.Floor(float64(pos.Z()))), dim.Z),
	}
}

// Locate resolves an integer voxel position expressed relative to base into
// the owning chunk and the local position inside it.
func Locate(base ChunkCoord, x, y, z int, dim Dimensions) (ChunkCoord, int, int, int) {
	wx := base.X*dim.X + x
	wy := base.Y*dim.Y + y
	wz := base.Z*dim.Z + z
	coord := ChunkCoord{
		X: floorDiv(wx, dim.X),
		Y: floorDiv(wy, dim.Y),
		Z: floorDiv(wz, dim.Z),
	}
	return coord, floorMod(wx, dim.X), floorMod(wy, dim.Y), floorMod(wz, dim.Z)
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

func floorMod(value, size int) int {
	if size <= 0 {
		return 0
	}
	return value - floorDiv(value, size)*size
}
