package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"chunkstream/internal/atlas"
)

// Direction is one of the six axis-aligned face directions.
type Direction uint8

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Directions lists every face direction.
var Directions = [6]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

var directionNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

var directionOffsets = [6][3]int{
	PosX: {1, 0, 0},
	NegX: {-1, 0, 0},
	PosY: {0, 1, 0},
	NegY: {0, -1, 0},
	PosZ: {0, 0, 1},
	NegZ: {0, 0, -1},
}

func (d Direction) String() string {
	return directionNames[d]
}

// Offset is the unit step towards the neighbouring voxel.
func (d Direction) Offset() (int, int, int) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

func (d Direction) Normal() mgl32.Vec3 {
	o := directionOffsets[d]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Axis is 0, 1 or 2 for X, Y and Z.
func (d Direction) Axis() int {
	return int(d) / 2
}

// Positive reports whether the direction points along the positive axis.
func (d Direction) Positive() bool {
	return d%2 == 0
}

// FaceKind maps the direction to the tile slot it samples.
func (d Direction) FaceKind() atlas.FaceKind {
	switch d {
	case PosY:
		return atlas.Top
	case NegY:
		return atlas.Bottom
	default:
		return atlas.Side
	}
}

// directionFor returns the direction along axis with the given sign.
func directionFor(axis int, positive bool) Direction {
	d := Direction(axis * 2)
	if !positive {
		d++
	}
	return d
}
