// Package atlas maps block faces onto cells of a padded texture atlas.
package atlas

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Reference atlas geometry.
const (
	DefaultSize     = 1024
	DefaultTileSize = 16
	DefaultPadding  = 0.001

	// texelInset pulls every UV edge half a texel inward so sampling never
	// bleeds into the neighbouring cell.
	texelInset = 0.5
)

// Tile addresses an atlas cell by column and row.
type Tile struct {
	X uint32
	Y uint32
}

// Atlas describes the pixel layout of the texture atlas. Each cell holds a
// TileSize content square surrounded by Padding on every side.
type Atlas struct {
	Width    float32
	Height   float32
	TileSize float32
	Padding  float32
}

// Default returns the reference 1024x1024 atlas of 16px tiles.
func Default() Atlas {
	return Atlas{
		Width:    DefaultSize,
		Height:   DefaultSize,
		TileSize: DefaultTileSize,
		Padding:  DefaultPadding,
	}
}

// CellSize is the pixel pitch between neighbouring cells.
func (a Atlas) CellSize() float32 {
	return a.TileSize + 2*a.Padding
}

// UVRect is a normalized texture rectangle.
type UVRect struct {
	U0, V0 float32
	U1, V1 float32
}

// UV returns the inset content rectangle of tile in normalized coordinates.
func (a Atlas) UV(tile Tile) UVRect {
	cell := a.CellSize()
	x0 := float32(tile.X)*cell + a.Padding
	y0 := float32(tile.Y)*cell + a.Padding
	x1 := x0 + a.TileSize
	y1 := y0 + a.TileSize
	return UVRect{
		U0: (x0 + texelInset) / a.Width,
		V0: (y0 + texelInset) / a.Height,
		U1: (x1 - texelInset) / a.Width,
		V1: (y1 - texelInset) / a.Height,
	}
}

// Rotation selects which rect corner lands on the first quad vertex.
type Rotation uint8

const (
	R0 Rotation = iota
	R90
	R180
	R270
)

func (r Rotation) String() string {
	switch r {
	case R0:
		return "r0"
	case R90:
		return "r90"
	case R180:
		return "r180"
	case R270:
		return "r270"
	default:
		return "r?"
	}
}

// Corners returns the four UV coordinates for a quad, one per vertex in
// emission order.
func (r UVRect) Corners(rot Rotation) [4]mgl32.Vec2 {
	u0, v0, u1, v1 := r.U0, r.V0, r.U1, r.V1
	switch rot {
	case R90:
		return [4]mgl32.Vec2{{u0, v1}, {u0, v0}, {u1, v0}, {u1, v1}}
	case R180:
		return [4]mgl32.Vec2{{u1, v1}, {u0, v1}, {u0, v0}, {u1, v0}}
	case R270:
		return [4]mgl32.Vec2{{u1, v0}, {u1, v1}, {u0, v1}, {u0, v0}}
	default:
		return [4]mgl32.Vec2{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}
	}
}

// AppendUVs appends the rotated corners of rect to dst.
func AppendUVs(dst []mgl32.Vec2, rect UVRect, rot Rotation) []mgl32.Vec2 {
	c := rect.Corners(rot)
	return append(dst, c[0], c[1], c[2], c[3])
}
