// Package terrain provides placeholder chunk generators.
package terrain

import (
	"context"
	"fmt"

	"chunkstream/internal/world"
)

// Flat fills the bottom Depth layers of chunk row y == 0 with dirt capped by
// a grass layer. Every other chunk is empty.
type Flat struct {
	// Depth is the number of solid voxel layers, clamped to the chunk height.
	// Zero or less fills the whole chunk.
	Depth int
}

func (g Flat) Generate(ctx context.Context, coord world.ChunkCoord, dim world.Dimensions) (*world.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	grid := world.NewGrid(dim)
	if coord.Y != 0 {
		return grid, nil
	}
	depth := dim.Y
	if g.Depth > 0 {
		depth = clampInt(g.Depth, 1, dim.Y)
	}
	grid.Fill(0, 0, 0, dim.X-1, depth-2, dim.Z-1, world.Dirt)
	grid.Fill(0, depth-1, 0, dim.X-1, depth-1, dim.Z-1, world.Grass)
	return grid, nil
}

// Showcase is a grass floor with a short pillar in the middle of every
// y == 0 chunk. It exercises side faces and the covered-grass transform.
type Showcase struct {
	PillarHeight int
}

func (g Showcase) Generate(ctx context.Context, coord world.ChunkCoord, dim world.Dimensions) (*world.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	grid := world.NewGrid(dim)
	if coord.Y != 0 {
		return grid, nil
	}
	grid.Fill(0, 0, 0, dim.X-1, 0, dim.Z-1, world.Grass)
	cx, cz := dim.X/2, dim.Z/2
	top := clampInt(g.PillarHeight, 0, dim.Y-1)
	grid.Fill(cx, 1, cz, cx, top, cz, world.Grass)
	return grid, nil
}

// New returns the generator registered under kind.
func New(kind string, seed int64) (world.Generator, error) {
	switch kind {
	case "flat":
		return Flat{}, nil
	case "showcase":
		return Showcase{PillarHeight: 4}, nil
	case "hills":
		return NewHills(seed), nil
	default:
		return nil, fmt.Errorf("unknown terrain %q", kind)
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
