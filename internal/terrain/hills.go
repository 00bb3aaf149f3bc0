package terrain

import (
	"context"
	"math"

	"chunkstream/internal/world"
)

// Hills produces repeatable rolling ground from hashed value noise. Columns
// are stone at depth, dirt near the surface and grass on top.
type Hills struct {
	Seed      int64
	BaseLevel int
	Amplitude float64
	Frequency float64
	Octaves   int
}

func NewHills(seed int64) Hills {
	return Hills{
		Seed:      seed,
		BaseLevel: 6,
		Amplitude: 8,
		Frequency: 0.03,
		Octaves:   3,
	}
}

func (g Hills) Generate(ctx context.Context, coord world.ChunkCoord, dim world.Dimensions) (*world.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	grid := world.NewGrid(dim)
	baseY := coord.Y * dim.Y
	for z := 0; z < dim.Z; z++ {
		for x := 0; x < dim.X; x++ {
			wx := coord.X*dim.X + x
			wz := coord.Z*dim.Z + z
			surface := g.surfaceHeight(wx, wz)
			for y := 0; y < dim.Y; y++ {
				wy := baseY + y
				switch {
				case wy > surface:
				case wy == surface:
					grid.Set(x, y, z, world.Grass)
				case wy >= surface-3:
					grid.Set(x, y, z, world.Dirt)
				default:
					grid.Set(x, y, z, world.Stone)
				}
			}
		}
	}
	return grid, nil
}

func (g Hills) surfaceHeight(wx, wz int) int {
	n := g.fractalNoise(float64(wx), float64(wz))
	return g.BaseLevel + int(math.Round(n*g.Amplitude))
}

func (g Hills) fractalNoise(x, y float64) float64 {
	frequency := g.Frequency
	amplitude := 1.0
	sum := 0.0
	total := 0.0
	for i := 0; i < g.Octaves; i++ {
		sum += g.valueNoise(x*frequency, y*frequency) * amplitude
		total += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

func (g Hills) valueNoise(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	ix0 := lerp(random2D(x0, y0, g.Seed), random2D(x0+1, y0, g.Seed), sx)
	ix1 := lerp(random2D(x0, y0+1, g.Seed), random2D(x0+1, y0+1, g.Seed), sx)
	return lerp(ix0, ix1, sy)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}
