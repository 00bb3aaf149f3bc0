// Package preview renders flat-shaded isometric PNGs of chunk grids for
// debugging streaming and meshing without a GPU.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"chunkstream/internal/world"
)

const (
	tileWidth    = 32
	tileHeight   = 16
	blockHeight  = 16
	ambientLight = 0.2
)

var background = color.NRGBA{R: 10, G: 10, B: 18, A: 255}

type voxel struct {
	x, y, z int
	block   world.Block
	screenX int
	screenY int
}

// Render draws every visible voxel of grid. Voxels fully enclosed inside the
// grid are skipped.
func Render(grid *world.Grid) (*image.NRGBA, error) {
	dim := grid.Dimensions()
	if dim.X <= 0 || dim.Y <= 0 || dim.Z <= 0 {
		return nil, fmt.Errorf("invalid chunk dimensions: %+v", dim)
	}

	width := (dim.X+dim.Z)*tileWidth/2 + tileWidth
	height := (dim.X+dim.Z)*tileHeight/2 + dim.Y*blockHeight + tileHeight
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	voxels := collectVoxels(grid)
	sort.Slice(voxels, func(i, j int) bool {
		vi, vj := voxels[i], voxels[j]
		if vi.screenY != vj.screenY {
			return vi.screenY < vj.screenY
		}
		if vi.y != vj.y {
			return vi.y < vj.y
		}
		return vi.screenX < vj.screenX
	})

	offsetX := dim.Z*tileWidth/2 + tileWidth/2
	offsetY := dim.Y * blockHeight
	for _, v := range voxels {
		drawVoxel(img, offsetX+v.screenX, offsetY+v.screenY, v.block)
	}
	return img, nil
}

// Save renders grid into dir as chunk_<x>_<y>_<z>.png and returns the path.
func Save(grid *world.Grid, coord world.ChunkCoord, dir string) (string, error) {
	img, err := Render(grid)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("chunk_%d_%d_%d.png", coord.X, coord.Y, coord.Z))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func collectVoxels(grid *world.Grid) []voxel {
	dim := grid.Dimensions()
	out := make([]voxel, 0, max(16, dim.Volume()/4))
	for z := 0; z < dim.Z; z++ {
		for y := 0; y < dim.Y; y++ {
			for x := 0; x < dim.X; x++ {
				b := grid.Local(x, y, z)
				if b.IsAir() || enclosed(grid, x, y, z) {
					continue
				}
				out = append(out, voxel{
					x: x, y: y, z: z,
					block:   b.Surface(grid.Local(x, y+1, z).IsAir()),
					screenX: (x - z) * tileWidth / 2,
					screenY: (x+z)*tileHeight/2 - y*blockHeight,
				})
			}
		}
	}
	return out
}

// enclosed reports whether the three camera-facing neighbours are solid.
func enclosed(grid *world.Grid, x, y, z int) bool {
	dim := grid.Dimensions()
	if x+1 >= dim.X || y+1 >= dim.Y || z+1 >= dim.Z {
		return false
	}
	return !grid.Local(x+1, y, z).IsAir() &&
		!grid.Local(x, y+1, z).IsAir() &&
		!grid.Local(x, y, z+1).IsAir()
}

func drawVoxel(img *image.NRGBA, baseX, baseY int, b world.Block) {
	base := blockColor(b)
	topColor := shade(base, ambientLight+0.4)
	leftColor := shade(base, ambientLight+0.25)
	rightColor := shade(base, ambientLight+0.15)

	topY := baseY - blockHeight
	top := []image.Point{
		{X: baseX, Y: topY},
		{X: baseX + tileWidth/2, Y: topY + tileHeight/2},
		{X: baseX, Y: topY + tileHeight},
		{X: baseX - tileWidth/2, Y: topY + tileHeight/2},
	}
	left := []image.Point{
		{X: baseX - tileWidth/2, Y: topY + tileHeight/2},
		{X: baseX, Y: topY + tileHeight},
		{X: baseX, Y: baseY + tileHeight},
		{X: baseX - tileWidth/2, Y: baseY + tileHeight/2},
	}
	right := []image.Point{
		{X: baseX + tileWidth/2, Y: topY + tileHeight/2},
		{X: baseX, Y: topY + tileHeight},
		{X: baseX, Y: baseY + tileHeight},
		{X: baseX + tileWidth/2, Y: baseY + tileHeight/2},
	}
	fillPolygon(img, left, leftColor)
	fillPolygon(img, right, rightColor)
	fillPolygon(img, top, topColor)
}

func blockColor(b world.Block) color.NRGBA {
	if col, ok := parseHexColor(world.Appearance(b).Color); ok {
		return col
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func shade(base color.NRGBA, factor float64) color.NRGBA {
	factor = math.Max(0, math.Min(1, factor))
	return color.NRGBA{
		R: uint8(math.Round(float64(base.R) * factor)),
		G: uint8(math.Round(float64(base.G) * factor)),
		B: uint8(math.Round(float64(base.B) * factor)),
		A: 255,
	}
}

// fillPolygon scanline-fills a convex polygon clipped to the image.
func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	bounds := img.Bounds()
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	minY = max(minY, bounds.Min.Y)
	maxY = min(maxY, bounds.Max.Y-1)

	xs := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if a.Y == b.Y || y < min(a.Y, b.Y) || y >= max(a.Y, b.Y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := max(xs[i], bounds.Min.X)
			x1 := min(xs[i+1], bounds.Max.X-1)
			for x := x0; x <= x1; x++ {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}
