package world

// Grid is a dense block array for one chunk. Blocks are laid out with X
// varying fastest, then Y, then Z.
type Grid struct {
	dim    Dimensions
	blocks []Block
}

// NewGrid allocates an all-Air grid.
func NewGrid(dim Dimensions) *Grid {
	return &Grid{
		dim:    dim,
		blocks: make([]Block, dim.Volume()),
	}
}

// GridFromBlocks wraps a copy of blocks. The slice must hold exactly
// dim.Volume() entries.
func GridFromBlocks(dim Dimensions, blocks []Block) (*Grid, bool) {
	if len(blocks) != dim.Volume() {
		return nil, false
	}
	dup := make([]Block, len(blocks))
	copy(dup, blocks)
	return &Grid{dim: dim, blocks: dup}, true
}

func (g *Grid) Dimensions() Dimensions {
	return g.dim
}

func (g *Grid) index(x, y, z int) int {
	return x + g.dim.X*(y+g.dim.Y*z)
}

// Local returns the block at a local position, or Air outside the chunk.
func (g *Grid) Local(x, y, z int) Block {
	if !g.dim.Contains(x, y, z) {
		return Air
	}
	return g.blocks[g.index(x, y, z)]
}

// Set writes a block and reports whether the position was inside the chunk.
func (g *Grid) Set(x, y, z int, b Block) bool {
	if !g.dim.Contains(x, y, z) {
		return false
	}
	g.blocks[g.index(x, y, z)] = b
	return true
}

// Fill sets every voxel in the inclusive box to b, clamped to the chunk.
func (g *Grid) Fill(x0, y0, z0, x1, y1, z1 int, b Block) {
	for z := max(z0, 0); z <= min(z1, g.dim.Z-1); z++ {
		for y := max(y0, 0); y <= min(y1, g.dim.Y-1); y++ {
			for x := max(x0, 0); x <= min(x1, g.dim.X-1); x++ {
				g.blocks[g.index(x, y, z)] = b
			}
		}
	}
}

// Blocks returns a copy of the flat block array.
func (g *Grid) Blocks() []Block {
	dup := make([]Block, len(g.blocks))
	copy(dup, g.blocks)
	return dup
}

func (g *Grid) Clone() *Grid {
	return &Grid{dim: g.dim, blocks: g.Blocks()}
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.dim != o.dim {
		return false
	}
	for i := range g.blocks {
		if g.blocks[i] != o.blocks[i] {
			return false
		}
	}
	return true
}

// Solid counts the non-Air voxels.
func (g *Grid) Solid() int {
	n := 0
	for _, b := range g.blocks {
		if !b.IsAir() {
			n++
		}
	}
	return n
}
