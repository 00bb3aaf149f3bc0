package world

// Chunk is a loaded chunk owned by a Store.
type Chunk struct {
	Coord ChunkCoord
	Grid  *Grid

	// Modified is set once the chunk has been edited since it was loaded.
	// Only modified chunks are written to the save cache on eviction.
	Modified bool
}

func NewChunk(coord ChunkCoord, grid *Grid) *Chunk {
	return &Chunk{
		Coord: coord,
		Grid:  grid,
	}
}

// SetLocal edits a block and flags the chunk as modified. It reports false
// when the position lies outside the chunk or the block is unchanged.
func (c *Chunk) SetLocal(x, y, z int, b Block) bool {
	if !c.Grid.Dimensions().Contains(x, y, z) || c.Grid.Local(x, y, z) == b {
		return false
	}
	c.Grid.Set(x, y, z, b)
	c.Modified = true
	return true
}
