package world

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// SaveCache keeps the block contents of modified chunks that were evicted so
// a later reload restores the edits instead of regenerating. Entries are held
// zstd-compressed in memory and never expire.
type SaveCache struct {
	dim     Dimensions
	entries map[ChunkCoord][]byte
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func NewSaveCache(dim Dimensions) (*SaveCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("save cache encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("save cache decoder: %w", err)
	}
	return &SaveCache{
		dim:     dim,
		entries: make(map[ChunkCoord][]byte),
		enc:     enc,
		dec:     dec,
	}, nil
}

// Save stores a snapshot of grid under coord, replacing any earlier entry.
func (c *SaveCache) Save(coord ChunkCoord, grid *Grid) error {
	if grid.Dimensions() != c.dim {
		return fmt.Errorf("save chunk %v: dimensions %v do not match cache %v", coord, grid.Dimensions(), c.dim)
	}
	raw := make([]byte, len(grid.blocks))
	for i, b := range grid.blocks {
		raw[i] = byte(b)
	}
	c.entries[coord] = c.enc.EncodeAll(raw, nil)
	return nil
}

// Load returns a fresh grid restored from the entry for coord.
func (c *SaveCache) Load(coord ChunkCoord) (*Grid, bool, error) {
	packed, ok := c.entries[coord]
	if !ok {
		return nil, false, nil
	}
	raw, err := c.dec.DecodeAll(packed, make([]byte, 0, c.dim.Volume()))
	if err != nil {
		return nil, false, fmt.Errorf("load chunk %v: %w", coord, err)
	}
	if len(raw) != c.dim.Volume() {
		return nil, false, fmt.Errorf("load chunk %v: got %d blocks, want %d", coord, len(raw), c.dim.Volume())
	}
	grid := NewGrid(c.dim)
	for i, v := range raw {
		grid.blocks[i] = Block(v)
	}
	return grid, true, nil
}

func (c *SaveCache) Has(coord ChunkCoord) bool {
	_, ok := c.entries[coord]
	return ok
}

func (c *SaveCache) Len() int {
	return len(c.entries)
}

// Close releases the codec resources.
func (c *SaveCache) Close() {
	c.enc.Close()
	c.dec.Close()
}
