package atlas

import (
	"errors"
	"fmt"

	"chunkstream/internal/world"
)

// ErrMissingTile is returned when a block or one of its faces has no tile
// assigned. It is a configuration error.
var ErrMissingTile = errors.New("missing tile mapping")

// FaceKind groups the six face directions by how tiles are assigned.
type FaceKind uint8

const (
	Top FaceKind = iota
	Bottom
	Side
)

func (k FaceKind) String() string {
	switch k {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "side"
	}
}

// TileDef assigns tiles to the faces of one block kind. All, when set, wins
// over the per-face entries.
type TileDef struct {
	All    *Tile
	Top    *Tile
	Bottom *Tile
	Side   *Tile
}

func (d TileDef) face(kind FaceKind) *Tile {
	if d.All != nil {
		return d.All
	}
	switch kind {
	case Top:
		return d.Top
	case Bottom:
		return d.Bottom
	default:
		return d.Side
	}
}

// TileTable resolves block faces to atlas tiles.
type TileTable map[world.Block]TileDef

// Lookup returns the tile for a block face. Missing entries are reported
// lazily so a table only needs to cover the blocks actually drawn.
func (t TileTable) Lookup(b world.Block, kind FaceKind) (Tile, error) {
	def, ok := t[b]
	if !ok {
		return Tile{}, fmt.Errorf("block %s: %w", b, ErrMissingTile)
	}
	tile := def.face(kind)
	if tile == nil {
		return Tile{}, fmt.Errorf("block %s face %s: %w", b, kind, ErrMissingTile)
	}
	return *tile, nil
}

// DefaultTiles is the reference mapping for the built-in blocks.
func DefaultTiles() TileTable {
	grassTop := Tile{X: 21, Y: 5}
	grassSide := Tile{X: 20, Y: 6}
	dirt := Tile{X: 17, Y: 10}
	stone := Tile{X: 19, Y: 6}
	return TileTable{
		world.Grass: {Top: &grassTop, Bottom: &dirt, Side: &grassSide},
		world.Dirt:  {All: &dirt},
		world.Stone: {All: &stone},
	}
}
