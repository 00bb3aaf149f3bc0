package world

import "fmt"

// Block is the kind of a single voxel.
type Block uint8

const (
	Air Block = iota
	Grass
	Dirt
	Stone
)

var blockNames = [...]string{
	Air:   "air",
	Grass: "grass",
	Dirt:  "dirt",
	Stone: "stone",
}

// Blocks lists every known block kind in declaration order.
func Blocks() []Block {
	return []Block{Air, Grass, Dirt, Stone}
}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return fmt.Sprintf("block(%d)", uint8(b))
}

// IsAir reports whether the block is empty space. Air is never rendered and
// never occludes a neighbouring face.
func (b Block) IsAir() bool {
	return b == Air
}

// ParseBlock resolves a block name as used in configuration files.
func ParseBlock(name string) (Block, error) {
	for i, n := range blockNames {
		if n == name {
			return Block(i), nil
		}
	}
	return Air, fmt.Errorf("unknown block %q", name)
}

// Surface returns the kind a block is drawn as given whether the voxel above
// it is Air. Covered grass shows as dirt and exposed dirt grows grass.
func (b Block) Surface(aboveIsAir bool) Block {
	switch {
	case b == Grass && !aboveIsAir:
		return Dirt
	case b == Dirt && aboveIsAir:
		return Grass
	default:
		return b
	}
}
