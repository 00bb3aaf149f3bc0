package world

// BlockAppearance captures flat-colour styling for a block kind, used by
// debug previews that do not sample the texture atlas.
type BlockAppearance struct {
	Color string
}

// DefaultAppearances enumerates the built-in block visuals.
var DefaultAppearances = map[Block]BlockAppearance{
	Grass: {Color: "#5d9b3d"},
	Dirt:  {Color: "#8b5a2b"},
	Stone: {Color: "#7f7f7f"},
}

// Appearance returns the preset for b. Unknown kinds fall back to a neutral grey.
func Appearance(b Block) BlockAppearance {
	if preset, ok := DefaultAppearances[b]; ok {
		return preset
	}
	return BlockAppearance{Color: "#9a9a9a"}
}
