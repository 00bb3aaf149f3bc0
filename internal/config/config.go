package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chunkstream/internal/atlas"
	"chunkstream/internal/stream"
	"chunkstream/internal/world"
)

// Config captures everything needed to run the chunk streamer.
type Config struct {
	Stream  StreamConfig          `json:"stream" yaml:"stream"`
	Chunk   ChunkConfig           `json:"chunk" yaml:"chunk"`
	Atlas   AtlasConfig           `json:"atlas" yaml:"atlas"`
	Blocks  map[string]BlockTiles `json:"blocks" yaml:"blocks"`
	Mesher  string                `json:"mesher" yaml:"mesher"`
	Terrain TerrainConfig         `json:"terrain" yaml:"terrain"`
	Metrics MetricsConfig         `json:"metrics" yaml:"metrics"`
	Log     LogConfig             `json:"log" yaml:"log"`
	Preview PreviewConfig         `json:"preview" yaml:"preview"`
}

type StreamConfig struct {
	ViewRadius   int      `json:"view_radius" yaml:"view_radius"`
	UnloadRadius int      `json:"unload_radius" yaml:"unload_radius"`
	TickPeriod   Duration `json:"tick_period" yaml:"tick_period"`
	YMin         int      `json:"y_min" yaml:"y_min"`
	YMax         int      `json:"y_max" yaml:"y_max"`
	LoadBudget   int      `json:"load_budget" yaml:"load_budget"`
	// FramePeriod is the cadence at which frame deltas are fed to the streamer.
	FramePeriod Duration `json:"frame_period" yaml:"frame_period"`
}

type ChunkConfig struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

type AtlasConfig struct {
	Width    float32 `json:"width" yaml:"width"`
	Height   float32 `json:"height" yaml:"height"`
	TileSize float32 `json:"tile_size" yaml:"tile_size"`
	Padding  float32 `json:"padding" yaml:"padding"`
	Texture  string  `json:"texture" yaml:"texture"`
}

// BlockTiles assigns atlas cells, as [column, row], to the faces of a block.
type BlockTiles struct {
	All    *[2]uint32 `json:"all,omitempty" yaml:"all,omitempty"`
	Top    *[2]uint32 `json:"top,omitempty" yaml:"top,omitempty"`
	Bottom *[2]uint32 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Side   *[2]uint32 `json:"side,omitempty" yaml:"side,omitempty"`
}

type TerrainConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	Seed int64  `json:"seed" yaml:"seed"`
}

type MetricsConfig struct {
	ListenAddress string `json:"listen_address" yaml:"listen_address"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

type PreviewConfig struct {
	Directory string `json:"directory" yaml:"directory"`
}

// Load reads the configuration from path. YAML is used for .yaml and .yml
// files, JSON otherwise. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			ViewRadius:   4,
			UnloadRadius: 6,
			TickPeriod:   Duration(200 * time.Millisecond),
			YMin:         -1,
			YMax:         1,
			LoadBudget:   4,
			FramePeriod:  Duration(16 * time.Millisecond),
		},
		Chunk: ChunkConfig{X: 16, Y: 16, Z: 16},
		Atlas: AtlasConfig{
			Width:    atlas.DefaultSize,
			Height:   atlas.DefaultSize,
			TileSize: atlas.DefaultTileSize,
			Padding:  atlas.DefaultPadding,
			Texture:  "textures/atlas.png",
		},
		Blocks: map[string]BlockTiles{
			"grass": {Top: &[2]uint32{21, 5}, Bottom: &[2]uint32{17, 10}, Side: &[2]uint32{20, 6}},
			"dirt":  {All: &[2]uint32{17, 10}},
			"stone": {All: &[2]uint32{19, 6}},
		},
		Mesher:  "greedy",
		Terrain: TerrainConfig{Kind: "showcase", Seed: 1},
		Metrics: MetricsConfig{ListenAddress: ":9108"},
		Log:     LogConfig{Level: "info"},
	}
}

// Validate checks structural settings. Tile coverage is not checked here; a
// missing face surfaces when a chunk using it is meshed.
func (c *Config) Validate() error {
	if c.Stream.ViewRadius <= 0 {
		return errors.New("stream.view_radius must be positive")
	}
	if c.Stream.UnloadRadius < c.Stream.ViewRadius {
		return errors.New("stream.unload_radius must be >= stream.view_radius")
	}
	if c.Stream.TickPeriod <= 0 {
		return errors.New("stream.tick_period must be positive")
	}
	if c.Stream.YMin > c.Stream.YMax {
		return errors.New("stream.y_min must be <= stream.y_max")
	}
	if c.Stream.LoadBudget <= 0 {
		return errors.New("stream.load_budget must be positive")
	}
	if c.Stream.FramePeriod < 0 {
		return errors.New("stream.frame_period cannot be negative")
	}
	if c.Chunk.X <= 0 || c.Chunk.Y <= 0 || c.Chunk.Z <= 0 {
		return errors.New("chunk dimensions must be positive")
	}
	if c.Atlas.Width <= 0 || c.Atlas.Height <= 0 || c.Atlas.TileSize <= 0 {
		return errors.New("atlas dimensions must be positive")
	}
	if c.Atlas.Padding < 0 {
		return errors.New("atlas.padding cannot be negative")
	}
	if strings.TrimSpace(c.Atlas.Texture) == "" {
		return errors.New("atlas.texture must be set")
	}
	switch c.Mesher {
	case "naive", "greedy":
	default:
		return fmt.Errorf("mesher %q must be naive or greedy", c.Mesher)
	}
	switch c.Terrain.Kind {
	case "flat", "showcase", "hills":
	default:
		return fmt.Errorf("terrain.kind %q must be flat, showcase or hills", c.Terrain.Kind)
	}
	for _, name := range c.blockNames() {
		b, err := world.ParseBlock(name)
		if err != nil {
			return fmt.Errorf("blocks.%s: %w", name, err)
		}
		if b.IsAir() {
			return fmt.Errorf("blocks.%s: air is never drawn", name)
		}
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not recognised", c.Log.Level)
	}
	return nil
}

func (c *Config) blockNames() []string {
	names := make([]string, 0, len(c.Blocks))
	for name := range c.Blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StreamSettings converts the stream section.
func (c *Config) StreamSettings() stream.Config {
	return stream.Config{
		ViewRadius:   c.Stream.ViewRadius,
		UnloadRadius: c.Stream.UnloadRadius,
		TickPeriod:   c.Stream.TickPeriod.Duration(),
		YMin:         c.Stream.YMin,
		YMax:         c.Stream.YMax,
		LoadBudget:   c.Stream.LoadBudget,
	}
}

func (c *Config) Dimensions() world.Dimensions {
	return world.Dimensions{X: c.Chunk.X, Y: c.Chunk.Y, Z: c.Chunk.Z}
}

func (c *Config) AtlasLayout() atlas.Atlas {
	return atlas.Atlas{
		Width:    c.Atlas.Width,
		Height:   c.Atlas.Height,
		TileSize: c.Atlas.TileSize,
		Padding:  c.Atlas.Padding,
	}
}

// TileTable builds the block face lookup from the blocks section.
func (c *Config) TileTable() (atlas.TileTable, error) {
	table := make(atlas.TileTable, len(c.Blocks))
	for _, name := range c.blockNames() {
		b, err := world.ParseBlock(name)
		if err != nil {
			return nil, fmt.Errorf("blocks.%s: %w", name, err)
		}
		def := c.Blocks[name]
		table[b] = atlas.TileDef{
			All:    toTile(def.All),
			Top:    toTile(def.Top),
			Bottom: toTile(def.Bottom),
			Side:   toTile(def.Side),
		}
	}
	return table, nil
}

func toTile(cell *[2]uint32) *atlas.Tile {
	if cell == nil {
		return nil
	}
	return &atlas.Tile{X: cell[0], Y: cell[1]}
}
