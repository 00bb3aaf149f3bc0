package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"chunkstream/internal/atlas"
	"chunkstream/internal/world"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "non positive view radius",
			mutate:  func(cfg *Config) { cfg.Stream.ViewRadius = 0 },
			wantErr: "stream.view_radius must be positive",
		},
		{
			name:    "unload radius below view radius",
			mutate:  func(cfg *Config) { cfg.Stream.UnloadRadius = cfg.Stream.ViewRadius - 1 },
			wantErr: "stream.unload_radius must be >= stream.view_radius",
		},
		{
			name:    "zero tick period",
			mutate:  func(cfg *Config) { cfg.Stream.TickPeriod = 0 },
			wantErr: "stream.tick_period must be positive",
		},
		{
			name:    "inverted y band",
			mutate:  func(cfg *Config) { cfg.Stream.YMin, cfg.Stream.YMax = 3, 2 },
			wantErr: "stream.y_min must be <= stream.y_max",
		},
		{
			name:    "zero load budget",
			mutate:  func(cfg *Config) { cfg.Stream.LoadBudget = 0 },
			wantErr: "stream.load_budget must be positive",
		},
		{
			name:    "non positive chunk dimensions",
			mutate:  func(cfg *Config) { cfg.Chunk.Y = 0 },
			wantErr: "chunk dimensions must be positive",
		},
		{
			name:    "non positive atlas",
			mutate:  func(cfg *Config) { cfg.Atlas.TileSize = 0 },
			wantErr: "atlas dimensions must be positive",
		},
		{
			name:    "negative padding",
			mutate:  func(cfg *Config) { cfg.Atlas.Padding = -1 },
			wantErr: "atlas.padding cannot be negative",
		},
		{
			name:    "missing atlas texture",
			mutate:  func(cfg *Config) { cfg.Atlas.Texture = " " },
			wantErr: "atlas.texture must be set",
		},
		{
			name:    "unknown mesher",
			mutate:  func(cfg *Config) { cfg.Mesher = "marching" },
			wantErr: `mesher "marching" must be naive or greedy`,
		},
		{
			name:    "unknown terrain",
			mutate:  func(cfg *Config) { cfg.Terrain.Kind = "caves" },
			wantErr: `terrain.kind "caves" must be flat, showcase or hills`,
		},
		{
			name:    "unknown block",
			mutate:  func(cfg *Config) { cfg.Blocks["lava"] = BlockTiles{} },
			wantErr: `blocks.lava: unknown block "lava"`,
		},
		{
			name:    "air block",
			mutate:  func(cfg *Config) { cfg.Blocks["air"] = BlockTiles{} },
			wantErr: "blocks.air: air is never drawn",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "loud" },
			wantErr: `log.level "loud" is not recognised`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error %q", tc.wantErr)
			}
			if err.Error() != tc.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateAllowsIncompleteTiles(t *testing.T) {
	cfg := Default()
	cfg.Blocks["grass"] = BlockTiles{Side: &[2]uint32{1, 1}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("missing faces are reported at mesh time, got %v", err)
	}
	table, err := cfg.TileTable()
	if err != nil {
		t.Fatalf("tile table: %v", err)
	}
	if _, err := table.Lookup(world.Grass, atlas.Top); !errors.Is(err, atlas.ErrMissingTile) {
		t.Fatalf("expected missing tile error, got %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults")
	}
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunkstream.json")
	payload := map[string]any{
		"stream": map[string]any{
			"view_radius":   2,
			"unload_radius": 3,
			"tick_period":   "150ms",
			"y_min":         0,
			"y_max":         2,
			"load_budget":   8,
		},
		"mesher": "naive",
		"blocks": map[string]any{
			"stone": map[string]any{"all": []int{3, 4}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Stream.TickPeriod.Duration() != 150*time.Millisecond {
		t.Fatalf("unexpected tick period %v", cfg.Stream.TickPeriod.Duration())
	}
	if cfg.Stream.FramePeriod.Duration() != 16*time.Millisecond {
		t.Fatalf("unset fields should keep defaults, got frame period %v", cfg.Stream.FramePeriod.Duration())
	}
	if cfg.Mesher != "naive" {
		t.Fatalf("unexpected mesher %q", cfg.Mesher)
	}
	if got := *cfg.Blocks["stone"].All; got != [2]uint32{3, 4} {
		t.Fatalf("unexpected stone tile %v", got)
	}
	if cfg.Blocks["grass"].Top == nil {
		t.Fatalf("default grass tiles should be kept")
	}
	sc := cfg.StreamSettings()
	if sc.ViewRadius != 2 || sc.UnloadRadius != 3 || sc.LoadBudget != 8 || sc.YMax != 2 {
		t.Fatalf("unexpected stream settings %+v", sc)
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("stream settings invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunkstream.yaml")
	doc := strings.Join([]string{
		"stream:",
		"  view_radius: 3",
		"  unload_radius: 5",
		"  tick_period: 250ms",
		"  y_min: -2",
		"  y_max: 0",
		"  load_budget: 6",
		"chunk: {x: 8, y: 8, z: 8}",
		"atlas:",
		"  width: 512",
		"  height: 256",
		"  tile_size: 16",
		"  padding: 8",
		"blocks:",
		"  grass:",
		"    top: [1, 2]",
		"    bottom: [3, 4]",
		"    side: [5, 6]",
		"terrain:",
		"  kind: hills",
		"  seed: 99",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Stream.TickPeriod.Duration() != 250*time.Millisecond {
		t.Fatalf("unexpected tick period %v", cfg.Stream.TickPeriod.Duration())
	}
	if cfg.Dimensions() != (world.Dimensions{X: 8, Y: 8, Z: 8}) {
		t.Fatalf("unexpected dimensions %v", cfg.Dimensions())
	}
	layout := cfg.AtlasLayout()
	if layout.Width != 512 || layout.Height != 256 || layout.Padding != 8 {
		t.Fatalf("unexpected atlas %+v", layout)
	}
	table, err := cfg.TileTable()
	if err != nil {
		t.Fatalf("tile table: %v", err)
	}
	tile, err := table.Lookup(world.Grass, atlas.Side)
	if err != nil || tile != (atlas.Tile{X: 5, Y: 6}) {
		t.Fatalf("unexpected grass side tile %v (%v)", tile, err)
	}
	if cfg.Terrain.Kind != "hills" || cfg.Terrain.Seed != 99 {
		t.Fatalf("unexpected terrain %+v", cfg.Terrain)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"stream":{"load_budget":0}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "stream.load_budget must be positive") {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadNullDurationKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config.yaml": "stream:\n  tick_period: ~\n",
		"config.json": `{"stream":{"tick_period":null}}`,
	}
	want := Default().Stream.TickPeriod.Duration()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if got := cfg.Stream.TickPeriod.Duration(); got != want {
			t.Fatalf("%s: tick period %v, want default %v", name, got, want)
		}
	}
}

func TestDurationDecoding(t *testing.T) {
	var holder struct {
		D Duration `json:"d" yaml:"d"`
	}
	cases := []struct {
		json string
		want time.Duration
	}{
		{`{"d":"1.5s"}`, 1500 * time.Millisecond},
		{`{"d":1000}`, 1000},
		{`{"d":null}`, 7},
		{`{"d":""}`, 0},
	}
	for _, tc := range cases {
		holder.D = 7
		if err := json.Unmarshal([]byte(tc.json), &holder); err != nil {
			t.Fatalf("json %s: %v", tc.json, err)
		}
		if holder.D.Duration() != tc.want {
			t.Fatalf("json %s: got %v want %v", tc.json, holder.D.Duration(), tc.want)
		}
	}

	for doc, want := range map[string]time.Duration{
		"d: 40ms": 40 * time.Millisecond,
		"d: 250":  250,
		"d: ~":    7,
	} {
		holder.D = 7
		if err := yaml.Unmarshal([]byte(doc), &holder); err != nil {
			t.Fatalf("yaml %q: %v", doc, err)
		}
		if holder.D.Duration() != want {
			t.Fatalf("yaml %q: got %v want %v", doc, holder.D.Duration(), want)
		}
	}

	if err := json.Unmarshal([]byte(`{"d":"soon"}`), &holder); err == nil {
		t.Fatalf("expected parse error")
	}

	out, err := json.Marshal(Duration(2 * time.Second))
	if err != nil || string(out) != `"2s"` {
		t.Fatalf("unexpected marshal %s (%v)", out, err)
	}
}
