package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkstream/internal/world"
)

func TestLoadQueueDeduplicatesAndDrainsFIFO(t *testing.T) {
	q := NewLoadQueue()
	coords := []world.ChunkCoord{{X: 1}, {X: 2}, {X: 3}}
	for _, c := range coords {
		require.True(t, q.Push(c))
	}
	assert.False(t, q.Push(world.ChunkCoord{X: 2}), "duplicate push must be ignored")
	assert.Equal(t, 3, q.Len())

	batch := q.Drain(2)
	assert.Equal(t, coords[:2], batch)
	assert.False(t, q.Contains(coords[0]))
	assert.True(t, q.Contains(coords[2]))

	// drained coordinates may be queued again
	assert.True(t, q.Push(coords[0]))
	batch = q.Drain(0)
	assert.Equal(t, []world.ChunkCoord{coords[2], coords[0]}, batch)
	assert.Nil(t, q.pending)
	assert.Nil(t, q.Drain(5))
}

func TestTimerFiresOnEdgeOnly(t *testing.T) {
	timer := NewTimer(100 * time.Millisecond)
	assert.False(t, timer.Advance(40*time.Millisecond))
	assert.False(t, timer.Advance(40*time.Millisecond))
	assert.True(t, timer.Advance(40*time.Millisecond))
	// 20ms carried over
	assert.False(t, timer.Advance(70*time.Millisecond))
	assert.True(t, timer.Advance(10*time.Millisecond))
	assert.True(t, timer.Advance(350*time.Millisecond))
	assert.False(t, timer.Advance(0))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default"},
		{name: "view radius", mutate: func(c *Config) { c.ViewRadius = 0 }, wantErr: "view radius must be positive"},
		{name: "hysteresis", mutate: func(c *Config) { c.UnloadRadius = c.ViewRadius - 1 }, wantErr: "unload radius must be at least the view radius"},
		{name: "tick period", mutate: func(c *Config) { c.TickPeriod = 0 }, wantErr: "tick period must be positive"},
		{name: "y band", mutate: func(c *Config) { c.YMin, c.YMax = 2, 1 }, wantErr: "y min must not exceed y max"},
		{name: "budget", mutate: func(c *Config) { c.LoadBudget = 0 }, wantErr: "load budget must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}
