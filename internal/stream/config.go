package stream

import (
	"errors"
	"time"
)

// Config controls the streaming window around the viewpoint.
type Config struct {
	// ViewRadius is the Chebyshev radius, in chunks on X and Z, kept loaded.
	ViewRadius int
	// UnloadRadius is the eviction threshold; at least ViewRadius.
	UnloadRadius int
	TickPeriod   time.Duration
	YMin         int
	YMax         int
	// LoadBudget caps the load requests emitted per tick.
	LoadBudget int
}

func DefaultConfig() Config {
	return Config{
		ViewRadius:   4,
		UnloadRadius: 6,
		TickPeriod:   200 * time.Millisecond,
		YMin:         -1,
		YMax:         1,
		LoadBudget:   4,
	}
}

func (c Config) Validate() error {
	if c.ViewRadius <= 0 {
		return errors.New("view radius must be positive")
	}
	if c.UnloadRadius < c.ViewRadius {
		return errors.New("unload radius must be at least the view radius")
	}
	if c.TickPeriod <= 0 {
		return errors.New("tick period must be positive")
	}
	if c.YMin > c.YMax {
		return errors.New("y min must not exceed y max")
	}
	if c.LoadBudget <= 0 {
		return errors.New("load budget must be positive")
	}
	return nil
}

// verticalUnloadRadius is the Y eviction threshold.
func (c Config) verticalUnloadRadius() int {
	return max(c.UnloadRadius, 2)
}
