package main

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// walker is a scripted viewpoint moving at a constant velocity from start.
type walker struct {
	mu       sync.Mutex
	start    mgl32.Vec3
	velocity mgl32.Vec3
	began    time.Time
	now      func() time.Time
}

func newWalker(start, velocity mgl32.Vec3) *walker {
	return &walker{
		start:    start,
		velocity: velocity,
		began:    time.Now(),
		now:      time.Now,
	}
}

func (w *walker) Position() (mgl32.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	elapsed := float32(w.now().Sub(w.began).Seconds())
	return w.start.Add(w.velocity.Mul(elapsed)), true
}
