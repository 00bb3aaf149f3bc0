package stream

import "chunkstream/internal/world"

// LoadQueue is a deduplicating FIFO of chunk coordinates awaiting a load.
// A coordinate sits in the FIFO at most once while it is in the set.
type LoadQueue struct {
	queued  map[world.ChunkCoord]struct{}
	pending []world.ChunkCoord
}

func NewLoadQueue() *LoadQueue {
	return &LoadQueue{
		queued: make(map[world.ChunkCoord]struct{}),
	}
}

// Push enqueues coord and reports whether it was newly added.
func (q *LoadQueue) Push(coord world.ChunkCoord) bool {
	if _, exists := q.queued[coord]; exists {
		return false
	}
	q.queued[coord] = struct{}{}
	q.pending = append(q.pending, coord)
	return true
}

// Drain removes up to max coordinates in FIFO order. max <= 0 drains all.
func (q *LoadQueue) Drain(max int) []world.ChunkCoord {
	if len(q.pending) == 0 {
		return nil
	}
	n := len(q.pending)
	if max > 0 && max < n {
		n = max
	}
	batch := append([]world.ChunkCoord(nil), q.pending[:n]...)
	for _, coord := range batch {
		delete(q.queued, coord)
	}
	if n == len(q.pending) {
		q.pending = nil
	} else {
		q.pending = q.pending[n:]
	}
	return batch
}

func (q *LoadQueue) Contains(coord world.ChunkCoord) bool {
	_, ok := q.queued[coord]
	return ok
}

func (q *LoadQueue) Len() int {
	return len(q.pending)
}
