package world

// DirtySet tracks chunks whose mesh must be rebuilt. Marks are idempotent and
// pending coordinates are returned in the order they were marked.
type DirtySet struct {
	marked map[ChunkCoord]uint64
	queue  []dirtyEntry
	seq    uint64
}

type dirtyEntry struct {
	coord ChunkCoord
	seq   uint64
}

func NewDirtySet() *DirtySet {
	return &DirtySet{
		marked: make(map[ChunkCoord]uint64),
	}
}

// Mark flags coord for remeshing.
func (d *DirtySet) Mark(coord ChunkCoord) {
	if _, exists := d.marked[coord]; exists {
		return
	}
	d.seq++
	d.marked[coord] = d.seq
	d.queue = append(d.queue, dirtyEntry{coord: coord, seq: d.seq})
}

// MarkNeighbors flags the six face-adjacent chunks of coord that are loaded.
func (d *DirtySet) MarkNeighbors(store *Store, coord ChunkCoord) {
	for _, n := range coord.Neighbors() {
		if store.Has(n) {
			d.Mark(n)
		}
	}
}

// Touch flags coord, if loaded, together with its loaded neighbours.
func (d *DirtySet) Touch(store *Store, coord ChunkCoord) {
	if store.Has(coord) {
		d.Mark(coord)
	}
	d.MarkNeighbors(store, coord)
}

func (d *DirtySet) Contains(coord ChunkCoord) bool {
	_, ok := d.marked[coord]
	return ok
}

// Clear removes the mark once the chunk's mesh has been attached.
func (d *DirtySet) Clear(coord ChunkCoord) {
	delete(d.marked, coord)
}

// Drop removes the mark of a chunk that is no longer loaded.
func (d *DirtySet) Drop(coord ChunkCoord) {
	d.Clear(coord)
}

// Pending returns the marked coordinates in mark order. Stale queue entries
// left behind by Clear are compacted away.
func (d *DirtySet) Pending() []ChunkCoord {
	live := d.queue[:0]
	for _, e := range d.queue {
		if seq, ok := d.marked[e.coord]; ok && seq == e.seq {
			live = append(live, e)
		}
	}
	clear(d.queue[len(live):])
	d.queue = live
	if len(d.queue) == 0 {
		d.queue = nil
		return nil
	}
	out := make([]ChunkCoord, len(d.queue))
	for i, e := range d.queue {
		out[i] = e.coord
	}
	return out
}

func (d *DirtySet) Len() int {
	return len(d.marked)
}
