package ann

import "sync"

// VisitedList is a reusable visited-bitmap. A node id i counts as visited in
// the current acquisition iff marks[i] == version. Acquiring a fresh list
// from the pool bumps version instead of re-zeroing marks, so most
// acquisitions are O(1); marks is only cleared when version wraps past 255.
type VisitedList struct {
	version uint8
	marks   []uint8
}

// Visited reports whether id has been marked in this acquisition.
func (v *VisitedList) Visited(id uint32) bool {
	return int(id) < len(v.marks) && v.marks[id] == v.version
}

// Visit marks id as visited in this acquisition.
func (v *VisitedList) Visit(id uint32) {
	if int(id) < len(v.marks) {
		v.marks[id] = v.version
	}
}

func (v *VisitedList) reset(numElements int) {
	if len(v.marks) < numElements {
		v.marks = make([]uint8, numElements)
		v.version = 0
	}
	v.version++
	if v.version == 0 {
		for i := range v.marks {
			v.marks[i] = 0
		}
		v.version = 1
	}
}

// VisitedPool is a pool of VisitedLists shared across concurrent searches
// and insertions, serialized by a single mutex. Acquire/Release are the
// only contention points on the read path.
type VisitedPool struct {
	mu   sync.Mutex
	free []*VisitedList
}

// NewVisitedPool returns an empty pool; lists are allocated lazily on first
// Acquire and sized to numElements (or grown on a later Acquire if the
// index has since grown).
func NewVisitedPool() *VisitedPool {
	return &VisitedPool{}
}

// Acquire returns a VisitedList exclusively owned by the caller until
// Release, sized for at least numElements nodes and with a freshly bumped
// version.
func (p *VisitedPool) Acquire(numElements int) *VisitedList {
	p.mu.Lock()
	var v *VisitedList
	if n := len(p.free); n > 0 {
		v = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		v = &VisitedList{}
	}
	p.mu.Unlock()

	v.reset(numElements)
	return v
}

// Release returns v to the pool for reuse.
func (p *VisitedPool) Release(v *VisitedList) {
	p.mu.Lock()
	p.free = append(p.free, v)
	p.mu.Unlock()
}
