package hnsw

import "github.com/liliang-cn/hnswgo/pkg/ann"

// candidate pairs a graph-internal node id with its distance to the object
// currently being inserted or searched for. Kept separate from
// ann.KnnQueue[D], which keys on *ann.Object identity rather than the
// internal-id graph representation the build and search hot paths use.
type candidate[D ann.Distance] struct {
	dist D
	id   uint32
}

// maxHeap is a bounded-or-unbounded binary max-heap of candidates, used to
// hold the current top-ef (or top-M) set during a beam search or neighbor
// selection: the root is always the worst (largest-distance) candidate.
type maxHeap[D ann.Distance] struct {
	items []candidate[D]
}

func (h *maxHeap[D]) Len() int { return len(h.items) }

func (h *maxHeap[D]) Peek() candidate[D] { return h.items[0] }

func (h *maxHeap[D]) Push(c candidate[D]) {
	h.items = append(h.items, c)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].dist >= h.items[i].dist {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *maxHeap[D]) Pop() candidate[D] {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	h.siftDown(0)
	return top
}

func (h *maxHeap[D]) siftDown(i int) {
	n := len(h.items)
	for {
		l, r, largest := 2*i+1, 2*i+2, i
		if l < n && h.items[l].dist > h.items[largest].dist {
			largest = l
		}
		if r < n && h.items[r].dist > h.items[largest].dist {
			largest = r
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}

// sortedAscending drains the heap into an ascending-distance slice.
func (h *maxHeap[D]) sortedAscending() []candidate[D] {
	out := make([]candidate[D], len(h.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = h.Pop()
	}
	return out
}

// minHeap is the companion unexplored-candidate frontier for a beam search:
// root is always the smallest-distance (most promising) candidate.
type minHeap[D ann.Distance] struct {
	items []candidate[D]
}

func (h *minHeap[D]) Len() int { return len(h.items) }

func (h *minHeap[D]) Push(c candidate[D]) {
	h.items = append(h.items, c)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].dist <= h.items[i].dist {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *minHeap[D]) Pop() candidate[D] {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	h.siftDown(0)
	return top
}

func (h *minHeap[D]) siftDown(i int) {
	n := len(h.items)
	for {
		l, r, smallest := 2*i+1, 2*i+2, i
		if l < n && h.items[l].dist < h.items[smallest].dist {
			smallest = l
		}
		if r < n && h.items[r].dist < h.items[smallest].dist {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
