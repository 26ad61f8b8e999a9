package ann

import "math"

// knnItem is one entry in a KnnQueue.
type knnItem[D Distance] struct {
	dist D
	obj  *Object
}

// KnnQueue is a bounded max-heap of size K holding the current k-best
// (distance, object) pairs seen during a search. The root always holds the
// largest distance currently retained once the queue is full, so Push can
// reject anything that can't possibly make the final top-k in O(log K).
//
// Implemented as a plain slice-backed binary heap rather than
// container/heap: container/heap's interface isn't generic-friendly, and a
// bounded push/pop-root queue only needs siftUp/siftDown, not arbitrary
// heap.Fix.
type KnnQueue[D Distance] struct {
	items []knnItem[D]
	k     int
}

// NewKnnQueue returns an empty queue that retains at most k items.
func NewKnnQueue[D Distance](k int) *KnnQueue[D] {
	if k < 1 {
		k = 1
	}
	return &KnnQueue[D]{items: make([]knnItem[D], 0, k), k: k}
}

// Len reports the number of items currently retained.
func (q *KnnQueue[D]) Len() int { return len(q.items) }

// Full reports whether the queue holds k items.
func (q *KnnQueue[D]) Full() bool { return len(q.items) >= q.k }

// TopDistance returns the largest retained distance, or +Inf when empty.
func (q *KnnQueue[D]) TopDistance() D {
	if len(q.items) == 0 {
		return D(math.Inf(1))
	}
	return q.items[0].dist
}

// Push offers (d, obj). If the queue has fewer than k items it is always
// retained; otherwise it replaces the current worst only if d is strictly
// smaller than the current worst, never on a tie.
func (q *KnnQueue[D]) Push(d D, obj *Object) {
	if len(q.items) < q.k {
		q.items = append(q.items, knnItem[D]{dist: d, obj: obj})
		q.siftUp(len(q.items) - 1)
		return
	}
	if d < q.items[0].dist {
		q.items[0] = knnItem[D]{dist: d, obj: obj}
		q.siftDown(0)
	}
}

// Pop removes and returns the current largest-distance item.
func (q *KnnQueue[D]) Pop() (D, *Object) {
	top := q.items[0]
	last := len(q.items) - 1
	q.items[0] = q.items[last]
	q.items = q.items[:last]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return top.dist, top.obj
}

// DrainSortedAscending empties the queue, returning its contents ordered
// by increasing distance.
func (q *KnnQueue[D]) DrainSortedAscending() []Result[D] {
	n := len(q.items)
	out := make([]Result[D], n)
	for i := n - 1; i >= 0; i-- {
		d, obj := q.Pop()
		out[i] = Result[D]{Distance: d, Object: obj}
	}
	return out
}

// Result pairs a query result's distance with its object.
type Result[D Distance] struct {
	Distance D
	Object   *Object
}

func (q *KnnQueue[D]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.items[parent].dist >= q.items[i].dist {
			break
		}
		q.items[parent], q.items[i] = q.items[i], q.items[parent]
		i = parent
	}
}

func (q *KnnQueue[D]) siftDown(i int) {
	n := len(q.items)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && q.items[left].dist > q.items[largest].dist {
			largest = left
		}
		if right < n && q.items[right].dist > q.items[largest].dist {
			largest = right
		}
		if largest == i {
			return
		}
		q.items[i], q.items[largest] = q.items[largest], q.items[i]
		i = largest
	}
}
