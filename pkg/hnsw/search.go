package hnsw

import (
	"context"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// greedyDescend repeatedly moves to the best-improving neighbor of best at
// layer until no neighbor is closer to target, i.e. a local minimum.
func (idx *HnswIndex[D]) greedyDescend(best uint32, bestDist D, target *ann.Object, layer int) (uint32, D) {
	for {
		n := idx.nodeByID(best)
		improved := false
		for _, nbID := range n.neighborsAt(layer) {
			nbObj := idx.nodeByID(nbID).object
			d := idx.space.Distance(nbObj, target)
			if d < bestDist {
				best, bestDist = nbID, d
				improved = true
			}
		}
		if !improved {
			return best, bestDist
		}
	}
}

// searchLayer runs a best-first beam search of width ef at layer, starting
// from entry, and returns the surviving candidates in no particular order
// (callers that need ascending order sort the slice themselves). This is the
// "Old" bookkeeping: a min-heap frontier of unexplored nodes and a max-heap
// of the current top-ef.
func (idx *HnswIndex[D]) searchLayer(entry uint32, entryDist D, target *ann.Object, ef, layer int, useProxy bool) []candidate[D] {
	vl := idx.visited.Acquire(idx.nodeCount())
	defer idx.visited.Release(vl)

	frontier := &minHeap[D]{}
	top := &maxHeap[D]{}

	vl.Visit(entry)
	frontier.Push(candidate[D]{id: entry, dist: entryDist})
	top.Push(candidate[D]{id: entry, dist: entryDist})

	for frontier.Len() > 0 {
		c := frontier.Pop()
		if top.Len() >= ef && c.dist > top.Peek().dist {
			break
		}
		n := idx.nodeByID(c.id)
		for _, nbID := range n.neighborsAt(layer) {
			if vl.Visited(nbID) {
				continue
			}
			vl.Visit(nbID)
			nbObj := idx.nodeByID(nbID).object
			d := idx.scoreDistance(nbObj, target, useProxy)
			if top.Len() < ef || d < top.Peek().dist {
				frontier.Push(candidate[D]{id: nbID, dist: d})
				top.Push(candidate[D]{id: nbID, dist: d})
				if top.Len() > ef {
					top.Pop()
				}
			}
		}
	}
	return top.items
}

// searchLayerV1Merge follows searchLayer but ends the traversal once the
// beam is full and the next frontier candidate is at or beyond the worst
// top-ef distance (searchLayer stops only when it is strictly beyond it).
// On stopping it drains the rest of the frontier in one pass and pushes into
// top only candidates strictly closer than the worst top-ef distance; since
// the frontier pops in ascending order, none of them is. The one behavioral
// difference between the two variants is therefore that a candidate sitting
// exactly on the boundary is not expanded here.
func (idx *HnswIndex[D]) searchLayerV1Merge(entry uint32, entryDist D, target *ann.Object, ef, layer int) []candidate[D] {
	vl := idx.visited.Acquire(idx.nodeCount())
	defer idx.visited.Release(vl)

	frontier := &minHeap[D]{}
	top := &maxHeap[D]{}

	vl.Visit(entry)
	frontier.Push(candidate[D]{id: entry, dist: entryDist})
	top.Push(candidate[D]{id: entry, dist: entryDist})

	for frontier.Len() > 0 {
		c := frontier.Pop()
		if top.Len() >= ef && c.dist >= top.Peek().dist {
			// Saturated: merge every remaining frontier candidate that is
			// still within bound directly into top without expanding them.
			var remaining []candidate[D]
			for frontier.Len() > 0 {
				remaining = append(remaining, frontier.Pop())
			}
			for _, r := range remaining {
				if r.dist < top.Peek().dist {
					top.Push(r)
					top.Pop()
				}
			}
			break
		}
		n := idx.nodeByID(c.id)
		for _, nbID := range n.neighborsAt(layer) {
			if vl.Visited(nbID) {
				continue
			}
			vl.Visit(nbID)
			nbObj := idx.nodeByID(nbID).object
			d := idx.space.Distance(nbObj, target)
			if top.Len() < ef || d < top.Peek().dist {
				frontier.Push(candidate[D]{id: nbID, dist: d})
				top.Push(candidate[D]{id: nbID, dist: d})
				if top.Len() > ef {
					top.Pop()
				}
			}
		}
	}
	return top.items
}

func (idx *HnswIndex[D]) scoreDistance(a, b *ann.Object, useProxy bool) D {
	if useProxy {
		if d, ok := idx.space.ProxyDistance(a, b); ok {
			return d
		}
	}
	return idx.space.Distance(a, b)
}

// SearchKNN returns the k objects nearest query, ascending by distance.
// Returns ann.NotInitialized if called before any Build/Load/LoadText has
// completed. A built index with zero live objects is not an error: it
// returns an empty result slice.
func (idx *HnswIndex[D]) SearchKNN(ctx context.Context, query *ann.Object, k int) ([]ann.Result[D], error) {
	idx.entryMu.Lock()
	built, hasEntry, entryPoint, topLevel := idx.built, idx.hasEntry, idx.entryPoint, idx.topLevel
	idx.entryMu.Unlock()

	if !built {
		return nil, ann.Wrap("search_knn", ann.NotInitialized, errNotBuilt)
	}
	if !hasEntry {
		return ann.NewKnnQueue[D](k).DrainSortedAscending(), nil
	}

	entryObj := idx.nodeByID(entryPoint).object
	best := entryPoint
	bestDist := idx.space.Distance(entryObj, query)

	for l := topLevel; l >= 1; l-- {
		best, bestDist = idx.greedyDescend(best, bestDist, query, l)
	}

	ef := idx.queryEf
	if ef < k {
		ef = k
	}

	var beam []candidate[D]
	if idx.queryMethod == SearchV1Merge {
		beam = idx.searchLayerV1Merge(best, bestDist, query, ef, 0)
	} else {
		beam = idx.searchLayer(best, bestDist, query, ef, 0, false)
	}

	q := ann.NewKnnQueue[D](k)
	for _, c := range beam {
		n := idx.nodeByID(c.id)
		if n.deleted {
			continue
		}
		q.Push(c.dist, n.object)
	}
	return q.DrainSortedAscending(), nil
}
