package hnsw

import (
	"sort"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// selectNeighbors runs the configured neighbor-pruning heuristic over
// candidates (distances to target) and returns at most m internal ids to
// link, closest first.
func (idx *HnswIndex[D]) selectNeighbors(target *ann.Object, candidates []candidate[D], m, layer int) []uint32 {
	sorted := make([]candidate[D], len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].dist < sorted[j].dist })

	switch idx.params.DelaunayType {
	case DelaunayNaive:
		return idx.takeClosest(sorted, m)
	case DelaunayHeuristicReopen:
		return idx.pruneWithReopen(sorted, m)
	case DelaunayHeuristicExpand:
		expanded := idx.expandByOneHop(target, sorted, layer)
		return idx.pruneClosed(expanded, m)
	default: // DelaunayHeuristicClosed
		return idx.pruneClosed(sorted, m)
	}
}

func (idx *HnswIndex[D]) takeClosest(sorted []candidate[D], m int) []uint32 {
	if len(sorted) > m {
		sorted = sorted[:m]
	}
	out := make([]uint32, len(sorted))
	for i, c := range sorted {
		out[i] = c.id
	}
	return out
}

// pruneClosed admits candidates in ascending distance order, keeping c iff
// for every already-admitted a, distance(c, new) < distance(c, a). Discarded
// candidates are never reconsidered (delaunay_type 2, and the pruning stage
// of delaunay_type 3).
func (idx *HnswIndex[D]) pruneClosed(sorted []candidate[D], m int) []uint32 {
	admitted := make([]candidate[D], 0, m)
	for _, c := range sorted {
		if len(admitted) >= m {
			break
		}
		if idx.admits(c, admitted) {
			admitted = append(admitted, c)
		}
	}
	out := make([]uint32, len(admitted))
	for i, c := range admitted {
		out[i] = c.id
	}
	return out
}

// pruneWithReopen runs the same single pass as pruneClosed but, if fewer
// than m were admitted, refills from the discarded candidates closest-first
// without re-applying the heuristic (delaunay_type 1).
func (idx *HnswIndex[D]) pruneWithReopen(sorted []candidate[D], m int) []uint32 {
	admitted := make([]candidate[D], 0, m)
	var discarded []candidate[D]
	for _, c := range sorted {
		if len(admitted) >= m {
			break
		}
		if idx.admits(c, admitted) {
			admitted = append(admitted, c)
		} else {
			discarded = append(discarded, c)
		}
	}
	for _, c := range discarded {
		if len(admitted) >= m {
			break
		}
		admitted = append(admitted, c)
	}
	out := make([]uint32, len(admitted))
	for i, c := range admitted {
		out[i] = c.id
	}
	return out
}

// admits reports whether c should be kept given the already-admitted set:
// for every a in admitted, distance(c, a) must exceed c's distance to the
// new object (strict <, never a tie).
func (idx *HnswIndex[D]) admits(c candidate[D], admitted []candidate[D]) bool {
	cObj := idx.nodeByID(c.id).object
	for _, a := range admitted {
		aObj := idx.nodeByID(a.id).object
		if idx.space.Distance(cObj, aObj) <= c.dist {
			return false
		}
	}
	return true
}

// expandByOneHop adds, for each candidate already in sorted, that
// candidate's own layer neighbors not already present, recomputing their
// distance to target. This is the two-tier expansion delaunay_type 3 runs
// before pruning.
func (idx *HnswIndex[D]) expandByOneHop(target *ann.Object, sorted []candidate[D], layer int) []candidate[D] {
	seen := make(map[uint32]struct{}, len(sorted)*2)
	out := make([]candidate[D], 0, len(sorted)*2)
	for _, c := range sorted {
		seen[c.id] = struct{}{}
		out = append(out, c)
	}
	for _, c := range sorted {
		n := idx.nodeByID(c.id)
		for _, nbID := range n.neighborsAt(layer) {
			if _, ok := seen[nbID]; ok {
				continue
			}
			seen[nbID] = struct{}{}
			nbObj := idx.nodeByID(nbID).object
			out = append(out, candidate[D]{id: nbID, dist: idx.space.Distance(nbObj, target)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].dist < out[j].dist })
	return out
}
