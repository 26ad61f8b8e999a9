package hnsw

import (
	"fmt"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// DeleteStrategy selects what, if anything, DeleteBatch does to repair
// local connectivity around a removed vertex.
type DeleteStrategy int

const (
	// DeleteNone tombstones the ids and strips them from every surviving
	// node's neighbor lists; removed edges are not replaced.
	DeleteNone DeleteStrategy = iota
	// DeleteNeighborsOnly additionally patches every surviving neighbor's
	// adjacency list, replacing removed edges with the deleted node's own
	// surviving neighbors where possible.
	DeleteNeighborsOnly
)

const compactionThreshold = 0.2

// DeleteBatch marks ids as deleted, optionally patches neighbor lists, and
// compacts the node array if the deleted fraction has crossed 0.2. Callers
// must ensure no concurrent SearchKNN is in flight.
func (idx *HnswIndex[D]) DeleteBatch(ids []int64, strategy DeleteStrategy, checkIDs bool) error {
	idx.mu.Lock()
	internalIDs := make([]uint32, 0, len(ids))
	for _, extID := range ids {
		iid, ok := idx.idIndex[extID]
		if !ok {
			idx.mu.Unlock()
			return ann.Wrap("delete_batch", ann.InvalidParameter, errUnknownID(extID))
		}
		internalIDs = append(internalIDs, iid)
	}
	deletedSet := make(map[uint32]struct{}, len(internalIDs))
	for _, iid := range internalIDs {
		n := idx.nodes[iid]
		if !n.deleted {
			n.deleted = true
			idx.deletedCount++
		}
		deletedSet[iid] = struct{}{}
		delete(idx.idIndex, n.object.ID)
	}
	nodes := idx.nodes
	idx.mu.Unlock()

	for _, n := range nodes {
		if n.deleted {
			continue
		}
		n.lockNeighbors(func() {
			for l := range n.neighbors {
				n.neighbors[l] = idx.patchLayer(n.neighbors[l], deletedSet, strategy, nodes, l)
			}
		})
	}

	idx.mu.Lock()
	fraction := float64(idx.deletedCount) / float64(len(idx.nodes))
	idx.mu.Unlock()
	if fraction >= compactionThreshold {
		if err := idx.compact(); err != nil {
			return err
		}
	}

	idx.reassignEntryIfDeleted()

	if checkIDs {
		idx.mu.RLock()
		defer idx.mu.RUnlock()
		for i, n := range idx.nodes {
			if int(n.internalID) != i {
				return ann.Wrap("delete_batch", ann.CorruptIndex,
					fmt.Errorf("node at position %d has internal id %d", i, n.internalID))
			}
		}
	}
	return nil
}

// patchLayer removes deleted neighbors from list; under DeleteNeighborsOnly
// it also links in a surviving neighbor-of-the-removed-neighbor, when one
// exists and isn't already present, to preserve local connectivity.
func (idx *HnswIndex[D]) patchLayer(list []uint32, deletedSet map[uint32]struct{}, strategy DeleteStrategy, nodes []*node, layer int) []uint32 {
	kept := list[:0:0]
	var replacements []uint32
	for _, nb := range list {
		if _, gone := deletedSet[nb]; !gone {
			kept = append(kept, nb)
			continue
		}
		if strategy != DeleteNeighborsOnly {
			continue
		}
		removed := nodes[nb]
		for _, repl := range removed.neighborsAt(layer) {
			if _, gone := deletedSet[repl]; gone {
				continue
			}
			if hasNeighbor(kept, repl) || hasNeighbor(replacements, repl) {
				continue
			}
			replacements = append(replacements, repl)
			break
		}
	}
	return append(kept, replacements...)
}

// compact builds an old-to-new internal-id permutation skipping deleted
// nodes, rewrites every neighbor list through it, and truncates the node
// array. It is a stop-the-world operation: the caller must quiesce search
// and any in-flight insertion first.
func (idx *HnswIndex[D]) compact() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	perm := make([]int32, len(idx.nodes))
	survivors := make([]*node, 0, len(idx.nodes))
	for i, n := range idx.nodes {
		if n.deleted {
			perm[i] = -1
			continue
		}
		perm[i] = int32(len(survivors))
		survivors = append(survivors, n)
	}

	for newID, n := range survivors {
		n.internalID = uint32(newID)
		for l := range n.neighbors {
			remapped := n.neighbors[l][:0:0]
			for _, old := range n.neighbors[l] {
				if perm[old] < 0 {
					continue
				}
				remapped = append(remapped, uint32(perm[old]))
			}
			n.neighbors[l] = remapped
		}
	}

	idx.nodes = survivors
	idx.deletedCount = 0
	for newID, n := range survivors {
		idx.idIndex[n.object.ID] = uint32(newID)
	}

	idx.entryMu.Lock()
	if idx.hasEntry && int(idx.entryPoint) < len(perm) && perm[idx.entryPoint] >= 0 {
		idx.entryPoint = uint32(perm[idx.entryPoint])
	} else {
		idx.hasEntry = false
	}
	idx.entryMu.Unlock()

	idx.logger.Info("compaction finished", "survivors", len(survivors))
	return nil
}

// reassignEntryIfDeleted picks the surviving node with the highest
// max_level as the new entry point if the previous one no longer exists or
// was deleted.
func (idx *HnswIndex[D]) reassignEntryIfDeleted() {
	idx.mu.RLock()
	nodes := idx.nodes
	idx.mu.RUnlock()

	idx.entryMu.Lock()
	defer idx.entryMu.Unlock()

	needsReassign := !idx.hasEntry
	if idx.hasEntry {
		if int(idx.entryPoint) >= len(nodes) || nodes[idx.entryPoint].deleted {
			needsReassign = true
		}
	}
	if !needsReassign {
		return
	}

	var best *node
	for _, n := range nodes {
		if n.deleted {
			continue
		}
		if best == nil || n.maxLevel > best.maxLevel {
			best = n
		}
	}
	if best == nil {
		idx.hasEntry = false
		idx.topLevel = -1
		return
	}
	idx.hasEntry = true
	idx.entryPoint = best.internalID
	idx.topLevel = best.maxLevel
}
