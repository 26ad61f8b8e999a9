// Package hnsw implements the Hierarchical Navigable Small-World
// approximate nearest-neighbor graph index: a multi-layer proximity graph
// built by greedy descent plus per-layer beam search, queried the same way.
package hnsw

import (
	"context"
	"fmt"
	"sync"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// HnswIndex is a multi-layer navigable small-world graph over a distance
// space parameterized by D, the space's distance value type.
type HnswIndex[D ann.Distance] struct {
	space  ann.Space[D]
	params Params
	logger Logger

	mu      sync.RWMutex // guards nodes (append-only), idIndex, deletedCount
	nodes   []*node
	idIndex map[int64]uint32
	deletedCount int

	entryMu    sync.Mutex // max_level_guard
	entryPoint uint32
	topLevel   int
	hasEntry   bool
	built      bool // true once Build/Load/LoadText has completed, even over zero objects

	visited *ann.VisitedPool

	rngMu sync.Mutex
	rngs  []*threadRNG

	queryEf     int
	queryMethod SearchMethod
}

// NewIndex validates params and returns an empty index over space.
func NewIndex[D ann.Distance](space ann.Space[D], params Params, logger Logger) (*HnswIndex[D], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &HnswIndex[D]{
		space:       space,
		params:      params,
		logger:      logger,
		idIndex:     make(map[int64]uint32),
		topLevel:    -1,
		visited:     ann.NewVisitedPool(),
		rngs:        make([]*threadRNG, params.IndexThreadQty),
		queryEf:     params.Ef,
		queryMethod: params.SearchMethod,
	}, nil
}

// Size returns the number of live (non-deleted) nodes.
func (idx *HnswIndex[D]) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.nodes) - idx.deletedCount
}

// String is a one-line summary, the equivalent of a CLI "stats" line.
func (idx *HnswIndex[D]) String() string {
	idx.mu.RLock()
	n := len(idx.nodes)
	idx.mu.RUnlock()
	return fmt.Sprintf("hnsw(space=%s, M=%d, efConstruction=%d, nodes=%d, entryPoint=%d, topLevel=%d)",
		idx.space.Name(), idx.params.M, idx.params.EfConstruction, n, idx.entryPoint, idx.topLevel)
}

// SetQueryTimeParams overrides the beam width and traversal method used by
// subsequent SearchKNN calls, independent of the build-time Params.
func (idx *HnswIndex[D]) SetQueryTimeParams(ef int, method SearchMethod) {
	idx.queryEf = ef
	idx.queryMethod = method
}

func (idx *HnswIndex[D]) nodeByID(id uint32) *node {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.nodes[id]
}

func (idx *HnswIndex[D]) nodeCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.nodes)
}

func (idx *HnswIndex[D]) rngFor(threadID int) *threadRNG {
	idx.rngMu.Lock()
	defer idx.rngMu.Unlock()
	if threadID >= len(idx.rngs) {
		grown := make([]*threadRNG, threadID+1)
		copy(grown, idx.rngs)
		idx.rngs = grown
	}
	if idx.rngs[threadID] == nil {
		idx.rngs[threadID] = newThreadRNG(idx.params.Seed, threadID)
	}
	return idx.rngs[threadID]
}

// Build inserts every object into the index, dispatched across
// params.IndexThreadQty worker goroutines using a deterministic, up-front
// partition of objects into contiguous chunks. objects must carry unique
// non-negative ids; Build errors on the first duplicate it observes.
func (idx *HnswIndex[D]) Build(ctx context.Context, objects []*ann.Object) error {
	idx.logger.Info("build start", "count", len(objects), "m", idx.params.M, "ef_construction", idx.params.EfConstruction)
	pool := ann.NewWorkerPool(idx.params.IndexThreadQty)
	err := pool.For(ctx, 0, len(objects), func(ctx context.Context, i, threadID int) error {
		return idx.insertOne(objects[i], threadID)
	})
	if err != nil {
		idx.logger.Error("build failed", "err", err)
		return err
	}
	idx.entryMu.Lock()
	idx.built = true
	idx.entryMu.Unlock()
	idx.logger.Info("build finished", "nodes", idx.nodeCount())
	return nil
}

// AddBatch appends objects to an existing index. Assigned internal ids are
// current_size, current_size+1, ... in call order (not necessarily object
// insertion order when IndexThreadQty > 1). When checkIDs is set, a
// post-condition verifies every node's internal-id equals its position in
// the nodes array.
func (idx *HnswIndex[D]) AddBatch(ctx context.Context, objects []*ann.Object, checkIDs bool) error {
	base := idx.nodeCount()
	pool := ann.NewWorkerPool(idx.params.IndexThreadQty)
	err := pool.For(ctx, 0, len(objects), func(ctx context.Context, i, threadID int) error {
		return idx.insertOne(objects[i], threadID)
	})
	if err != nil {
		return err
	}
	idx.entryMu.Lock()
	idx.built = true
	idx.entryMu.Unlock()
	if checkIDs {
		idx.mu.RLock()
		defer idx.mu.RUnlock()
		for i := base; i < len(idx.nodes); i++ {
			if int(idx.nodes[i].internalID) != i {
				return ann.Wrap("add_batch", ann.CorruptIndex,
					fmt.Errorf("node at position %d has internal id %d", i, idx.nodes[i].internalID))
			}
		}
	}
	return nil
}

// insertOne runs the seven-step insertion protocol for a single object.
func (idx *HnswIndex[D]) insertOne(obj *ann.Object, threadID int) error {
	rng := idx.rngFor(threadID)
	newLevel := rng.randomLevel(idx.params.levelMult())

	idx.mu.Lock()
	if _, exists := idx.idIndex[obj.ID]; exists {
		idx.mu.Unlock()
		return ann.Wrap("insert", ann.InvalidObject, fmt.Errorf("duplicate object id %d", obj.ID))
	}
	id := uint32(len(idx.nodes))
	n := newNode(id, obj, newLevel)
	idx.nodes = append(idx.nodes, n)
	idx.idIndex[obj.ID] = id
	idx.mu.Unlock()

	idx.entryMu.Lock()
	if !idx.hasEntry {
		idx.entryPoint = id
		idx.topLevel = newLevel
		idx.hasEntry = true
		idx.entryMu.Unlock()
		return nil
	}
	entryPoint, topLevel := idx.entryPoint, idx.topLevel
	idx.entryMu.Unlock()

	best := entryPoint
	bestObj := idx.nodeByID(best).object
	bestDist := idx.space.Distance(bestObj, obj)

	// Step 3: top-down greedy descent, beam of 1.
	for l := topLevel; l >= newLevel+1; l-- {
		best, bestDist = idx.greedyDescend(best, bestDist, obj, l)
	}

	// Steps 4-6: per-layer beam search, neighbor selection, bidirectional link.
	for l := min(topLevel, newLevel); l >= 0; l-- {
		m := idx.params.M
		if l == 0 {
			m = idx.params.M0
		}
		beam := idx.searchLayer(best, bestDist, obj, idx.params.EfConstruction, l, idx.params.UseProxyDist)

		// Final selection and any downstream linking always compares real
		// distance, even when the beam above was scored with the proxy.
		candidates := make([]candidate[D], len(beam))
		for i, c := range beam {
			cObj := idx.nodeByID(c.id).object
			candidates[i] = candidate[D]{id: c.id, dist: idx.space.Distance(cObj, obj)}
		}
		selected := idx.selectNeighbors(obj, candidates, m, l)

		n.lockNeighbors(func() {
			n.neighbors[l] = selected
		})
		for _, b := range selected {
			idx.linkNeighbor(b, id, l)
		}
		if len(candidates) > 0 {
			closest := candidates[0]
			for _, c := range candidates[1:] {
				if c.dist < closest.dist {
					closest = c
				}
			}
			best, bestDist = closest.id, closest.dist
		}
	}

	// Step 7: raise the entry point under the global guard if this node is
	// now the tallest.
	if newLevel > topLevel {
		idx.entryMu.Lock()
		if newLevel > idx.topLevel {
			idx.topLevel = newLevel
			idx.entryPoint = id
		}
		idx.entryMu.Unlock()
	}
	return nil
}

// linkNeighbor adds id to b's layer-l neighbor list, re-running neighbor
// selection on b's own neighbors and truncating if that pushes b over
// capacity.
func (idx *HnswIndex[D]) linkNeighbor(b, id uint32, l int) {
	bn := idx.nodeByID(b)
	m := idx.params.M
	if l == 0 {
		m = idx.params.M0
	}
	bn.lockNeighbors(func() {
		if l >= len(bn.neighbors) {
			return
		}
		if hasNeighbor(bn.neighbors[l], id) || b == id {
			return
		}
		bn.neighbors[l] = append(bn.neighbors[l], id)
		if len(bn.neighbors[l]) <= m {
			return
		}
		cands := make([]candidate[D], 0, len(bn.neighbors[l]))
		for _, nb := range bn.neighbors[l] {
			nbObj := idx.nodeByID(nb).object
			cands = append(cands, candidate[D]{id: nb, dist: idx.space.Distance(bn.object, nbObj)})
		}
		bn.neighbors[l] = idx.selectNeighbors(bn.object, cands, m, l)
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
