package hnsw

import (
	"sync"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// node is one graph vertex. internalID is its dense, stable-until-compaction
// index into HnswIndex.nodes. neighbors[l] holds layer-l neighbor
// internal-ids, capacity m0 at layer 0 and m above it.
type node struct {
	internalID uint32
	object     *ann.Object
	maxLevel   int
	neighbors  [][]uint32
	deleted    bool

	mu sync.Mutex // insertLock: guards neighbors during concurrent construction
}

func newNode(id uint32, obj *ann.Object, maxLevel int) *node {
	n := &node{
		internalID: id,
		object:     obj,
		maxLevel:   maxLevel,
		neighbors:  make([][]uint32, maxLevel+1),
	}
	return n
}

// lockNeighbors runs fn with the node's insert lock held, guarding reads and
// writes of neighbors against concurrent insertions that select this node.
func (n *node) lockNeighbors(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn()
}

// neighborsAt returns a copy of the layer-l neighbor list, or nil if l is out
// of range. Safe to call without holding the lock when the caller only needs
// a point-in-time snapshot (e.g. a read-only query).
func (n *node) neighborsAt(l int) []uint32 {
	if l < 0 || l >= len(n.neighbors) {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uint32, len(n.neighbors[l]))
	copy(out, n.neighbors[l])
	return out
}

func hasNeighbor(list []uint32, id uint32) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}
