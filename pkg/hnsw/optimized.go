package hnsw

import (
	"encoding/binary"
)

// OptimizedStore is a contiguous, packed layout of an index's graph and
// object data: a layer-0 block holding each node's level, neighbor slots and
// object bytes (located through an offset table), and a second, smaller
// block holding the higher-layer neighbor lists. Save writes it as the body
// of the binary file and Load decodes it back into node records. SearchKNN
// and the top-down descent walk the node records; they do not read from it.
type OptimizedStore struct {
	m, m0 uint32

	layer0  []byte
	higher  []byte
	offsets []uint32 // layer0 byte offset of node i, length node_count
}

type layer0Record struct {
	maxLevel  uint32
	neighbors []uint32 // length m0, zero-padded beyond neighborCount
	count     uint32
	object    []byte
}

// Freeze packs idx's current graph into an OptimizedStore. The index must
// not be mutated concurrently.
func (idx *HnswIndex[D]) Freeze() *OptimizedStore {
	idx.mu.RLock()
	nodes := make([]*node, len(idx.nodes))
	copy(nodes, idx.nodes)
	idx.mu.RUnlock()

	store := &OptimizedStore{
		m:       uint32(idx.params.M),
		m0:      uint32(idx.params.M0),
		offsets: make([]uint32, len(nodes)),
	}

	var layer0 []byte
	var higher []byte
	for i, n := range nodes {
		store.offsets[i] = uint32(len(layer0))
		layer0 = appendLayer0Record(layer0, n, store.m0)
		higher = appendHigherRecords(higher, n, store.m)
	}
	store.layer0 = layer0
	store.higher = higher
	return store
}

func appendLayer0Record(buf []byte, n *node, m0 uint32) []byte {
	var nb []uint32
	if len(n.neighbors) > 0 {
		nb = n.neighbors[0]
	}
	buf = appendU32(buf, uint32(n.maxLevel))
	buf = appendU32(buf, uint32(len(nb)))
	for i := uint32(0); i < m0; i++ {
		if int(i) < len(nb) {
			buf = appendU32(buf, nb[i])
		} else {
			buf = appendU32(buf, 0)
		}
	}
	buf = appendU32(buf, uint32(len(n.object.Data)))
	buf = append(buf, n.object.Data...)
	return buf
}

func appendHigherRecords(buf []byte, n *node, m uint32) []byte {
	for l := 1; l <= n.maxLevel && l < len(n.neighbors); l++ {
		nb := n.neighbors[l]
		buf = appendU32(buf, uint32(len(nb)))
		for i := uint32(0); i < m; i++ {
			if int(i) < len(nb) {
				buf = appendU32(buf, nb[i])
			} else {
				buf = appendU32(buf, 0)
			}
		}
	}
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readU32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

// nodeCountInStore reports how many layer0Record the offsets table covers.
func (s *OptimizedStore) nodeCountInStore() int { return len(s.offsets) }

// readLayer0 decodes the node at internal id i from the layer-0 block.
func (s *OptimizedStore) readLayer0(i int) layer0Record {
	off := int(s.offsets[i])
	maxLevel := readU32(s.layer0, off)
	off += 4
	count := readU32(s.layer0, off)
	off += 4
	nb := make([]uint32, s.m0)
	for j := uint32(0); j < s.m0; j++ {
		nb[j] = readU32(s.layer0, off)
		off += 4
	}
	objLen := readU32(s.layer0, off)
	off += 4
	obj := make([]byte, objLen)
	copy(obj, s.layer0[off:off+int(objLen)])
	return layer0Record{maxLevel: maxLevel, neighbors: nb, count: count, object: obj}
}

// readHigher decodes the higher-layer neighbor lists for node i, given it
// has maxLevel >= 1; cursor is the running byte offset into the higher
// block shared across sequential calls in internal-id order.
func (s *OptimizedStore) readHigher(cursor int, maxLevel int, m uint32) (levels [][]uint32, next int) {
	levels = make([][]uint32, maxLevel+1)
	for l := 1; l <= maxLevel; l++ {
		count := readU32(s.higher, cursor)
		cursor += 4
		nb := make([]uint32, count)
		for j := uint32(0); j < m; j++ {
			v := readU32(s.higher, cursor)
			cursor += 4
			if j < count {
				nb[j] = v
			}
		}
		levels[l] = nb
	}
	return levels, cursor
}
