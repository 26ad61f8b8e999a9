package hnsw

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/liliang-cn/hnswgo/pkg/ann"
	"github.com/liliang-cn/hnswgo/internal/fileutil"
)

const (
	magicHNSW     = "HNSW"
	formatVersion = uint32(1)
	binaryHeaderSize = 11 * 4
)

// distFuncType maps a space name to the small enum the binary header
// records; it is informational only, the caller always supplies the
// matching Space explicitly when loading.
func distFuncType(name string) uint32 {
	switch name {
	case "l2":
		return 0
	case "cosinesimil":
		return 1
	case "bit_hamming":
		return 2
	default:
		return 99
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

// Save writes the index to path in binary (OptimizedStore) form, atomically
// via a temp-file-then-rename.
func (idx *HnswIndex[D]) Save(path string) error {
	idx.logger.Info("save start", "path", path, "format", "binary")
	err := fileutil.WriteAtomic(path, func(f *os.File) error {
		return idx.writeBinary(f)
	})
	if err != nil {
		return ann.Wrap("save", ann.IoError, err)
	}
	idx.logger.Info("save finished", "path", path)
	return nil
}

func (idx *HnswIndex[D]) writeBinary(w io.Writer) error {
	idx.mu.RLock()
	nodeCount := len(idx.nodes)
	idx.mu.RUnlock()

	idx.entryMu.Lock()
	entryPoint, topLevel, hasEntry := idx.entryPoint, idx.topLevel, idx.hasEntry
	idx.entryMu.Unlock()
	if !hasEntry {
		entryPoint, topLevel = 0, 0
	}

	store := idx.Freeze()
	offsetData := uint32(binaryHeaderSize)
	offsetLevels := offsetData + uint32(len(store.layer0))

	var buf bytes.Buffer
	buf.WriteString(magicHNSW)
	writeU32(&buf, formatVersion)
	writeU32(&buf, uint32(idx.params.M))
	writeU32(&buf, uint32(idx.params.M0))
	writeU32(&buf, uint32(idx.params.EfConstruction))
	writeU32(&buf, entryPoint)
	writeU32(&buf, uint32(topLevel))
	writeU32(&buf, uint32(nodeCount))
	writeU32(&buf, distFuncType(idx.space.Name()))
	writeU32(&buf, offsetLevels)
	writeU32(&buf, offsetData)
	buf.Write(store.layer0)
	buf.Write(store.higher)

	_, err := w.Write(buf.Bytes())
	return err
}

// Load reads path (previously written by Save) into a fresh index over
// space. logger may be nil (NopLogger).
func Load[D ann.Distance](path string, space ann.Space[D], logger Logger) (*HnswIndex[D], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ann.Wrap("load", ann.IoError, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ann.Wrap("load", ann.IoError, err)
	}
	return loadBinary(data, space, logger)
}

func loadBinary[D ann.Distance](data []byte, space ann.Space[D], logger Logger) (*HnswIndex[D], error) {
	if len(data) < binaryHeaderSize {
		return nil, ann.Wrap("load", ann.IoError, fmt.Errorf("truncated header: %d bytes", len(data)))
	}
	if string(data[0:4]) != magicHNSW {
		return nil, ann.Wrap("load", ann.IoError, fmt.Errorf("bad magic %q", data[0:4]))
	}
	version := readU32(data, 4)
	if version != formatVersion {
		return nil, ann.Wrap("load", ann.IoError, fmt.Errorf("unsupported version %d", version))
	}
	m := readU32(data, 8)
	m0 := readU32(data, 12)
	efc := readU32(data, 16)
	entryPoint := readU32(data, 20)
	topLevel := readU32(data, 24)
	nodeCount := readU32(data, 28)
	offsetLevels := readU32(data, 36)
	offsetData := readU32(data, 40)

	if int(offsetData) > len(data) || int(offsetLevels) > len(data) || offsetLevels < offsetData {
		return nil, ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("invalid section offsets"))
	}

	params := Params{
		M:              int(m),
		M0:             int(m0),
		EfConstruction: int(efc),
		IndexThreadQty: 1,
		SearchMethod:   SearchOld,
		DelaunayType:   DelaunayHeuristicClosed,
	}
	if params.M < 1 {
		params.M = 1
	}
	idx, err := NewIndex(space, params, logger)
	if err != nil {
		return nil, err
	}

	store := &OptimizedStore{
		m:      m,
		m0:     m0,
		layer0: data[offsetData:offsetLevels],
		higher: data[offsetLevels:],
	}

	nodes := make([]*node, nodeCount)
	idIndex := make(map[int64]uint32, nodeCount)
	cursor := 0
	higherCursor := 0
	for i := 0; i < int(nodeCount); i++ {
		if cursor+8 > len(store.layer0) {
			return nil, ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("layer0 record %d truncated", i))
		}
		maxLevel := int(readU32(store.layer0, cursor))
		cursor += 4
		count := int(readU32(store.layer0, cursor))
		cursor += 4
		nb := make([]uint32, m0)
		for j := uint32(0); j < m0; j++ {
			nb[j] = readU32(store.layer0, cursor)
			cursor += 4
		}
		if count > int(m0) {
			return nil, ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("node %d neighbor count %d exceeds M0 %d", i, count, m0))
		}
		objLen := int(readU32(store.layer0, cursor))
		cursor += 4
		if cursor+objLen > len(store.layer0) {
			return nil, ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("node %d object data truncated", i))
		}
		objData := make([]byte, objLen)
		copy(objData, store.layer0[cursor:cursor+objLen])
		cursor += objLen

		if maxLevel > int(topLevel) {
			return nil, ann.Wrap("load", ann.CorruptIndex, errCorruptLevel)
		}
		obj := &ann.Object{ID: int64(i), Data: objData}
		n := newNode(uint32(i), obj, maxLevel)
		n.neighbors[0] = nb[:count]
		if maxLevel >= 1 {
			levels, next := store.readHigher(higherCursor, maxLevel, m)
			for l := 1; l <= maxLevel; l++ {
				n.neighbors[l] = levels[l]
			}
			higherCursor = next
		}
		nodes[i] = n
		idIndex[obj.ID] = uint32(i)
	}

	idx.nodes = nodes
	idx.idIndex = idIndex
	idx.hasEntry = nodeCount > 0
	idx.entryPoint = entryPoint
	idx.topLevel = int(topLevel)
	idx.built = true

	if err := idx.validateLoaded(); err != nil {
		return nil, err
	}
	idx.logger.Info("load finished", "nodes", len(nodes))
	return idx, nil
}

// validateLoaded checks the structural invariants a loaded index must
// satisfy: in-range entry point, entry point at top_level, in-range
// neighbor ids, and full bidirectionality.
func (idx *HnswIndex[D]) validateLoaded() error {
	n := len(idx.nodes)
	if n == 0 {
		return nil
	}
	if int(idx.entryPoint) >= n {
		return ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("entry point %d out of range [0,%d)", idx.entryPoint, n))
	}
	if idx.nodes[idx.entryPoint].maxLevel != idx.topLevel {
		return ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("entry point max_level %d != top_level %d", idx.nodes[idx.entryPoint].maxLevel, idx.topLevel))
	}
	for _, node := range idx.nodes {
		for l, list := range node.neighbors {
			for _, nb := range list {
				if int(nb) >= n {
					return ann.Wrap("load", ann.CorruptIndex, errBadNeighbor)
				}
				if nb == node.internalID {
					return ann.Wrap("load", ann.CorruptIndex, fmt.Errorf("self-loop at node %d layer %d", node.internalID, l))
				}
				if !hasNeighbor(idx.nodes[nb].neighbors[l], node.internalID) {
					return ann.Wrap("load", ann.CorruptIndex, errNotBidi)
				}
			}
		}
	}
	return nil
}

// SaveText writes the UTF-8 line-oriented form of the index to path.
func (idx *HnswIndex[D]) SaveText(path string) error {
	err := fileutil.WriteAtomic(path, func(f *os.File) error {
		return idx.writeText(f)
	})
	if err != nil {
		return ann.Wrap("save_text", ann.IoError, err)
	}
	return nil
}

func (idx *HnswIndex[D]) writeText(w io.Writer) error {
	idx.mu.RLock()
	nodes := make([]*node, len(idx.nodes))
	copy(nodes, idx.nodes)
	idx.mu.RUnlock()

	idx.entryMu.Lock()
	entryPoint, topLevel, hasEntry := idx.entryPoint, idx.topLevel, idx.hasEntry
	idx.entryMu.Unlock()
	if !hasEntry {
		entryPoint, topLevel = 0, 0
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d %d %d %d %d %d %d %d %d %d\n",
		magicHNSW, formatVersion, idx.params.M, idx.params.M0, idx.params.EfConstruction,
		entryPoint, topLevel, len(nodes), distFuncType(idx.space.Name()), 0, 0)

	for _, n := range nodes {
		fmt.Fprintf(bw, "%d", n.maxLevel)
		for l := 0; l <= n.maxLevel; l++ {
			nb := n.neighbors[l]
			fmt.Fprintf(bw, " %d", len(nb))
			for _, id := range nb {
				fmt.Fprintf(bw, " %d", id)
			}
		}
		bw.WriteByte(' ')
		bw.Write(idx.space.SerializeObject(n.object))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// LoadText reads the text form written by SaveText.
func LoadText[D ann.Distance](path string, space ann.Space[D], logger Logger) (*HnswIndex[D], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ann.Wrap("load_text", ann.IoError, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if !sc.Scan() {
		return nil, ann.Wrap("load_text", ann.IoError, fmt.Errorf("empty file"))
	}
	header := strings.Fields(sc.Text())
	if len(header) < 11 || header[0] != magicHNSW {
		return nil, ann.Wrap("load_text", ann.IoError, fmt.Errorf("bad text header"))
	}
	m := atoiOr0(header[2])
	m0 := atoiOr0(header[3])
	efc := atoiOr0(header[4])
	entryPoint := atoiOr0(header[5])
	topLevel := atoiOr0(header[6])
	nodeCount := atoiOr0(header[7])

	params := Params{M: m, M0: m0, EfConstruction: efc, IndexThreadQty: 1, SearchMethod: SearchOld, DelaunayType: DelaunayHeuristicClosed}
	if params.M < 1 {
		params.M = 1
	}
	idx, err := NewIndex(space, params, logger)
	if err != nil {
		return nil, err
	}

	nodes := make([]*node, 0, nodeCount)
	idIndex := make(map[int64]uint32, nodeCount)
	for i := 0; sc.Scan(); i++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		pos := 0
		maxLevel := atoiOr0(fields[pos])
		pos++
		neighbors := make([][]uint32, maxLevel+1)
		for l := 0; l <= maxLevel; l++ {
			count := atoiOr0(fields[pos])
			pos++
			list := make([]uint32, count)
			for j := 0; j < count; j++ {
				list[j] = uint32(atoiOr0(fields[pos]))
				pos++
			}
			neighbors[l] = list
		}
		objectText := strings.Join(fields[pos:], " ")
		obj, err := space.ParseObject(int64(i), "", []byte(objectText))
		if err != nil {
			return nil, err
		}
		n := newNode(uint32(i), obj, maxLevel)
		n.neighbors = neighbors
		nodes = append(nodes, n)
		idIndex[obj.ID] = uint32(i)
	}

	idx.nodes = nodes
	idx.idIndex = idIndex
	idx.hasEntry = len(nodes) > 0
	idx.entryPoint = uint32(entryPoint)
	idx.topLevel = topLevel
	idx.built = true

	if err := idx.validateLoaded(); err != nil {
		return nil, err
	}
	return idx, nil
}

func atoiOr0(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
