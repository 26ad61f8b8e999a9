// Package spaces provides concrete Space implementations over dense
// float32 vectors: L2, cosine, and Hamming distance on packed bit vectors.
// The HNSW core in package hnsw treats Object payloads opaquely; these are
// the spaces a CLI or caller plugs in at the edge of the system.
package spaces

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// vectorReadState is the ann.ReadState a vectorSpace hands back from
// ReadHeader: a line scanner positioned just after the "<dim>" header line.
type vectorReadState struct {
	scanner *bufio.Scanner
}

func writeVectorHeader(w io.Writer, dim, count int) error {
	_, err := fmt.Fprintf(w, "%d %d\n", dim, count)
	return err
}

func readVectorHeader(r io.Reader) (*vectorReadState, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, io.ErrUnexpectedEOF
	}
	fields := strings.Fields(sc.Text())
	if len(fields) < 1 {
		return nil, 0, fmt.Errorf("malformed vector dataset header: %q", sc.Text())
	}
	dim, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, 0, fmt.Errorf("malformed dimension in header: %w", err)
	}
	return &vectorReadState{scanner: sc}, dim, nil
}

func readVectorNext(state ann.ReadState) ([]byte, bool, error) {
	st, ok := state.(*vectorReadState)
	if !ok {
		return nil, false, fmt.Errorf("wrong read state type for vector space")
	}
	if !st.scanner.Scan() {
		return nil, false, st.scanner.Err()
	}
	line := st.scanner.Text()
	if strings.TrimSpace(line) == "" {
		return readVectorNext(state)
	}
	return []byte(line), true, nil
}

// decodeVectorText parses a whitespace-separated line of floats.
func decodeVectorText(raw []byte) ([]float32, error) {
	fields := strings.Fields(string(raw))
	vec := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q at position %d: %w", f, i, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

func encodeVectorText(vec []float32) []byte {
	var buf bytes.Buffer
	for i, v := range vec {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	return buf.Bytes()
}

// DecodeVector turns the binary layout EncodeVector produces back into a
// float32 slice: a little-endian int32 length followed by that many
// little-endian float32 values. Used by OptimizedStore object payloads.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("vector payload too short")
	}
	n := int(int32(binary.LittleEndian.Uint32(data)))
	if n < 0 || len(data) < 4+n*4 {
		return nil, fmt.Errorf("vector payload truncated")
	}
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[4+i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// EncodeVector is the binary counterpart of DecodeVector.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4+4*len(vec))
	binary.LittleEndian.PutUint32(buf, uint32(int32(len(vec))))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:], math.Float32bits(v))
	}
	return buf
}
