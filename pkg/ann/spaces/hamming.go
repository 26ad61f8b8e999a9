package spaces

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// Hamming is bit-vector Hamming distance, packed 8 bits per byte. Useful
// for binary sketches (e.g. a quantized embedding or a perceptual hash).
type Hamming struct {
	Bits int
}

func NewHamming(bits int) *Hamming { return &Hamming{Bits: bits} }

func (s *Hamming) Name() string { return "bit_hamming" }

func (s *Hamming) Distance(a, b *ann.Object) float64 {
	n := len(a.Data)
	if len(b.Data) < n {
		n = len(b.Data)
	}
	var dist int
	for i := 0; i < n; i++ {
		dist += bits.OnesCount8(a.Data[i] ^ b.Data[i])
	}
	return float64(dist)
}

// ProxyDistance: Hamming distance has no cheaper surrogate than itself.
func (s *Hamming) ProxyDistance(a, b *ann.Object) (float64, bool) { return 0, false }

func (s *Hamming) ParseObject(id int64, label string, raw []byte) (*ann.Object, error) {
	bitsStr := strings.TrimSpace(string(raw))
	if s.Bits == 0 {
		s.Bits = len(bitsStr)
	} else if len(bitsStr) != s.Bits {
		return nil, ann.Wrap("parse_object", ann.InvalidObject,
			fmt.Errorf("expected %d bits, got %d", s.Bits, len(bitsStr)))
	}
	packed := make([]byte, (len(bitsStr)+7)/8)
	for i, c := range bitsStr {
		switch c {
		case '1':
			packed[i/8] |= 1 << uint(i%8)
		case '0':
		default:
			return nil, ann.Wrap("parse_object", ann.InvalidObject,
				fmt.Errorf("invalid bit %q at position %d", c, i))
		}
	}
	return &ann.Object{ID: id, Label: label, Data: packed}, nil
}

func (s *Hamming) SerializeObject(o *ann.Object) []byte {
	var buf bytes.Buffer
	for i := 0; i < s.Bits; i++ {
		if o.Data[i/8]&(1<<uint(i%8)) != 0 {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.Bytes()
}

func (s *Hamming) WriteHeader(w io.Writer, count int) error {
	_, err := fmt.Fprintf(w, "%d %d\n", s.Bits, count)
	return err
}

func (s *Hamming) ReadHeader(r io.Reader) (ann.ReadState, error) {
	st, n, err := readVectorHeader(r)
	if err != nil {
		return nil, err
	}
	s.Bits = n
	return st, nil
}

func (s *Hamming) ReadNext(state ann.ReadState) ([]byte, bool, error) { return readVectorNext(state) }
