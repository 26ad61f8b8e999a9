package spaces

import (
	"fmt"
	"io"
	"math"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// L2 is the squared-Euclidean-rooted distance space over dense float32
// vectors: ann.Space[float64] so the heaps and queues used throughout
// package hnsw compare plain float64s regardless of which space is in use.
type L2 struct {
	Dim int
}

// NewL2 returns an L2 space over vectors of the given dimension. dim may be
// 0 to auto-detect from the first parsed object.
func NewL2(dim int) *L2 { return &L2{Dim: dim} }

func (s *L2) Name() string { return "l2" }

func (s *L2) vec(o *ann.Object) ([]float32, error) { return DecodeVector(o.Data) }

// Distance is the Euclidean distance, not squared, so it composes with
// callers that compare distances across spaces or report them directly.
func (s *L2) Distance(a, b *ann.Object) float64 {
	va, _ := s.vec(a)
	vb, _ := s.vec(b)
	var sum float64
	n := len(va)
	if len(vb) < n {
		n = len(vb)
	}
	for i := 0; i < n; i++ {
		d := float64(va[i]) - float64(vb[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ProxyDistance is squared Euclidean distance: monotonic with Distance, so
// order-preserving for ranking candidates, and skips the sqrt call.
func (s *L2) ProxyDistance(a, b *ann.Object) (float64, bool) {
	va, _ := s.vec(a)
	vb, _ := s.vec(b)
	var sum float64
	n := len(va)
	if len(vb) < n {
		n = len(vb)
	}
	for i := 0; i < n; i++ {
		d := float64(va[i]) - float64(vb[i])
		sum += d * d
	}
	return sum, true
}

func (s *L2) ParseObject(id int64, label string, raw []byte) (*ann.Object, error) {
	vec, err := decodeVectorText(raw)
	if err != nil {
		return nil, ann.Wrap("parse_object", ann.InvalidObject, err)
	}
	if s.Dim == 0 {
		s.Dim = len(vec)
	} else if len(vec) != s.Dim {
		return nil, ann.Wrap("parse_object", ann.InvalidObject,
			fmt.Errorf("expected %d dimensions, got %d", s.Dim, len(vec)))
	}
	return &ann.Object{ID: id, Label: label, Data: EncodeVector(vec)}, nil
}

func (s *L2) SerializeObject(o *ann.Object) []byte {
	vec, err := s.vec(o)
	if err != nil {
		return nil
	}
	return encodeVectorText(vec)
}

func (s *L2) WriteHeader(w io.Writer, count int) error { return writeVectorHeader(w, s.Dim, count) }

func (s *L2) ReadHeader(r io.Reader) (ann.ReadState, error) {
	st, dim, err := readVectorHeader(r)
	if err != nil {
		return nil, err
	}
	s.Dim = dim
	return st, nil
}

func (s *L2) ReadNext(state ann.ReadState) ([]byte, bool, error) { return readVectorNext(state) }
