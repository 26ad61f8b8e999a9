package spaces

import (
	"fmt"
	"io"
	"math"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// Cosine is 1-minus-cosine-similarity over dense float32 vectors.
type Cosine struct {
	Dim int
}

func NewCosine(dim int) *Cosine { return &Cosine{Dim: dim} }

func (s *Cosine) Name() string { return "cosinesimil" }

func (s *Cosine) vec(o *ann.Object) ([]float32, error) { return DecodeVector(o.Data) }

func (s *Cosine) Distance(a, b *ann.Object) float64 {
	va, _ := s.vec(a)
	vb, _ := s.vec(b)
	return cosineDistance(va, vb)
}

// ProxyDistance is the negative dot product: for vectors of similar norm
// (the common case once a dataset is normalized) it orders pairs the same
// way as the full cosine distance but skips both sqrt calls.
func (s *Cosine) ProxyDistance(a, b *ann.Object) (float64, bool) {
	va, _ := s.vec(a)
	vb, _ := s.vec(b)
	var dot float64
	n := len(va)
	if len(vb) < n {
		n = len(vb)
	}
	for i := 0; i < n; i++ {
		dot += float64(va[i]) * float64(vb[i])
	}
	return -dot, true
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func (s *Cosine) ParseObject(id int64, label string, raw []byte) (*ann.Object, error) {
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

func (s *Cosine) SerializeObject(o *ann.Object) []byte {
	vec, err := s.vec(o)
	if err != nil {
		return nil
	}
	return encodeVectorText(vec)
}

func (s *Cosine) WriteHeader(w io.Writer, count int) error {
	return writeVectorHeader(w, s.Dim, count)
}

func (s *Cosine) ReadHeader(r io.Reader) (ann.ReadState, error) {
	st, dim, err := readVectorHeader(r)
	if err != nil {
		return nil, err
	}
	s.Dim = dim
	return st, nil
}

func (s *Cosine) ReadNext(state ann.ReadState) ([]byte, bool, error) { return readVectorNext(state) }
