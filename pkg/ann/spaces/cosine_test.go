package spaces

import (
	"math"
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

func TestCosineIdenticalVectorsZeroDistance(t *testing.T) {
	s := NewCosine(3)
	a, _ := s.ParseObject(0, "", []byte("1 2 3"))
	b, _ := s.ParseObject(1, "", []byte("2 4 6"))
	if d := s.Distance(a, b); math.Abs(d) > 1e-9 {
		t.Fatalf("Distance between parallel vectors = %v, want ~0", d)
	}
}

func TestCosineOrthogonalVectorsDistanceOne(t *testing.T) {
	s := NewCosine(2)
	a, _ := s.ParseObject(0, "", []byte("1 0"))
	b, _ := s.ParseObject(1, "", []byte("0 1"))
	if d := s.Distance(a, b); math.Abs(d-1) > 1e-9 {
		t.Fatalf("Distance between orthogonal vectors = %v, want 1", d)
	}
}

func TestCosineOppositeVectorsDistanceTwo(t *testing.T) {
	s := NewCosine(2)
	a, _ := s.ParseObject(0, "", []byte("1 0"))
	b, _ := s.ParseObject(1, "", []byte("-1 0"))
	if d := s.Distance(a, b); math.Abs(d-2) > 1e-9 {
		t.Fatalf("Distance between opposite vectors = %v, want 2", d)
	}
}

func TestCosineZeroVectorIsMaximallyDistant(t *testing.T) {
	s := NewCosine(2)
	a, _ := s.ParseObject(0, "", []byte("0 0"))
	b, _ := s.ParseObject(1, "", []byte("1 1"))
	if d := s.Distance(a, b); d != 1.0 {
		t.Fatalf("Distance with a zero vector = %v, want 1", d)
	}
}

var _ ann.Space[float64] = (*Cosine)(nil)
