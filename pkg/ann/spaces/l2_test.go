package spaces

import (
	"math"
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

func TestL2Distance(t *testing.T) {
	s := NewL2(2)
	a, err := s.ParseObject(0, "", []byte("0 0"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	b, err := s.ParseObject(1, "", []byte("3 4"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if got := s.Distance(a, b); got != 5 {
		t.Fatalf("Distance = %v, want 5", got)
	}
	if proxy, ok := s.ProxyDistance(a, b); !ok || proxy != 25 {
		t.Fatalf("ProxyDistance = (%v, %v), want (25, true)", proxy, ok)
	}
}

func TestL2ProxyMonotonicWithDistance(t *testing.T) {
	s := NewL2(1)
	origin, _ := s.ParseObject(0, "", []byte("0"))
	near, _ := s.ParseObject(1, "", []byte("2"))
	far, _ := s.ParseObject(2, "", []byte("10"))

	dNear := s.Distance(origin, near)
	dFar := s.Distance(origin, far)
	pNear, _ := s.ProxyDistance(origin, near)
	pFar, _ := s.ProxyDistance(origin, far)

	if (dNear < dFar) != (pNear < pFar) {
		t.Fatalf("proxy distance does not preserve Distance's ordering")
	}
}

func TestL2ParseObjectDimMismatch(t *testing.T) {
	s := NewL2(3)
	if _, err := s.ParseObject(0, "", []byte("1 2")); err == nil {
		t.Fatalf("expected a dimension-mismatch error")
	}
}

func TestL2RoundTripSerialize(t *testing.T) {
	s := NewL2(3)
	obj, err := s.ParseObject(0, "", []byte("1.5 -2 3"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	back := s.SerializeObject(obj)
	reparsed, err := s.ParseObject(0, "", back)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if d := s.Distance(obj, reparsed); math.Abs(d) > 1e-6 {
		t.Fatalf("round-tripped object differs by %v", d)
	}
}

var _ ann.Space[float64] = (*L2)(nil)
