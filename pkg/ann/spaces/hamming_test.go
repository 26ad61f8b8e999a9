package spaces

import (
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

func TestHammingDistance(t *testing.T) {
	s := NewHamming(8)
	a, err := s.ParseObject(0, "", []byte("11110000"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	b, err := s.ParseObject(1, "", []byte("10100000"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if d := s.Distance(a, b); d != 2 {
		t.Fatalf("Distance = %v, want 2", d)
	}
}

func TestHammingProxyDistanceUnavailable(t *testing.T) {
	s := NewHamming(8)
	a, _ := s.ParseObject(0, "", []byte("00000000"))
	b, _ := s.ParseObject(1, "", []byte("11111111"))
	if _, ok := s.ProxyDistance(a, b); ok {
		t.Fatalf("ProxyDistance should report unavailable for Hamming")
	}
}

func TestHammingRoundTrip(t *testing.T) {
	s := NewHamming(8)
	obj, err := s.ParseObject(0, "", []byte("10110010"))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if got := string(s.SerializeObject(obj)); got != "10110010" {
		t.Fatalf("SerializeObject = %q, want %q", got, "10110010")
	}
}

func TestHammingInvalidBitRejected(t *testing.T) {
	s := NewHamming(4)
	if _, err := s.ParseObject(0, "", []byte("10x1")); err == nil {
		t.Fatalf("expected an error for a non-bit character")
	}
}

func TestHammingBitCountMismatchRejected(t *testing.T) {
	s := NewHamming(8)
	if _, err := s.ParseObject(0, "", []byte("101")); err == nil {
		t.Fatalf("expected an error for a bit-count mismatch")
	}
}

var _ ann.Space[float64] = (*Hamming)(nil)
