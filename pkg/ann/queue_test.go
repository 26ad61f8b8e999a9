package ann

import (
	"math"
	"testing"
)

func TestKnnQueueBasic(t *testing.T) {
	q := NewKnnQueue[float64](3)
	if q.TopDistance() != math.Inf(1) {
		t.Fatalf("empty queue TopDistance = %v, want +Inf", q.TopDistance())
	}

	items := []struct {
		dist float64
		id   int64
	}{{5, 1}, {2, 2}, {8, 3}, {1, 4}, {9, 5}}
	for _, it := range items {
		q.Push(it.dist, &Object{ID: it.id})
	}

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	results := q.DrainSortedAscending()
	wantDist := []float64{1, 2, 5}
	wantID := []int64{4, 2, 1}
	for i, r := range results {
		if r.Distance != wantDist[i] || r.Object.ID != wantID[i] {
			t.Fatalf("result[%d] = (%v, %d), want (%v, %d)", i, r.Distance, r.Object.ID, wantDist[i], wantID[i])
		}
	}
}

func TestKnnQueueStrictLessThan(t *testing.T) {
	q := NewKnnQueue[float64](2)
	q.Push(5, &Object{ID: 1})
	q.Push(5, &Object{ID: 2})
	// queue is full at size 2; an equal-distance candidate must not replace
	// the current worst, per the strict "<" comparator rule.
	q.Push(5, &Object{ID: 3})
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	results := q.DrainSortedAscending()
	for _, r := range results {
		if r.Object.ID == 3 {
			t.Fatalf("tie-distance candidate displaced an existing entry")
		}
	}
}

func TestKnnQueueFewerThanK(t *testing.T) {
	q := NewKnnQueue[float64](5)
	q.Push(1, &Object{ID: 1})
	q.Push(2, &Object{ID: 2})
	if q.Full() {
		t.Fatalf("Full() = true with 2 of 5 slots used")
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}
