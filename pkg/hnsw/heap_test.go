package hnsw

import "testing"

func TestMaxHeapPeekIsWorst(t *testing.T) {
	h := &maxHeap[float64]{}
	for _, d := range []float64{5, 1, 9, 3} {
		h.Push(candidate[float64]{dist: d})
	}
	if h.Peek().dist != 9 {
		t.Fatalf("Peek().dist = %v, want 9 (the largest)", h.Peek().dist)
	}
}

func TestMaxHeapSortedAscending(t *testing.T) {
	h := &maxHeap[float64]{}
	for _, d := range []float64{5, 1, 9, 3, 7} {
		h.Push(candidate[float64]{dist: d})
	}
	got := h.sortedAscending()
	want := []float64{1, 3, 5, 7, 9}
	for i, c := range got {
		if c.dist != want[i] {
			t.Fatalf("sortedAscending()[%d] = %v, want %v", i, c.dist, want[i])
		}
	}
}

func TestMinHeapPopsAscending(t *testing.T) {
	h := &minHeap[float64]{}
	for _, d := range []float64{5, 1, 9, 3, 7} {
		h.Push(candidate[float64]{dist: d})
	}
	want := []float64{1, 3, 5, 7, 9}
	for i := 0; h.Len() > 0; i++ {
		if got := h.Pop().dist; got != want[i] {
			t.Fatalf("Pop() #%d = %v, want %v", i, got, want[i])
		}
	}
}

func TestMaxHeapBoundedEviction(t *testing.T) {
	// Mirrors how searchLayer keeps only the best ef candidates: push, then
	// pop the worst whenever the heap grows past the bound.
	const ef = 3
	h := &maxHeap[float64]{}
	for _, d := range []float64{5, 1, 9, 3, 7, 0.5} {
		h.Push(candidate[float64]{dist: d})
		if h.Len() > ef {
			h.Pop()
		}
	}
	got := h.sortedAscending()
	want := []float64{0.5, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("final heap has %d items, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.dist != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, c.dist, want[i])
		}
	}
}
