package ann

import "testing"

func TestVisitedListBasic(t *testing.T) {
	pool := NewVisitedPool()
	vl := pool.Acquire(10)
	if vl.Visited(3) {
		t.Fatalf("node 3 should not be visited yet")
	}
	vl.Visit(3)
	if !vl.Visited(3) {
		t.Fatalf("node 3 should be visited")
	}
	if vl.Visited(4) {
		t.Fatalf("node 4 should not be visited")
	}
	pool.Release(vl)
}

func TestVisitedListReacquireClearsMarks(t *testing.T) {
	pool := NewVisitedPool()
	vl := pool.Acquire(5)
	vl.Visit(1)
	vl.Visit(2)
	pool.Release(vl)

	vl2 := pool.Acquire(5)
	if vl2.Visited(1) || vl2.Visited(2) {
		t.Fatalf("reacquired list should start with no visited marks")
	}
}

func TestVisitedListGrows(t *testing.T) {
	pool := NewVisitedPool()
	vl := pool.Acquire(4)
	vl.Visit(3)
	pool.Release(vl)

	vl2 := pool.Acquire(20)
	if vl2.Visited(3) {
		t.Fatalf("growth should not carry over stale marks")
	}
	vl2.Visit(19)
	if !vl2.Visited(19) {
		t.Fatalf("node 19 should be visited after growth")
	}
}

func TestVisitedListVersionWraps(t *testing.T) {
	pool := NewVisitedPool()
	var vl *VisitedList
	for i := 0; i < 260; i++ {
		vl = pool.Acquire(8)
		vl.Visit(0)
		pool.Release(vl)
	}
	vl = pool.Acquire(8)
	if vl.Visited(1) {
		t.Fatalf("node never visited in this acquisition should read false after version wrap")
	}
}
