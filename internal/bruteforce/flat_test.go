package bruteforce

import (
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/ann"
	"github.com/liliang-cn/hnswgo/pkg/ann/spaces"
)

func vec(id int64, xy [2]float32) *ann.Object {
	return &ann.Object{ID: id, Data: spaces.EncodeVector(xy[:])}
}

func TestFlatIndexSearchKNN(t *testing.T) {
	space := spaces.NewL2(2)
	idx := New[float64](space)
	idx.Insert(vec(0, [2]float32{0, 0}))
	idx.Insert(vec(1, [2]float32{1, 0}))
	idx.Insert(vec(2, [2]float32{0, 2}))
	idx.Insert(vec(3, [2]float32{5, 5}))

	if idx.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", idx.Size())
	}

	results := idx.SearchKNN(vec(99, [2]float32{0, 0}), 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Object.ID != 0 || results[0].Distance != 0 {
		t.Fatalf("closest = (%d, %v), want (0, 0)", results[0].Object.ID, results[0].Distance)
	}
	if results[1].Object.ID != 1 {
		t.Fatalf("second closest id = %d, want 1", results[1].Object.ID)
	}
}

func TestFlatIndexExcludesSelfByID(t *testing.T) {
	space := spaces.NewL2(2)
	idx := New[float64](space)
	idx.Insert(vec(0, [2]float32{0, 0}))
	idx.Insert(vec(1, [2]float32{100, 100}))

	results := idx.SearchKNN(vec(0, [2]float32{0, 0}), 2)
	for _, r := range results {
		if r.Object.ID == 0 {
			t.Fatalf("SearchKNN should exclude the object matching the query's own id")
		}
	}
}

func TestRecallPerfectWhenApproxMatchesExact(t *testing.T) {
	space := spaces.NewL2(2)
	idx := New[float64](space)
	idx.Insert(vec(0, [2]float32{0, 0}))
	idx.Insert(vec(1, [2]float32{1, 0}))
	idx.Insert(vec(2, [2]float32{2, 0}))

	query := vec(99, [2]float32{0, 0})
	exact := idx.SearchKNN(query, 2)
	if got := Recall(idx, query, 2, exact); got != 1.0 {
		t.Fatalf("Recall with exact-matching approx = %v, want 1.0", got)
	}
}

func TestRecallZeroWhenApproxDisjoint(t *testing.T) {
	space := spaces.NewL2(2)
	idx := New[float64](space)
	idx.Insert(vec(0, [2]float32{0, 0}))
	idx.Insert(vec(1, [2]float32{1, 0}))
	idx.Insert(vec(2, [2]float32{50, 50}))

	query := vec(99, [2]float32{0, 0})
	bogus := []ann.Result[float64]{{Distance: 999, Object: &ann.Object{ID: 2}}}
	if got := Recall(idx, query, 2, bogus); got != 0 {
		t.Fatalf("Recall with disjoint approx = %v, want 0", got)
	}
}
