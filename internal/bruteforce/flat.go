// Package bruteforce is a linear-scan exact-kNN oracle used to measure
// recall of the approximate HNSW index against ground truth.
package bruteforce

import (
	"sync"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// Index is an exact O(n) nearest-neighbor index over a generic distance
// space, used as ground truth when checking the recall of an approximate
// search.
type Index[D ann.Distance] struct {
	mu      sync.RWMutex
	space   ann.Space[D]
	objects []*ann.Object
}

// New returns an empty exact index over space.
func New[D ann.Distance](space ann.Space[D]) *Index[D] {
	return &Index[D]{space: space}
}

// Insert adds obj to the index.
func (f *Index[D]) Insert(obj *ann.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, obj)
}

// Size returns the number of indexed objects.
func (f *Index[D]) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.objects)
}

// SearchKNN returns the k nearest objects to query, sorted by ascending
// distance, computed by scanning every indexed object.
func (f *Index[D]) SearchKNN(query *ann.Object, k int) []ann.Result[D] {
	f.mu.RLock()
	defer f.mu.RUnlock()

	q := ann.NewKnnQueue[D](k)
	for _, obj := range f.objects {
		if obj.ID == query.ID {
			continue
		}
		q.Push(f.space.Distance(obj, query), obj)
	}
	return q.DrainSortedAscending()
}

// Recall computes the fraction of the exact top-k neighbor set for query
// whose object IDs appear in approx (an approximate result set). It returns
// 1 when the exact set is empty.
func Recall[D ann.Distance](f *Index[D], query *ann.Object, k int, approx []ann.Result[D]) float64 {
	exact := f.SearchKNN(query, k)
	exactIDs := make(map[int64]struct{}, len(exact))
	for _, r := range exact {
		exactIDs[r.Object.ID] = struct{}{}
	}
	if len(exact) == 0 {
		return 1
	}
	var hit int
	for _, r := range approx {
		if _, ok := exactIDs[r.Object.ID]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(exact))
}
