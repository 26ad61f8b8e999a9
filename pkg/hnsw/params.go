package hnsw

import (
	"fmt"
	"math"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// DelaunayType selects the neighbor-pruning heuristic run after each
// per-layer beam search.
type DelaunayType int

const (
	// DelaunayNaive keeps the M closest candidates, no pruning.
	DelaunayNaive DelaunayType = iota
	// DelaunayHeuristicReopen runs the pruning rule and may reopen
	// previously discarded candidates.
	DelaunayHeuristicReopen
	// DelaunayHeuristicClosed runs the pruning rule over only the
	// candidates already present in the beam.
	DelaunayHeuristicClosed
	// DelaunayHeuristicExpand additionally expands the beam by each
	// candidate's one-hop neighbors before pruning.
	DelaunayHeuristicExpand
)

func (d DelaunayType) String() string {
	switch d {
	case DelaunayNaive:
		return "naive"
	case DelaunayHeuristicReopen:
		return "heuristic_reopen"
	case DelaunayHeuristicClosed:
		return "heuristic_closed"
	case DelaunayHeuristicExpand:
		return "heuristic_expand"
	default:
		return "unknown"
	}
}

// SearchMethod selects the layer-0 traversal bookkeeping used at query time.
type SearchMethod int

const (
	// SearchOld maintains separate min-heap/max-heap candidate bookkeeping.
	SearchOld SearchMethod = iota
	// SearchV1Merge merges the two heaps when candidates pile up; recall
	// is equivalent to SearchOld but wall-clock and exact stop condition
	// at a saturated beam differ.
	SearchV1Merge
)

func (m SearchMethod) String() string {
	switch m {
	case SearchOld:
		return "old"
	case SearchV1Merge:
		return "v1merge"
	default:
		return "unknown"
	}
}

// Params configures an HnswIndex build. It is a plain struct, not a generic
// config framework, covering every knob the index exposes.
type Params struct {
	M              int
	M0             int // 0 means "default to 2*M"
	EfConstruction int
	Ef             int // query-time default; SetQueryTimeParams overrides per-search
	DelaunayType   DelaunayType
	IndexThreadQty int
	UseProxyDist   bool
	SearchMethod   SearchMethod
	Seed           int64
}

// DefaultParams returns a Params with conservative, commonly-used defaults.
func DefaultParams() Params {
	return Params{
		M:              16,
		EfConstruction: 200,
		Ef:             10,
		DelaunayType:   DelaunayHeuristicClosed,
		IndexThreadQty: 1,
		SearchMethod:   SearchOld,
	}
}

// Validate fills in derived defaults and rejects out-of-range values.
func (p *Params) Validate() error {
	if p.M < 1 {
		return ann.Wrap("params.validate", ann.InvalidParameter, fmt.Errorf("M must be >= 1, got %d", p.M))
	}
	if p.M0 == 0 {
		p.M0 = 2 * p.M
	}
	if p.M0 < p.M {
		return ann.Wrap("params.validate", ann.InvalidParameter, fmt.Errorf("M0 (%d) must be >= M (%d)", p.M0, p.M))
	}
	if p.EfConstruction < 1 {
		return ann.Wrap("params.validate", ann.InvalidParameter, fmt.Errorf("efConstruction must be >= 1, got %d", p.EfConstruction))
	}
	if p.Ef < 1 {
		p.Ef = p.EfConstruction
	}
	if p.DelaunayType < DelaunayNaive || p.DelaunayType > DelaunayHeuristicExpand {
		return ann.Wrap("params.validate", ann.InvalidParameter, fmt.Errorf("unknown delaunay_type %d", p.DelaunayType))
	}
	if p.IndexThreadQty < 1 {
		p.IndexThreadQty = 1
	}
	if p.SearchMethod != SearchOld && p.SearchMethod != SearchV1Merge {
		return ann.Wrap("params.validate", ann.InvalidParameter, fmt.Errorf("unknown search method %d", p.SearchMethod))
	}
	return nil
}

// levelMult is 1/ln(M), the geometric-distribution parameter for level
// sampling.
func (p *Params) levelMult() float64 {
	return 1.0 / math.Log(float64(p.M))
}
