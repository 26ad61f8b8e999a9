package main

import (
	"errors"
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/ann"
	"github.com/liliang-cn/hnswgo/pkg/hnsw"
)

func TestParseKV(t *testing.T) {
	got := parseKV("M=16,efConstruction=200 delaunay_type=2")
	want := map[string]string{"M": "16", "efConstruction": "200", "delaunay_type": "2"}
	if len(got) != len(want) {
		t.Fatalf("parseKV returned %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("parseKV[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseKVEmpty(t *testing.T) {
	got := parseKV("")
	if len(got) != 0 {
		t.Fatalf("parseKV(\"\") = %v, want empty map", got)
	}
}

func TestNewSpaceL2(t *testing.T) {
	s, err := newSpace("l2:dim=4")
	if err != nil {
		t.Fatalf("newSpace: %v", err)
	}
	if s.Name() != "l2" {
		t.Fatalf("Name() = %q, want l2", s.Name())
	}
}

func TestNewSpaceCosine(t *testing.T) {
	s, err := newSpace("cosinesimil:dim=8")
	if err != nil {
		t.Fatalf("newSpace: %v", err)
	}
	if s.Name() != "cosinesimil" {
		t.Fatalf("Name() = %q, want cosinesimil", s.Name())
	}
}

func TestNewSpaceHamming(t *testing.T) {
	s, err := newSpace("bit_hamming:bits=64")
	if err != nil {
		t.Fatalf("newSpace: %v", err)
	}
	if s.Name() != "bit_hamming" {
		t.Fatalf("Name() = %q, want bit_hamming", s.Name())
	}
}

func TestNewSpaceUnknown(t *testing.T) {
	if _, err := newSpace("madeup:dim=1"); err == nil {
		t.Fatalf("expected an error for an unknown space name")
	}
}

func TestParseKList(t *testing.T) {
	ks, err := parseKList("1,5,10")
	if err != nil {
		t.Fatalf("parseKList: %v", err)
	}
	want := []int{1, 5, 10}
	if len(ks) != len(want) {
		t.Fatalf("parseKList returned %d values, want %d", len(ks), len(want))
	}
	for i := range want {
		if ks[i] != want[i] {
			t.Fatalf("ks[%d] = %d, want %d", i, ks[i], want[i])
		}
	}
}

func TestParseKListRejectsZero(t *testing.T) {
	if _, err := parseKList("0,5"); err == nil {
		t.Fatalf("expected an error for k=0")
	}
}

func TestParseKListRejectsEmpty(t *testing.T) {
	if _, err := parseKList(""); err == nil {
		t.Fatalf("expected an error for an empty --knn list")
	}
}

func TestParseQueryTimeParams(t *testing.T) {
	ef, method := parseQueryTimeParams("ef=50,algo=v1merge")
	if ef != 50 {
		t.Fatalf("ef = %d, want 50", ef)
	}
	if method != hnsw.SearchV1Merge {
		t.Fatalf("method = %v, want SearchV1Merge", method)
	}
}

func TestParseQueryTimeParamsDefaults(t *testing.T) {
	ef, method := parseQueryTimeParams("")
	if ef != 10 {
		t.Fatalf("default ef = %d, want 10", ef)
	}
	if method != hnsw.SearchOld {
		t.Fatalf("default method = %v, want SearchOld", method)
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ann.Wrap("op", ann.InvalidParameter, errors.New("x")), 1},
		{ann.Wrap("op", ann.InvalidObject, errors.New("x")), 1},
		{ann.Wrap("op", ann.IoError, errors.New("x")), 2},
		{ann.Wrap("op", ann.CorruptIndex, errors.New("x")), 3},
		{errors.New("plain error"), 3},
	}
	for _, c := range cases {
		if got := exitCodeFor(c.err); got != c.want {
			t.Fatalf("exitCodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestBuildParamsOverridesDefaults(t *testing.T) {
	old := flagCreateIndex
	flagCreateIndex = "M=8,efConstruction=32,delaunay_type=1"
	defer func() { flagCreateIndex = old }()

	p, err := buildParams(123)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.M != 8 || p.EfConstruction != 32 || p.DelaunayType != hnsw.DelaunayHeuristicReopen {
		t.Fatalf("buildParams() = %+v, want M=8 efConstruction=32 delaunay_type=1", p)
	}
	if p.Seed != 123 {
		t.Fatalf("Seed = %d, want 123", p.Seed)
	}
}
