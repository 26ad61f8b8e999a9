package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/liliang-cn/hnswgo/pkg/ann"
	"github.com/liliang-cn/hnswgo/pkg/ann/spaces"
	"github.com/liliang-cn/hnswgo/pkg/hnsw"
)

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := ann.KindOf(err)
	if !ok {
		return 3
	}
	switch kind {
	case ann.InvalidParameter, ann.InvalidObject:
		return 1
	case ann.IoError:
		return 2
	default:
		return 3
	}
}

// parseKV splits a comma- or space-separated list of key=value pairs,
// as used by --createIndex and --queryTimeParams.
func parseKV(s string) map[string]string {
	out := make(map[string]string)
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func newSpace(spec string) (ann.Space[float64], error) {
	name, paramStr := spec, ""
	if i := strings.Index(spec, ":"); i >= 0 {
		name, paramStr = spec[:i], spec[i+1:]
	}
	params := parseKV(paramStr)
	dim := 0
	if v, ok := params["dim"]; ok {
		dim, _ = strconv.Atoi(v)
	}

	switch name {
	case "l2":
		return spaces.NewL2(dim), nil
	case "cosinesimil":
		return spaces.NewCosine(dim), nil
	case "bit_hamming":
		bits := 0
		if v, ok := params["bits"]; ok {
			bits, _ = strconv.Atoi(v)
		}
		return spaces.NewHamming(bits), nil
	default:
		return nil, ann.Wrap("space_type", ann.InvalidParameter, fmt.Errorf("unknown space %q", name))
	}
}

func buildParams(seed int64) (hnsw.Params, error) {
	p := hnsw.DefaultParams()
	p.Seed = seed
	kv := parseKV(flagCreateIndex)
	if v, ok := kv["M"]; ok {
		p.M, _ = strconv.Atoi(v)
	}
	if v, ok := kv["M0"]; ok {
		p.M0, _ = strconv.Atoi(v)
	}
	if v, ok := kv["efConstruction"]; ok {
		p.EfConstruction, _ = strconv.Atoi(v)
	}
	if v, ok := kv["delaunay_type"]; ok {
		n, _ := strconv.Atoi(v)
		p.DelaunayType = hnsw.DelaunayType(n)
	}
	if v, ok := kv["indexThreadQty"]; ok {
		p.IndexThreadQty, _ = strconv.Atoi(v)
	}
	if v, ok := kv["useProxyDist"]; ok {
		p.UseProxyDist = v == "true" || v == "1"
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func parseQueryTimeParams(s string) (ef int, method hnsw.SearchMethod) {
	ef, method = 10, hnsw.SearchOld
	kv := parseKV(s)
	if v, ok := kv["ef"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			ef = n
		}
	}
	if kv["algo"] == "v1merge" {
		method = hnsw.SearchV1Merge
	}
	return
}

func parseKList(s string) ([]int, error) {
	var ks []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		k, err := strconv.Atoi(f)
		if err != nil || k < 1 {
			return nil, ann.Wrap("knn", ann.InvalidParameter, fmt.Errorf("invalid k %q", f))
		}
		ks = append(ks, k)
	}
	if len(ks) == 0 {
		return nil, ann.Wrap("knn", ann.InvalidParameter, fmt.Errorf("--knn must list at least one k"))
	}
	return ks, nil
}

func randomSeed() int64 {
	u := uuid.New()
	return int64(binary.LittleEndian.Uint64(u[:8]))
}

func runBenchmark() error {
	if flagMethod != "hnsw" {
		return ann.Wrap("cli", ann.InvalidParameter, fmt.Errorf("unsupported method %q", flagMethod))
	}
	space, err := newSpace(flagSpaceType)
	if err != nil {
		return err
	}

	logLevel := hnsw.LevelWarn
	if flagVerbose {
		logLevel = hnsw.LevelInfo
	}
	logger := hnsw.NewStdLogger(logLevel)
	ctx := context.Background()

	var idx *hnsw.HnswIndex[float64]

	if flagLoadIndex != "" {
		idx, err = hnsw.Load(flagLoadIndex, space, logger)
		if err != nil {
			return err
		}
	} else {
		seed := flagSeed
		if seed == 0 {
			seed = randomSeed()
			logger.Info("generated run seed", "seed", seed, "run_id", uuid.NewString())
		}
		params, err := buildParams(seed)
		if err != nil {
			return err
		}
		idx, err = hnsw.NewIndex[float64](space, params, logger)
		if err != nil {
			return err
		}
		objects, err := loadObjects(ctx, flagDataFile, space, flagMaxNumData)
		if err != nil {
			return err
		}
		if err := idx.Build(ctx, objects); err != nil {
			return err
		}
	}

	if flagSaveIndex != "" {
		if err := idx.Save(flagSaveIndex); err != nil {
			return err
		}
	}

	if flagQueryFile == "" {
		return nil
	}

	queries, err := loadObjects(ctx, flagQueryFile, space, flagMaxNumQuery)
	if err != nil {
		return err
	}

	ef, method := parseQueryTimeParams(flagQueryTimeParams)
	idx.SetQueryTimeParams(ef, method)

	ks, err := parseKList(flagKNN)
	if err != nil {
		return err
	}

	for _, k := range ks {
		for _, q := range queries {
			results, err := idx.SearchKNN(ctx, q, k)
			if err != nil {
				return err
			}
			fmt.Printf("k=%d query=%d:", k, q.ID)
			for _, r := range results {
				fmt.Printf(" %d:%v", r.Object.ID, r.Distance)
			}
			fmt.Println()
		}
	}
	return nil
}
