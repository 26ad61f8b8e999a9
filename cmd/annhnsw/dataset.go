package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/liliang-cn/hnswgo/internal/corpus"
	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// loadObjects reads up to max records (0 = unlimited) from path, which is
// either a plain-text dataset/query file (one record per line, parsed via
// space.ParseObject) or a "sqlite://<dsn>" corpus. Text records get ids
// 0, 1, 2, ... in file order; blank lines are skipped and take no id.
func loadObjects(ctx context.Context, path string, space ann.Space[float64], max int) ([]*ann.Object, error) {
	if path == "" {
		return nil, ann.Wrap("load_objects", ann.InvalidParameter, fmt.Errorf("no file given"))
	}
	if dsn, ok := strings.CutPrefix(path, "sqlite://"); ok {
		return loadFromCorpus(ctx, dsn, max)
	}
	return loadFromTextFile(path, space, max)
}

func loadFromCorpus(ctx context.Context, dsn string, max int) ([]*ann.Object, error) {
	store, err := corpus.Open(dsn)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	objects, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if max > 0 && len(objects) > max {
		objects = objects[:max]
	}
	return objects, nil
}

func loadFromTextFile(path string, space ann.Space[float64], max int) ([]*ann.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ann.Wrap("load_objects", ann.IoError, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var objects []*ann.Object
	for sc.Scan() {
		if max > 0 && len(objects) >= max {
			break
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		obj, err := space.ParseObject(int64(len(objects)), "", []byte(line))
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, ann.Wrap("load_objects", ann.IoError, err)
	}
	return objects, nil
}
