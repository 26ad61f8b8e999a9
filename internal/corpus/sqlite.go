// Package corpus is a small SQLite-backed object store: an alternative to a
// plain-text dataset file for --dataFile/--queryFile, feeding HnswIndex.Build
// from a persistent table instead of a line-oriented file.
package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/liliang-cn/hnswgo/pkg/ann"
)

// Store is a SQLite-backed object corpus: id, label, raw bytes.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, initializes the schema of) the sqlite
// database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ann.Wrap("corpus.open", ann.IoError, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS objects (
		id INTEGER PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, ann.Wrap("corpus.open", ann.IoError, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put upserts an object's raw bytes.
func (s *Store) Put(ctx context.Context, obj *ann.Object) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (id, label, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label, data = excluded.data`,
		obj.ID, obj.Label, obj.Data)
	if err != nil {
		return ann.Wrap("corpus.put", ann.IoError, err)
	}
	return nil
}

// LoadAll reads every stored object, ready to hand to HnswIndex.Build or
// AddBatch, mirroring what loading a plain-text dataset file produces.
func (s *Store) LoadAll(ctx context.Context) ([]*ann.Object, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, data FROM objects ORDER BY id")
	if err != nil {
		return nil, ann.Wrap("corpus.load_all", ann.IoError, err)
	}
	defer rows.Close()

	var objects []*ann.Object
	var scanErrs int
	for rows.Next() {
		var id int64
		var label string
		var data []byte
		if err := rows.Scan(&id, &label, &data); err != nil {
			scanErrs++
			continue
		}
		objects = append(objects, &ann.Object{ID: id, Label: label, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, ann.Wrap("corpus.load_all", ann.IoError, err)
	}
	if scanErrs > 0 {
		return objects, ann.Wrap("corpus.load_all", ann.InvalidObject, fmt.Errorf("%d rows failed to scan", scanErrs))
	}
	return objects, nil
}

// Count returns the number of stored objects.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&n)
	if err != nil {
		return 0, ann.Wrap("corpus.count", ann.IoError, err)
	}
	return n, nil
}
