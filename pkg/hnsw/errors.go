package hnsw

import (
	"errors"
	"fmt"
)

var (
	errNotBuilt     = errors.New("index has not been built or loaded yet")
	errCorruptLevel = errors.New("node claims a level above top_level")
	errBadNeighbor  = errors.New("neighbor id out of range")
	errNotBidi      = errors.New("neighbor edge is not bidirectional")
)

func errUnknownID(id int64) error {
	return fmt.Errorf("object id %d is not present in the index", id)
}
