// Package idgen provides the generators of load identifiers.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artpar/racksdb/ports"
)

// UUID generates random UUID v4 identifiers.
type UUID struct{}

// New returns a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

var _ ports.IDGenerator = UUID{}

// Sequential generates "<prefix><n>" identifiers counting from 1. Tests use
// it for predictable load identifiers.
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential returns a sequential generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next identifier.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

// Reset restarts the count.
func (s *Sequential) Reset() {
	s.counter.Store(0)
}

var _ ports.IDGenerator = (*Sequential)(nil)
