package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers for products and orders.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

// UUID returns a generator of random version 4 UUID strings.
func UUID() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.New().String()
}

// Sequence yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}
