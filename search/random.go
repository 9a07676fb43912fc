package search

import (
	"math/rand/v2"

	"github.com/oclbench/cltune/kernel"
)

// RandomSearch samples num_visits = max(1, floor(fraction*N)) configurations
// with replacement.
type RandomSearch struct {
	base
	numVisits int
	visited   int
}

// NewRandomSearch builds a RandomSearch that will visit
// max(1, floor(fraction*len(configurations))) configurations.
func NewRandomSearch(configurations []kernel.Configuration, fraction float64) *RandomSearch {
	n := int(fraction * float64(len(configurations)))
	if n < 1 {
		n = 1
	}
	s := &RandomSearch{base: newBase(configurations), numVisits: n}
	s.index = rand.IntN(len(configurations))
	return s
}

// NumConfigurations reports the sampling budget, not the size of the full
// legal set — Tune's loop runs exactly this many iterations.
func (s *RandomSearch) NumConfigurations() int {
	return s.numVisits
}

// CalculateNextIndex draws a fresh uniform index with replacement.
func (s *RandomSearch) CalculateNextIndex() {
	s.visited++
	if s.visited < s.numVisits {
		s.index = rand.IntN(len(s.configurations))
	}
}
