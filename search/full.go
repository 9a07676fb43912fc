package search

import "github.com/oclbench/cltune/kernel"

// FullSearch visits every legal Configuration exactly once, in the order
// kernel.Info.BuildConfigurations produced them.
type FullSearch struct {
	base
}

// NewFullSearch builds a FullSearch over the given legal configuration set.
func NewFullSearch(configurations []kernel.Configuration) *FullSearch {
	return &FullSearch{base: newBase(configurations)}
}

// CalculateNextIndex advances to the next configuration in enumeration
// order, wrapping is never observed in practice: Tune's loop runs exactly
// NumConfigurations iterations.
func (s *FullSearch) CalculateNextIndex() {
	s.index++
}
