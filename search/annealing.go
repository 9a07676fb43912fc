package search

import (
	"math"
	"math/rand/v2"

	"github.com/oclbench/cltune/kernel"
)

// Annealing is a fixed-temperature simulated-annealing strategy: no cooling
// schedule, a single temperature held for the whole run. Each step proposes
// a one-parameter neighbor of the current configuration and accepts it via
// the Metropolis criterion.
type Annealing struct {
	base
	numVisits   int
	visited     int
	temperature float64

	names      []string
	domains    [][]int
	valueIndex []map[int]int
	byKey      map[string]int

	current int
}

// NewAnnealing builds an Annealing searcher that runs
// max(1, floor(fraction*len(configurations))) steps at the given fixed
// temperature.
func NewAnnealing(configurations []kernel.Configuration, fraction, temperature float64) *Annealing {
	n := int(fraction * float64(len(configurations)))
	if n < 1 {
		n = 1
	}
	names, domains, valueIndex := paramDomains(configurations)
	s := &Annealing{
		base:        newBase(configurations),
		numVisits:   n,
		temperature: temperature,
		names:       names,
		domains:     domains,
		valueIndex:  valueIndex,
		byKey:       keyIndex(configurations),
	}
	s.current = rand.IntN(len(configurations))
	s.index = s.current
	return s
}

// NumConfigurations reports the fixed step budget, not the size of the
// legal set.
func (s *Annealing) NumConfigurations() int {
	return s.numVisits
}

// CalculateNextIndex applies the Metropolis acceptance rule to the just
// evaluated candidate, then proposes a fresh one-parameter-step neighbor of
// whichever configuration is now current.
func (s *Annealing) CalculateNextIndex() {
	s.visited++
	if s.visited >= s.numVisits {
		return
	}

	candidateTime := s.executionTimes[s.index]
	currentTime := s.executionTimes[s.current]
	delta := candidateTime - currentTime
	if delta <= 0 || rand.Float64() < math.Exp(-delta/s.temperature) {
		s.current = s.index
	}

	s.index = s.neighbor(s.current)
}

// neighbor picks a parameter uniformly, changes its setting to a different
// value drawn uniformly from that parameter's value-list, and looks up the
// resulting composite in the legal set. It re-draws up to a bounded number
// of times on a constraint-filtered miss, and remains at base if none of
// those draws lands on a legal Configuration.
func (s *Annealing) neighbor(base int) int {
	cfg := s.configurations[base]
	d := len(cfg)
	if d == 0 {
		return base
	}
	for attempt := 0; attempt < 2*d; attempt++ {
		dim := rand.IntN(d)
		domain := s.domains[dim]
		if len(domain) < 2 {
			continue
		}
		curIdx := s.valueIndex[dim][cfg[dim].Value]
		newIdx := rand.IntN(len(domain) - 1)
		if newIdx >= curIdx {
			newIdx++
		}
		candidate := append(kernel.Configuration(nil), cfg...)
		candidate[dim] = kernel.Setting{Name: cfg[dim].Name, Value: domain[newIdx]}
		if idx, ok := s.byKey[candidate.Key()]; ok {
			return idx
		}
	}
	return base
}
