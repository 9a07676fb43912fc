package search

import (
	"math"
	"math/rand/v2"

	"github.com/oclbench/cltune/kernel"
	"gonum.org/v1/gonum/mat"
)

// PSO is a particle-swarm strategy over the legal Configuration set. Each
// particle's position is a vector of per-parameter domain indices; velocity
// bookkeeping uses gonum's mat.VecDense. Evaluation proceeds round-robin
// across the swarm, one particle per CalculateNextIndex call (an
// asynchronous PSO update).
type PSO struct {
	base
	numVisits int
	visited   int

	swarmSize                                        int
	influenceGlobal, influenceLocal, influenceRandom float64

	names      []string
	domains    [][]int
	valueIndex []map[int]int
	byKey      map[string]int

	positions       []*mat.VecDense
	velocities      []*mat.VecDense
	personalBestPos []*mat.VecDense
	personalBestFit []float64
	globalBestPos   *mat.VecDense
	globalBestFit   float64

	turn int
}

// NewPSO builds a PSO searcher with the given evaluation budget fraction,
// swarm size, and influence coefficients (global-best, personal-best,
// inertia/random).
func NewPSO(configurations []kernel.Configuration, fraction float64, swarmSize int, influenceGlobal, influenceLocal, influenceRandom float64) *PSO {
	n := int(fraction * float64(len(configurations)))
	if n < 1 {
		n = 1
	}
	names, domains, valueIndex := paramDomains(configurations)
	dims := len(domains)

	s := &PSO{
		base:              newBase(configurations),
		numVisits:         n,
		swarmSize:         swarmSize,
		influenceGlobal:   influenceGlobal,
		influenceLocal:    influenceLocal,
		influenceRandom:   influenceRandom,
		names:             names,
		domains:           domains,
		valueIndex:        valueIndex,
		byKey:             keyIndex(configurations),
		positions:         make([]*mat.VecDense, swarmSize),
		velocities:        make([]*mat.VecDense, swarmSize),
		personalBestPos:   make([]*mat.VecDense, swarmSize),
		personalBestFit:   make([]float64, swarmSize),
		globalBestFit:     math.Inf(1),
	}

	for p := 0; p < swarmSize; p++ {
		startIdx := rand.IntN(len(configurations))
		pos := domainPosition(configurations[startIdx], domains, valueIndex)
		s.positions[p] = pos
		s.velocities[p] = mat.NewVecDense(dims, nil)
		s.personalBestPos[p] = mat.VecDenseCopyOf(pos)
		s.personalBestFit[p] = math.Inf(1)
	}

	s.globalBestPos = mat.VecDenseCopyOf(s.positions[0])
	idx, _ := s.configIndex(s.positions[0])
	s.index = idx
	return s
}

// NumConfigurations reports the fixed evaluation budget.
func (s *PSO) NumConfigurations() int {
	return s.numVisits
}

// CalculateNextIndex applies the just-recorded fitness to the particle whose
// turn it was, updates the personal/global bests, advances that particle's
// velocity and position, and hands the next particle in round-robin order
// its (possibly stale, still legal) configuration to evaluate.
func (s *PSO) CalculateNextIndex() {
	s.visited++
	if s.visited >= s.numVisits {
		return
	}

	particle := s.turn % s.swarmSize
	fitness := s.executionTimes[s.index]

	if fitness < s.personalBestFit[particle] {
		s.personalBestFit[particle] = fitness
		s.personalBestPos[particle] = mat.VecDenseCopyOf(s.positions[particle])
	}
	if fitness < s.globalBestFit {
		s.globalBestFit = fitness
		s.globalBestPos = mat.VecDenseCopyOf(s.positions[particle])
	}

	s.step(particle)

	s.turn++
	next := s.turn % s.swarmSize
	idx, _ := s.configIndex(s.positions[next])
	s.index = idx
}

// step updates one particle's velocity with the standard PSO rule (inertia
// plus cognitive and social terms with per-dimension random coefficients),
// then computes a candidate position by rounding and clamping each
// dimension's velocity to one grid step. If the candidate composite is a
// legal Configuration the particle moves to it; otherwise the particle's
// position is left unchanged for this step.
func (s *PSO) step(particle int) {
	dims := len(s.domains)
	pos := s.positions[particle]
	vel := s.velocities[particle]
	pbest := s.personalBestPos[particle]

	candidate := mat.NewVecDense(dims, nil)
	for d := 0; d < dims; d++ {
		r1, r2 := rand.Float64(), rand.Float64()
		inertia := s.influenceRandom * vel.AtVec(d)
		cognitive := s.influenceLocal * r1 * (pbest.AtVec(d) - pos.AtVec(d))
		social := s.influenceGlobal * r2 * (s.globalBestPos.AtVec(d) - pos.AtVec(d))
		v := inertia + cognitive + social
		vel.SetVec(d, v)

		step := quantizeStep(v)
		newIdx := int(pos.AtVec(d)) + step
		if newIdx < 0 {
			newIdx = 0
		}
		if maxIdx := len(s.domains[d]) - 1; newIdx > maxIdx {
			newIdx = maxIdx
		}
		candidate.SetVec(d, float64(newIdx))
	}

	if _, ok := s.configIndex(candidate); ok {
		s.positions[particle] = candidate
	}
}

// quantizeStep collapses a continuous velocity component to a single grid
// step: sign(round(v)) clamped to {-1, 0, +1}.
func quantizeStep(v float64) int {
	r := math.Round(v)
	switch {
	case r > 0:
		return 1
	case r < 0:
		return -1
	default:
		return 0
	}
}

// domainPosition converts a legal Configuration into its domain-index
// vector representation.
func domainPosition(cfg kernel.Configuration, domains [][]int, valueIndex []map[int]int) *mat.VecDense {
	v := mat.NewVecDense(len(cfg), nil)
	for i, s := range cfg {
		v.SetVec(i, float64(valueIndex[i][s.Value]))
	}
	return v
}

// configIndex maps a domain-index position onto its Configuration's index
// in the legal set, reporting false when that composite isn't legal.
func (s *PSO) configIndex(pos *mat.VecDense) (int, bool) {
	cfg := make(kernel.Configuration, len(s.domains))
	for d := range s.domains {
		idx := int(pos.AtVec(d))
		cfg[d] = kernel.Setting{Name: s.names[d], Value: s.domains[d][idx]}
	}
	idx, ok := s.byKey[cfg.Key()]
	return idx, ok
}
