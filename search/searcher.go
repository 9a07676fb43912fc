// Package search implements the pluggable search strategies: FullSearch,
// RandomSearch, Annealing, and PSO. Every strategy walks the same legal
// Configuration set produced by kernel.Info.BuildConfigurations and reports
// back execution times so the next index can be chosen.
package search

import (
	"fmt"
	"io"
	"math"

	"github.com/oclbench/cltune/kernel"
)

// Searcher is the strategy interface every search algorithm implements:
// NumConfigurations/GetConfiguration hand out work, PushExecutionTime/
// CalculateNextIndex feed results back.
type Searcher interface {
	NumConfigurations() int
	GetConfiguration() kernel.Configuration
	PushExecutionTime(t float64)
	CalculateNextIndex()
	PrintLog(w io.Writer)
}

// base holds the state every strategy shares: the legal configuration set,
// per-configuration execution times, the order configurations were
// explored in, and the index currently on offer.
type base struct {
	configurations []kernel.Configuration
	executionTimes []float64
	exploredIndices []int
	index          int
}

func newBase(configurations []kernel.Configuration) base {
	times := make([]float64, len(configurations))
	for i := range times {
		times[i] = math.Inf(1)
	}
	return base{
		configurations: configurations,
		executionTimes: times,
	}
}

func (b *base) NumConfigurations() int {
	return len(b.configurations)
}

func (b *base) GetConfiguration() kernel.Configuration {
	return b.configurations[b.index]
}

// PushExecutionTime records the timing for the index most recently handed
// out by GetConfiguration.
func (b *base) PushExecutionTime(t float64) {
	b.exploredIndices = append(b.exploredIndices, b.index)
	b.executionTimes[b.index] = t
}

// PrintLog writes a step;index;time CSV of every configuration explored.
func (b *base) PrintLog(w io.Writer) {
	fmt.Fprintf(w, "step;index;time\n")
	for step, idx := range b.exploredIndices {
		fmt.Fprintf(w, "%d;%d;%.3f\n", step, idx, b.executionTimes[idx])
	}
}
