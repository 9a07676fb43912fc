// Package result implements the append-only result ledger and reporting:
// one TunerResult per evaluated Configuration, a Store that accumulates
// them, and a Reporter that renders them through the logging package rather
// than raw stdout writes.
package result

import (
	"math"

	"github.com/google/uuid"

	"github.com/oclbench/cltune/kernel"
)

// TunerResult is one kernel evaluation's outcome. RunID correlates a result
// with the log lines that carry it as run_id.
type TunerResult struct {
	RunID         string
	KernelName    string
	Time          float64 // milliseconds; math.Inf(1) marks a failed run
	LocalThreads  int
	Verified      bool
	Configuration kernel.Configuration
}

// NewRunID generates a fresh correlation id for one Core.runOnce evaluation.
func NewRunID() string {
	return uuid.NewString()
}

// Failed reports whether the run never produced a usable time.
func (r TunerResult) Failed() bool {
	return math.IsInf(r.Time, 1)
}
