package result

import (
	"fmt"

	"github.com/oclbench/cltune/internal/clog"
	"github.com/oclbench/cltune/kernel"
)

// Reporter renders TunerResults through clog.
type Reporter struct {
	log clog.Logger
}

// NewReporter builds a Reporter that logs through l.
func NewReporter(l clog.Logger) *Reporter {
	return &Reporter{log: l}
}

// ReportRun logs one evaluated Configuration's outcome: a failure tag for
// a run that never produced a time, a warning tag for a run that produced
// a time but failed verification, an OK tag otherwise.
func (r *Reporter) ReportRun(res TunerResult, index, total int) {
	settings := configString(res.Configuration)
	switch {
	case res.Failed():
		clog.Failure(r.log, "kernel run failed", "run_id", res.RunID, "kernel", res.KernelName, "index", index, "total", total, "settings", settings)
	case !res.Verified:
		clog.Warning(r.log, "verification mismatch", "run_id", res.RunID, "kernel", res.KernelName, "time_ms", res.Time, "index", index, "total", total, "settings", settings)
	default:
		clog.OK(r.log, "kernel run completed", "run_id", res.RunID, "kernel", res.KernelName, "time_ms", res.Time, "index", index, "total", total, "settings", settings)
	}
}

// ReportBest logs the overall best result found by a Tune run.
func (r *Reporter) ReportBest(res TunerResult) {
	clog.Best(r.log, "best configuration", "kernel", res.KernelName, "time_ms", res.Time, "settings", configString(res.Configuration))
}

func configString(cfg kernel.Configuration) string {
	return fmt.Sprintf("%v", cfg.Values())
}
