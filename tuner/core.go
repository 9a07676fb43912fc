// Package tuner implements the evaluation pipeline: the Core orchestrator
// that owns a device, a set of tunable kernels, an argument store, and a
// search strategy, and drives Tune() through compile -> bind args -> reset
// outputs -> timed launch -> verify for every legal Configuration.
package tuner

import (
	"fmt"
	"math"
	"os"

	"github.com/oclbench/cltune/argument"
	"github.com/oclbench/cltune/device"
	"github.com/oclbench/cltune/internal/clog"
	"github.com/oclbench/cltune/kernel"
	"github.com/oclbench/cltune/result"
	"github.com/oclbench/cltune/search"
)

// kNumRuns is the number of times each configuration is launched before
// keeping the minimum elapsed time.
const kNumRuns = 4

// kMaxL2Norm is the default per-element verification tolerance; VerifyOutputs
// scales it by each output's element count.
const kMaxL2Norm = 1e-4

// SearchMethod selects which search package strategy Tune uses for every
// parameterized kernel.
type SearchMethod int

const (
	FullSearchMethod SearchMethod = iota
	RandomSearchMethod
	AnnealingMethod
	PSOMethod
)

// Core is the tuner orchestrator.
type Core struct {
	dev    device.Device
	log    clog.Logger
	report *result.Reporter
	store  *result.Store
	args   *argument.Store

	kernels      []*kernel.Info
	referenceIdx int

	method        SearchMethod
	fraction      float64
	temperature   float64
	swarmSize     int
	influenceG    float64
	influenceL    float64
	influenceR    float64
	searchLogPath string

	tolerance float64
}

// New builds a Core bound to dev, logging through log. A nil log discards
// every log record instead of panicking on the first one.
func New(dev device.Device, log clog.Logger) *Core {
	if log == nil {
		log = clog.Discard()
	}
	return &Core{
		dev:          dev,
		log:          log,
		report:       result.NewReporter(log),
		store:        result.NewStore(),
		args:         argument.New(),
		referenceIdx: -1,
		method:       FullSearchMethod,
		fraction:     1.0,
		tolerance:    kMaxL2Norm,
	}
}

// Args exposes the argument Store so callers can use argument.AddInput,
// argument.AddOutput, and argument.AddScalar directly.
func (c *Core) Args() *argument.Store {
	return c.args
}

// SetTolerance overrides the default L2-norm verification tolerance.
func (c *Core) SetTolerance(t float64) {
	c.tolerance = t
}

// AddKernel registers a tunable kernel and returns its id, used to address
// it from Kernel (for parameter, constraint and modifier registration on the
// returned kernel.Info) and SetReference.
func (c *Core) AddKernel(name, source string, global, local []int) (int, error) {
	k, err := kernel.New(name, source, global, local)
	if err != nil {
		return -1, err
	}
	c.kernels = append(c.kernels, k)
	return len(c.kernels) - 1, nil
}

// Kernel returns the KernelInfo for id, for direct parameter/constraint
// registration.
func (c *Core) Kernel(id int) (*kernel.Info, error) {
	if id < 0 || id >= len(c.kernels) {
		return nil, fmt.Errorf("tuner: no kernel with id %d", id)
	}
	return c.kernels[id], nil
}

// SetReference marks kernel id as the reference implementation: Tune runs
// it once, unparameterized, and captures its output as ground truth for
// every other kernel's verification.
func (c *Core) SetReference(id int) error {
	if id < 0 || id >= len(c.kernels) {
		return fmt.Errorf("tuner: no kernel with id %d", id)
	}
	c.referenceIdx = id
	return nil
}

// UseFullSearch selects exhaustive enumeration.
func (c *Core) UseFullSearch() {
	c.method = FullSearchMethod
}

// UseRandomSearch selects RandomSearch, visiting
// max(1, floor(fraction*N)) configurations.
func (c *Core) UseRandomSearch(fraction float64) {
	c.method = RandomSearchMethod
	c.fraction = fraction
}

// UseAnnealing selects fixed-temperature simulated annealing.
func (c *Core) UseAnnealing(fraction, temperature float64) {
	c.method = AnnealingMethod
	c.fraction = fraction
	c.temperature = temperature
}

// UsePSO selects particle-swarm search.
func (c *Core) UsePSO(fraction float64, swarmSize int, influenceGlobal, influenceLocal, influenceRandom float64) {
	c.method = PSOMethod
	c.fraction = fraction
	c.swarmSize = swarmSize
	c.influenceG = influenceGlobal
	c.influenceL = influenceLocal
	c.influenceR = influenceRandom
}

// OutputSearchLog enables writing the step;index;time search log to path
// after each parameterized kernel finishes.
func (c *Core) OutputSearchLog(path string) {
	c.searchLogPath = path
}

// Results returns every recorded TunerResult in evaluation order.
func (c *Core) Results() []result.TunerResult {
	return c.store.All()
}

// Best returns the minimum-time verified result across every kernel Tuned
// so far. When no result verified, it returns the minimum-time unverified
// result with a finite time; ok is false only when no run produced a time.
func (c *Core) Best() (result.TunerResult, bool) {
	return c.store.Best()
}

// Tune runs the full pipeline: bind arguments, run the reference kernel (if
// any) to capture ground truth, then evaluate every non-reference kernel's
// legal Configuration set through the selected search strategy.
func (c *Core) Tune() error {
	if err := c.args.Bind(c.dev); err != nil {
		return fmt.Errorf("tuner: binding arguments: %w", err)
	}
	defer c.args.Free()

	if c.referenceIdx >= 0 {
		ref := c.kernels[c.referenceIdx]
		clog.Head(c.log, "testing reference kernel", "kernel", ref.Name)
		if _, err := c.runOnce(ref, nil, ref.GlobalBase, ref.LocalBase); err != nil {
			return fmt.Errorf("tuner: reference kernel %s: %w", ref.Name, err)
		}
		c.args.CaptureReference()
	}

	for i, k := range c.kernels {
		if i == c.referenceIdx {
			continue
		}
		if err := c.tuneKernel(k); err != nil {
			return err
		}
	}

	if best, ok := c.store.Best(); ok {
		c.report.ReportBest(best)
	}
	return nil
}

func (c *Core) tuneKernel(k *kernel.Info) error {
	clog.Head(c.log, "testing kernel", "kernel", k.Name)

	if len(k.Parameters) == 0 {
		res, err := c.runOnce(k, nil, k.GlobalBase, k.LocalBase)
		if err != nil {
			return err
		}
		c.store.Add(res)
		c.report.ReportRun(res, 0, 1)
		return nil
	}

	if err := k.BuildConfigurations(c.dev.Limits()); err != nil {
		return fmt.Errorf("tuner: kernel %s: %w", k.Name, err)
	}
	configs := k.Configurations()

	s := c.newSearcher(configs)
	total := s.NumConfigurations()
	for p := 0; p < total; p++ {
		cfg := s.GetConfiguration()
		global, local, ok := k.ComputeRangesFor(cfg)
		if !ok {
			s.PushExecutionTime(math.Inf(1))
			s.CalculateNextIndex()
			continue
		}
		res, err := c.runOnce(k, cfg, global, local)
		if err != nil {
			return err
		}
		res.Configuration = cfg
		c.store.Add(res)
		c.report.ReportRun(res, p, total)

		s.PushExecutionTime(res.Time)
		s.CalculateNextIndex()
	}

	if c.searchLogPath != "" {
		if err := c.writeSearchLog(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) newSearcher(configs []kernel.Configuration) search.Searcher {
	switch c.method {
	case RandomSearchMethod:
		return search.NewRandomSearch(configs, c.fraction)
	case AnnealingMethod:
		return search.NewAnnealing(configs, c.fraction, c.temperature)
	case PSOMethod:
		return search.NewPSO(configs, c.fraction, c.swarmSize, c.influenceG, c.influenceL, c.influenceR)
	default:
		return search.NewFullSearch(configs)
	}
}

func (c *Core) writeSearchLog(s search.Searcher) error {
	f, err := os.Create(c.searchLogPath)
	if err != nil {
		return fmt.Errorf("tuner: opening search log %s: %w", c.searchLogPath, err)
	}
	defer f.Close()
	s.PrintLog(f)
	return nil
}

// runOnce compiles cfg's source (or the bare kernel source when cfg is
// nil), checks its compiled local-memory footprint against the device's
// limit, launches it kNumRuns times keeping the minimum elapsed time, and
// verifies its outputs.
func (c *Core) runOnce(k *kernel.Info, cfg kernel.Configuration, global, local []int) (result.TunerResult, error) {
	runID := result.NewRunID()
	source := assembleSource(cfg, k.Source)

	program := c.dev.BuildProgram(source)
	kern, status, log := program.Build(k.Name, nil)
	if status != device.BuildOK {
		clog.Failure(c.log, "kernel build failed", "run_id", runID, "kernel", k.Name, "log", log)
		return result.TunerResult{RunID: runID, KernelName: k.Name, Time: math.Inf(1)}, nil
	}
	defer kern.Free()

	if limit := c.dev.Limits().LocalMemSize; limit > 0 {
		if used := kern.LocalMemUsage(); used > limit {
			clog.Failure(c.log, "kernel exceeds local memory limit", "run_id", runID, "kernel", k.Name, "used", used, "limit", limit)
			return result.TunerResult{RunID: runID, KernelName: k.Name, Time: math.Inf(1)}, nil
		}
	}

	c.args.ResetOutputs()

	clog.Run(c.log, "running kernel", "kernel", k.Name)
	best := math.Inf(1)
	for run := 0; run < kNumRuns; run++ {
		event, err := kern.Launch(c.dev, global, local, c.args.LaunchArgs())
		if err != nil {
			clog.Failure(c.log, "kernel launch failed", "run_id", runID, "kernel", k.Name, "error", err.Error())
			return result.TunerResult{RunID: runID, KernelName: k.Name, Time: math.Inf(1)}, nil
		}
		if elapsed := event.ElapsedMS(); elapsed < best {
			best = elapsed
		}
	}

	localThreads := 1
	for _, l := range local {
		localThreads *= l
	}

	verified, deviation, err := verify(c.args, c.tolerance)
	if err != nil {
		return result.TunerResult{}, fmt.Errorf("tuner: verifying kernel %s: %w", k.Name, err)
	}
	if !verified {
		c.log.Warn("verification exceeded tolerance", "kernel", k.Name, "deviation", deviation, "tolerance", c.tolerance)
	}

	return result.TunerResult{
		RunID:        runID,
		KernelName:   k.Name,
		Time:         best,
		LocalThreads: localThreads,
		Verified:     verified,
	}, nil
}

func assembleSource(cfg kernel.Configuration, base string) string {
	if len(cfg) == 0 {
		return base
	}
	source := ""
	for _, setting := range cfg {
		source += setting.GetDefine()
	}
	return source + base
}
