// Command cltune-bench tunes a small vector-scale kernel across a
// workgroup-size parameter and prints the fastest configuration: the fastest
// verified one when any verified, otherwise the fastest unverified one.
//
// Usage:
//
//	cltune-bench <device_id> <search_method> [search_param_1] [search_param_2]
//
// search_method is one of 0 (random), 1 (annealing), 2 (PSO), 3 (full).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/oclbench/cltune/argument"
	"github.com/oclbench/cltune/device"
	"github.com/oclbench/cltune/internal/clog"
	"github.com/oclbench/cltune/kernel"
	"github.com/oclbench/cltune/tuner"
)

const vectorScaleSource = `
@kernel void vectorScale(
	const int n,
	const float alpha,
	const float * x,
	float * y
) {
	for (int block = 0; block < (n + WGS - 1) / WGS; ++block; @outer) {
		for (int i = 0; i < WGS; ++i; @inner) {
			const int idx = block * WGS + i;
			if (idx < n) {
				y[idx] = alpha * x[idx];
			}
		}
	}
}`

func main() {
	app := &cli.Command{
		Name:  "cltune-bench",
		Usage: "Autotune a demo OCCA kernel and report the fastest verified configuration",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "device_id"},
			&cli.StringArg{Name: "search_method"},
			&cli.StringArg{Name: "search_param_1"},
			&cli.StringArg{Name: "search_param_2"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn, or error"},
			&cli.StringFlag{Name: "search-log", Value: "", Usage: "write a step;index;time CSV to this path"},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := clog.ParseLevel(cmd.String("log-level"))
	log := clog.Pretty(os.Stdout, level)

	dev, err := openDevice(cmd.StringArg("device_id"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer dev.Free()
	clog.Head(log, "device ready", "mode", dev.Mode())

	const n = 1 << 16
	x := make([]float32, n)
	y := make([]float32, n)
	ref := make([]float32, n)
	for i := range x {
		x[i] = float32(i%97) - 48.0
		ref[i] = 2.0 * x[i]
	}

	core := tuner.New(dev, log)

	id, err := core.AddKernel("vectorScale", vectorScaleSource, []int{n}, []int{256})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	k, err := core.Kernel(id)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := k.AddParameter("WGS", []int{32, 64, 128, 256, 512}); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := k.AddModifier(kernel.SetLocal, "WGS"); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := k.AddConstraint(func(v []int) bool { return n%v[0] == 0 }, "WGS"); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	argument.AddScalar(core.Args(), "n", int32(n))
	argument.AddScalar(core.Args(), "alpha", float32(2.0))
	argument.AddInput(core.Args(), "x", x)
	out := argument.AddOutput(core.Args(), "y", y)
	if err := argument.SetReference(out, ref); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := applySearchMethod(core, cmd.StringArg("search_method"), cmd.StringArg("search_param_1"), cmd.StringArg("search_param_2")); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if path := cmd.String("search-log"); path != "" {
		core.OutputSearchLog(path)
	}

	if err := core.Tune(); err != nil {
		return cli.Exit(fmt.Sprintf("error: tuning: %v", err), 1)
	}

	best, ok := core.Best()
	if !ok {
		return cli.Exit("no verified configuration was found", 1)
	}
	clog.Best(log, "tuning complete", "kernel", best.KernelName, "time_ms", best.Time, "local_threads", best.LocalThreads)
	return nil
}

// openDevice opens the numbered CUDA device deviceID names, falling back to
// device.NewTestDevice's OpenMP/CUDA/Serial probing when deviceID is empty or
// non-numeric.
func openDevice(deviceID string) (device.Device, error) {
	if deviceID == "" {
		return device.NewTestDevice(), nil
	}
	id, err := strconv.Atoi(deviceID)
	if err != nil {
		return device.NewTestDevice(), nil
	}
	props := fmt.Sprintf(`{"mode": "CUDA", "device_id": %d}`, id)
	dev, err := device.NewOCCADeviceFromProps(props, device.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("opening device %d: %w", id, err)
	}
	return dev, nil
}

// applySearchMethod dispatches on the CLI's numeric search-method encoding:
// 0 random, 1 annealing, 2 PSO, 3 (or absent) full.
func applySearchMethod(core *tuner.Core, method, param1, param2 string) error {
	if method == "" {
		core.UseFullSearch()
		return nil
	}
	code, err := strconv.Atoi(method)
	if err != nil {
		return fmt.Errorf("search_method must be numeric (0=random, 1=annealing, 2=PSO, 3=full), got %q", method)
	}
	switch code {
	case 0:
		core.UseRandomSearch(parseFloatOr(param1, 0.1))
	case 1:
		core.UseAnnealing(parseFloatOr(param1, 0.1), parseFloatOr(param2, 1.0))
	case 2:
		core.UsePSO(parseFloatOr(param1, 0.2), 8, 1.5, 1.5, 0.7)
	case 3:
		core.UseFullSearch()
	default:
		return fmt.Errorf("unknown search_method %d (want 0=random, 1=annealing, 2=PSO, 3=full)", code)
	}
	return nil
}

func parseFloatOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
