package tuner

import "github.com/oclbench/cltune/argument"

// verify delegates numeric comparison entirely to the argument package:
// Core owns when verification runs, argument.Store owns how two numeric
// buffers are compared.
func verify(args *argument.Store, tolerance float64) (bool, float64, error) {
	return args.VerifyOutputs(tolerance)
}
