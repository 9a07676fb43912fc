package kernel

import (
	"fmt"

	"github.com/oclbench/cltune/device"
)

// Info holds one kernel's source, entry-point name, base thread ranges,
// parameters, constraints, derived-resource predicate, and — lazily
// computed — its enumerated set of legal Configurations.
type Info struct {
	Name       string
	Source     string
	GlobalBase []int
	LocalBase  []int

	Parameters []*Parameter
	paramIndex map[string]int

	Constraints  []Constraint
	LocalMemory  *LocalMemoryPredicate
	Modifiers    []ThreadRangeModifier

	configurations []Configuration
	built          bool
}

// New creates a KernelInfo with the given entry point, source, and base
// thread ranges (1-3 dimensions).
func New(name, source string, global, local []int) (*Info, error) {
	if len(global) == 0 || len(global) > 3 || len(global) != len(local) {
		return nil, fmt.Errorf("kernel: global/local ranges must have 1-3 matching dimensions")
	}
	for i := range global {
		if global[i] <= 0 || local[i] <= 0 {
			return nil, fmt.Errorf("kernel: thread range dimension %d must be positive", i)
		}
	}
	return &Info{
		Name:       name,
		Source:     source,
		GlobalBase: append([]int(nil), global...),
		LocalBase:  append([]int(nil), local...),
		paramIndex: make(map[string]int),
	}, nil
}

// ParameterExists reports whether name has already been declared.
func (k *Info) ParameterExists(name string) bool {
	_, ok := k.paramIndex[name]
	return ok
}

// AddParameter declares a new tuning parameter. Parameters must be added
// before BuildConfigurations is called; they are frozen thereafter.
func (k *Info) AddParameter(name string, values []int) error {
	if k.built {
		return fmt.Errorf("kernel %s: cannot add parameter %s after configurations were built", k.Name, name)
	}
	if k.ParameterExists(name) {
		return fmt.Errorf("kernel %s: parameter %s already exists", k.Name, name)
	}
	if len(values) == 0 {
		return fmt.Errorf("kernel %s: parameter %s has no candidate values", k.Name, name)
	}
	k.paramIndex[name] = len(k.Parameters)
	k.Parameters = append(k.Parameters, &Parameter{Name: name, Values: append([]int(nil), values...)})
	return nil
}

func (k *Info) resolveNames(names []string) ([]int, error) {
	indices := make([]int, len(names))
	for i, n := range names {
		idx, ok := k.paramIndex[n]
		if !ok {
			return nil, fmt.Errorf("kernel %s: undeclared parameter %q", k.Name, n)
		}
		indices[i] = idx
	}
	return indices, nil
}

// AddConstraint registers a predicate over the named parameters. Names
// must already be declared via AddParameter.
func (k *Info) AddConstraint(fn func([]int) bool, names ...string) error {
	if k.built {
		return fmt.Errorf("kernel %s: cannot add constraint after configurations were built", k.Name)
	}
	indices, err := k.resolveNames(names)
	if err != nil {
		return err
	}
	k.Constraints = append(k.Constraints, Constraint{Names: names, Func: fn, indices: indices})
	return nil
}

// SetLocalMemoryUsage registers the LocalMemoryPredicate. Calling it again
// overwrites the previous predicate.
func (k *Info) SetLocalMemoryUsage(fn func([]int) int64, names ...string) error {
	if k.built {
		return fmt.Errorf("kernel %s: cannot set local memory usage after configurations were built", k.Name)
	}
	indices, err := k.resolveNames(names)
	if err != nil {
		return err
	}
	k.LocalMemory = &LocalMemoryPredicate{Names: names, Func: fn, indices: indices}
	return nil
}

// AddModifier registers a ThreadRange modifier. names lists one parameter
// per distinct dimension, in order.
func (k *Info) AddModifier(kind ModifierKind, names ...string) error {
	if k.built {
		return fmt.Errorf("kernel %s: cannot add modifier after configurations were built", k.Name)
	}
	indices, err := k.resolveNames(names)
	if err != nil {
		return err
	}
	k.Modifiers = append(k.Modifiers, ThreadRangeModifier{Kind: kind, Names: names, indices: indices})
	return nil
}

// BuildConfigurations materializes the legal set of Configurations exactly
// once; subsequent calls are no-ops that reuse the cached set. Filtering
// runs constraints first (short-circuit on the first false), then the
// LocalMemoryPredicate, then ThreadRange feasibility.
func (k *Info) BuildConfigurations(limits device.Limits) error {
	if k.built {
		return nil
	}
	k.built = true

	if len(k.Parameters) == 0 {
		k.configurations = nil
		return nil
	}

	valueLists := make([][]int, len(k.Parameters))
	for i, p := range k.Parameters {
		valueLists[i] = p.Values
	}

	indexVector := make([]int, len(valueLists))
	legal := make([]Configuration, 0)

	for {
		cfg := make(Configuration, len(k.Parameters))
		values := make([]int, len(k.Parameters))
		for i, p := range k.Parameters {
			v := p.Values[indexVector[i]]
			cfg[i] = Setting{Name: p.Name, Value: v}
			values[i] = v
		}

		if k.satisfiesConstraints(values) && k.satisfiesLocalMemory(values, limits) {
			if global, local, ok := ComputeRanges(k.GlobalBase, k.LocalBase, k.Modifiers, cfg); ok {
				if CheckCapability(limits, global, local) {
					legal = append(legal, cfg)
				}
			}
		}

		if !advanceOdometer(indexVector, valueLists) {
			break
		}
	}

	if len(legal) == 0 {
		return fmt.Errorf("kernel %s: no legal configurations (all filtered by constraints, local memory, or thread-range feasibility)", k.Name)
	}
	k.configurations = legal
	return nil
}

func (k *Info) satisfiesConstraints(values []int) bool {
	for _, c := range k.Constraints {
		args := make([]int, len(c.indices))
		for i, idx := range c.indices {
			args[i] = values[idx]
		}
		if !c.Func(args) {
			return false
		}
	}
	return true
}

func (k *Info) satisfiesLocalMemory(values []int, limits device.Limits) bool {
	if k.LocalMemory == nil {
		return true
	}
	args := make([]int, len(k.LocalMemory.indices))
	for i, idx := range k.LocalMemory.indices {
		args[i] = values[idx]
	}
	bytes := k.LocalMemory.Func(args)
	return bytes >= 0 && bytes <= limits.LocalMemSize
}

// advanceOdometer increments indexVector like an odometer over valueLists,
// last parameter (rightmost) fastest, in parameter declaration order.
// Returns false once every combination has been produced.
func advanceOdometer(indexVector []int, valueLists [][]int) bool {
	for i := len(indexVector) - 1; i >= 0; i-- {
		indexVector[i]++
		if indexVector[i] < len(valueLists[i]) {
			return true
		}
		indexVector[i] = 0
	}
	return false
}

// Configurations returns the materialized legal set. Empty until
// BuildConfigurations has run.
func (k *Info) Configurations() []Configuration {
	return k.configurations
}

// ComputeRangesFor computes the per-configuration thread ranges, applying
// this kernel's modifiers to its base ranges.
func (k *Info) ComputeRangesFor(cfg Configuration) (global, local []int, ok bool) {
	return ComputeRanges(k.GlobalBase, k.LocalBase, k.Modifiers, cfg)
}
