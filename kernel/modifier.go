package kernel

import "github.com/oclbench/cltune/device"

// ModifierKind identifies how a ThreadRangeModifier mutates a kernel's base
// thread ranges: multiply or divide the local range, multiply or divide the
// global range, or set either range outright.
type ModifierKind int

const (
	MulLocal ModifierKind = iota
	DivLocal
	MulGlobal
	DivGlobal
	SetLocal
	SetGlobal
)

// ThreadRangeModifier mutates a kernel's base global or local thread counts
// per dimension as a function of named parameters, applied in declaration
// order. Names lists one parameter per distinct dimension, in order.
type ThreadRangeModifier struct {
	Kind    ModifierKind
	Names   []string
	indices []int
}

// ComputeRanges applies every modifier, in declared order, to the base
// global/local ranges for the given configuration's values. It returns the
// resulting ranges and whether they are legal: every local[d] must be
// nonzero and every global[d] must be a positive multiple of local[d].
// Device-capability legality (max dimensions, max workgroup size,
// per-dimension max) is checked separately by CheckCapability, and local
// memory by the kernel's LocalMemoryPredicate — ComputeRanges only enforces
// the divisibility invariant intrinsic to any backend.
func ComputeRanges(baseGlobal, baseLocal []int, modifiers []ThreadRangeModifier, cfg Configuration) (global, local []int, ok bool) {
	global = append([]int(nil), baseGlobal...)
	local = append([]int(nil), baseLocal...)

	values := settingsByName(cfg)

	for _, mod := range modifiers {
		for dim, name := range mod.Names {
			if dim >= len(global) {
				return nil, nil, false
			}
			v, present := values[name]
			if !present {
				return nil, nil, false
			}
			switch mod.Kind {
			case MulLocal:
				local[dim] *= v
			case DivLocal:
				if v == 0 {
					return nil, nil, false
				}
				local[dim] /= v
			case MulGlobal:
				global[dim] *= v
			case DivGlobal:
				if v == 0 {
					return nil, nil, false
				}
				global[dim] /= v
			case SetLocal:
				local[dim] = v
			case SetGlobal:
				global[dim] = v
			}
		}
	}

	for d := range local {
		if local[d] <= 0 {
			return global, local, false
		}
		if global[d] <= 0 || global[d]%local[d] != 0 {
			return global, local, false
		}
	}
	return global, local, true
}

// CheckCapability validates computed ranges against a device's reported
// limits: the product of the post-modification local range must not exceed
// the device's max workgroup size, and each dimension's local size must not
// exceed the device's per-dimension maximum.
func CheckCapability(limits device.Limits, global, local []int) bool {
	if len(local) > limits.MaxDimensions {
		return false
	}
	product := 1
	for i, l := range local {
		if i < len(limits.MaxWorkItemSizes) && l > limits.MaxWorkItemSizes[i] {
			return false
		}
		product *= l
	}
	return product <= limits.MaxWorkGroupSize
}

func settingsByName(cfg Configuration) map[string]int {
	m := make(map[string]int, len(cfg))
	for _, s := range cfg {
		m[s.Name] = s.Value
	}
	return m
}
