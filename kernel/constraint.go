package kernel

// Constraint is a predicate over a named subset of a kernel's parameters,
// represented as a list of parameter names plus a function taking a
// fixed-length value vector. Names are resolved to parameter indices once,
// at registration time, by KernelInfo.AddConstraint; Func is then always
// called with values in that declared order.
type Constraint struct {
	Names   []string
	Func    func(values []int) bool
	indices []int
}

// LocalMemoryPredicate computes a byte count rather than a boolean; a
// configuration is admitted only if the count is within the device's
// reported local-memory size.
type LocalMemoryPredicate struct {
	Names   []string
	Func    func(values []int) int64
	indices []int
}
