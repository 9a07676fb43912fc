// Package kernel implements the configuration-space engine: Parameters,
// Constraints, ThreadRange modifiers, and the Cartesian enumeration plus
// filtering pipeline that produces a KernelInfo's legal set of
// Configurations.
package kernel

import "fmt"

// Parameter is a named discrete tuning variable with an ordered list of
// candidate integer values.
type Parameter struct {
	Name   string
	Values []int
}

// Setting is a concrete (name, value) pair drawn from a Parameter.
type Setting struct {
	Name  string
	Value int
}

// GetDefine renders the setting as a preprocessor define line, prepended to
// a kernel's source before compilation.
func (s Setting) GetDefine() string {
	return fmt.Sprintf("#define %s %d\n", s.Name, s.Value)
}

// Configuration is an ordered sequence of Settings, one per Parameter, in
// the order the Parameters were declared. Its ordering is stable and is the
// positional encoding Searchers rely on.
type Configuration []Setting

// Key returns a stable string encoding of a Configuration's values, used to
// look a Configuration up by its content (Annealing/PSO neighbor lookups).
func (c Configuration) Key() string {
	b := make([]byte, 0, len(c)*8)
	for _, s := range c {
		b = append(b, []byte(fmt.Sprintf("%s=%d;", s.Name, s.Value))...)
	}
	return string(b)
}

// Values returns just the values, in declaration order — the positional
// encoding a Searcher's neighborhood functions operate on.
func (c Configuration) Values() []int {
	v := make([]int, len(c))
	for i, s := range c {
		v[i] = s.Value
	}
	return v
}
