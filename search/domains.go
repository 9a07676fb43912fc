package search

import "github.com/oclbench/cltune/kernel"

// paramDomains derives, from the legal Configuration set itself, the sorted
// set of distinct values observed at each parameter position and a
// value->domain-index lookup per position. Annealing's one-parameter-step
// neighborhood and PSO's position quantization both move within these
// per-position domains rather than the kernel's full pre-filter candidate
// lists, since only the legal (post-filter) set is visible to a Searcher.
func paramDomains(configurations []kernel.Configuration) (names []string, domains [][]int, valueIndex []map[int]int) {
	if len(configurations) == 0 {
		return nil, nil, nil
	}
	d := len(configurations[0])
	names = make([]string, d)
	for i, s := range configurations[0] {
		names[i] = s.Name
	}
	seen := make([]map[int]bool, d)
	for i := range seen {
		seen[i] = make(map[int]bool)
	}
	for _, cfg := range configurations {
		for i, s := range cfg {
			seen[i][s.Value] = true
		}
	}
	domains = make([][]int, d)
	valueIndex = make([]map[int]int, d)
	for i := 0; i < d; i++ {
		vals := make([]int, 0, len(seen[i]))
		for v := range seen[i] {
			vals = append(vals, v)
		}
		sortInts(vals)
		domains[i] = vals
		idx := make(map[int]int, len(vals))
		for j, v := range vals {
			idx[v] = j
		}
		valueIndex[i] = idx
	}
	return names, domains, valueIndex
}

func sortInts(v []int) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}

// keyIndex maps every legal Configuration's stable Key() to its index, the
// lookup Annealing and PSO use to map a proposed neighbor/quantized position
// back onto an actually-legal Configuration.
func keyIndex(configurations []kernel.Configuration) map[string]int {
	m := make(map[string]int, len(configurations))
	for i, cfg := range configurations {
		m[cfg.Key()] = i
	}
	return m
}
