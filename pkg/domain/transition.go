package domain

import "sort"

// TransitionModel maps a source token to its successors and their weights.
// Weights are raw counts before normalization and probabilities after it.
type TransitionModel map[Token]map[Token]float64

// Increment adds w to the (src, dst) edge, creating it if needed.
func (m TransitionModel) Increment(src, dst Token, w float64) {
	succ, ok := m[src]
	if !ok {
		succ = make(map[Token]float64)
		m[src] = succ
	}
	succ[dst] += w
}

// Weight returns the (src, dst) weight and whether the edge exists.
func (m TransitionModel) Weight(src, dst Token) (float64, bool) {
	succ, ok := m[src]
	if !ok {
		return 0, false
	}
	w, ok := succ[dst]
	return w, ok
}

// Has reports whether src is a key of the model.
func (m TransitionModel) Has(src Token) bool {
	_, ok := m[src]
	return ok
}

// Clone returns a deep copy; mutating the copy never affects m.
func (m TransitionModel) Clone() TransitionModel {
	out := make(TransitionModel, len(m))
	for src, succ := range m {
		cp := make(map[Token]float64, len(succ))
		for dst, w := range succ {
			cp[dst] = w
		}
		out[src] = cp
	}
	return out
}

// Sources returns the source tokens in lexical order.
func (m TransitionModel) Sources() []Token {
	out := make([]Token, 0, len(m))
	for src := range m {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Successors returns the destinations of src in lexical order.
func (m TransitionModel) Successors(src Token) []Token {
	succ := m[src]
	out := make([]Token, 0, len(succ))
	for dst := range succ {
		out = append(out, dst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EdgeCount is the total number of (src, dst) pairs.
func (m TransitionModel) EdgeCount() int {
	n := 0
	for _, succ := range m {
		n += len(succ)
	}
	return n
}

// Normalize rescales every source's weights so they sum to one.
// Sources with no positive mass are left untouched.
func (m TransitionModel) Normalize() {
	for _, succ := range m {
		var sum float64
		for _, w := range succ {
			sum += w
		}
		if sum <= 0 {
			continue
		}
		for dst, w := range succ {
			succ[dst] = w / sum
		}
	}
}
