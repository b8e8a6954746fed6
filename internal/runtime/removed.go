package runtime

import (
	"github.com/aretw0/mnemo/pkg/domain"
)

// Removed is the arena of pruned tokens, indexed by cause and constrained position.
// It never feeds back into the live graph.
type Removed struct {
	lists [2][][]domain.Token
}

// NewRemoved allocates empty lists for n constrained positions.
func NewRemoved(n int) *Removed {
	r := &Removed{}
	for c := range r.lists {
		r.lists[c] = make([][]domain.Token, n)
	}
	return r
}

func (r *Removed) record(cause domain.RemovalCause, layer int, tok domain.Token) {
	r.lists[cause][layer] = append(r.lists[cause][layer], tok)
}

// Tokens returns the tokens pruned from layer for cause, in removal order.
func (r *Removed) Tokens(cause domain.RemovalCause, layer int) []domain.Token {
	if !r.valid(cause, layer) {
		return nil
	}
	return r.lists[cause][layer]
}

// Count is the number of tokens pruned for cause across all layers.
func (r *Removed) Count(cause domain.RemovalCause) int {
	if cause < 0 || int(cause) >= len(r.lists) {
		return 0
	}
	n := 0
	for _, l := range r.lists[cause] {
		n += len(l)
	}
	return n
}

// Sample draws one pruned token uniformly. It returns "" when the list is empty or the
// indices are out of range.
func (r *Removed) Sample(cause domain.RemovalCause, layer int, draw func() float64) domain.Token {
	toks := r.Tokens(cause, layer)
	if len(toks) == 0 {
		return ""
	}
	i := int(draw() * float64(len(toks)))
	if i >= len(toks) {
		i = len(toks) - 1
	}
	return toks[i]
}

func (r *Removed) valid(cause domain.RemovalCause, layer int) bool {
	if cause < 0 || int(cause) >= len(r.lists) {
		return false
	}
	return layer >= 0 && layer < len(r.lists[cause])
}
