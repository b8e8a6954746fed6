package runtime

import (
	"github.com/aretw0/mnemo/pkg/domain"
)

// Unconstrained samples straight from the base chain.
type Unconstrained struct {
	base   *domain.BaseModel
	source Source
}

// NewUnconstrained wraps base. A nil source falls back to DefaultSource.
func NewUnconstrained(base *domain.BaseModel, source Source) *Unconstrained {
	if source == nil {
		source = DefaultSource()
	}
	return &Unconstrained{base: base, source: source}
}

// Generate walks up to length tokens from Start, stopping early when the chain
// reaches End.
func (u *Unconstrained) Generate(length int) ([]domain.Token, error) {
	if !u.base.Trained() {
		return nil, domain.ErrNotTrained
	}
	out := make([]domain.Token, 0, length)
	prev := domain.Start
	for len(out) < length {
		next, ok := pick(u.edges(prev), u.source)
		if !ok || next == domain.End {
			break
		}
		out = append(out, next)
		prev = next
	}
	return out, nil
}

// Score multiplies the base weights along seq, skipping unseen edges.
func (u *Unconstrained) Score(seq []domain.Token) float64 {
	if !u.base.Trained() {
		return 0
	}
	prob := 1.0
	prev := domain.Start
	for _, tok := range seq {
		if w, ok := u.base.Transitions.Weight(prev, tok); ok && w != 0 {
			prob *= w
		}
		prev = tok
	}
	return prob
}

func (u *Unconstrained) edges(src domain.Token) []edge {
	succ := u.base.Transitions[src]
	out := make([]edge, 0, len(succ))
	for _, dst := range u.base.Transitions.Successors(src) {
		out = append(out, edge{to: dst, p: succ[dst]})
	}
	return out
}
