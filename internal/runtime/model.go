package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

var _ ports.ConstrainedModel = (*Model)(nil)

type edge struct {
	to domain.Token
	p  float64
}

// Model is a constrained chain frozen after construction. All methods are read-only
// and safe for concurrent callers.
type Model struct {
	constraint domain.Constraint
	order      int
	trained    bool
	graph      Layers
	edges      []map[domain.Token][]edge
	removed    *Removed
	source     Source
}

func newModel(c domain.Constraint, source Source) *Model {
	if source == nil {
		source = DefaultSource()
	}
	return &Model{
		constraint: c,
		source:     source,
		removed:    NewRemoved(0),
	}
}

// freeze snapshots the normalized layers into lexically ordered edge lists so that
// sampling walks a stable order.
func (m *Model) freeze(graph Layers) {
	m.graph = graph
	m.edges = make([]map[domain.Token][]edge, len(graph))
	for i, layer := range graph {
		frozen := make(map[domain.Token][]edge, len(layer))
		for src, succ := range layer {
			list := make([]edge, 0, len(succ))
			for dst, p := range succ {
				list = append(list, edge{to: dst, p: p})
			}
			sort.Slice(list, func(a, b int) bool { return list[a].to < list[b].to })
			frozen[src] = list
		}
		m.edges[i] = frozen
	}
}

// Trained reports whether the model was built from a trained base chain.
func (m *Model) Trained() bool { return m.trained }

// Constraint returns the constraint the model was built for.
func (m *Model) Constraint() domain.Constraint { return m.constraint }

// Order is the markov order of the underlying chain.
func (m *Model) Order() int { return m.order }

// Positions is the number of tokens a generated sentence holds.
func (m *Model) Positions() int {
	if len(m.graph) == 0 {
		return 0
	}
	return len(m.graph) - 1
}

// Feasible reports whether at least one sentence satisfies the constraint.
func (m *Model) Feasible() bool {
	if !m.trained {
		return false
	}
	if len(m.graph) == 0 {
		return true
	}
	return len(m.edges[0][domain.Start]) > 0
}

// LayerSizes returns the surviving token count per layer, Start layer first.
func (m *Model) LayerSizes() []int {
	return m.graph.Sizes()
}

// Layer returns a copy of layer i, or nil when out of range.
func (m *Model) Layer(i int) domain.TransitionModel {
	if i < 0 || i >= len(m.graph) {
		return nil
	}
	return m.graph[i].Clone()
}

// Removed exposes the pruning arena.
func (m *Model) Removed() *Removed { return m.removed }

// Generate walks the layers from Start and returns one token per position.
func (m *Model) Generate() ([]domain.Token, error) {
	if !m.trained {
		return nil, domain.ErrNotTrained
	}
	if !m.Feasible() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInfeasible, m.constraint.String())
	}

	k := m.Positions()
	out := make([]domain.Token, 0, k)
	prev := domain.Start
	for i := 0; i < k; i++ {
		next, ok := pick(m.edges[i][prev], m.source)
		if !ok {
			return nil, fmt.Errorf("layer %d: token %q has no successors", i, prev)
		}
		out = append(out, next)
		prev = next
	}
	return out, nil
}

// GenerateN draws n independent sentences.
func (m *Model) GenerateN(n int) ([][]domain.Token, error) {
	out := make([][]domain.Token, 0, n)
	for i := 0; i < n; i++ {
		s, err := m.Generate()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Score multiplies the weights along seq. Edges missing from the graph are skipped
// and contribute a factor of one. Tokens past Positions are ignored. An untrained
// model scores zero; callers that need to tell it apart check Trained first.
func (m *Model) Score(seq []domain.Token) float64 {
	if !m.trained {
		return 0
	}
	prob := 1.0
	prev := domain.Start
	for i, tok := range seq {
		if i >= m.Positions() {
			break
		}
		if w, ok := m.graph[i].Weight(prev, tok); ok && w != 0 {
			prob *= w
		}
		prev = tok
	}
	return prob
}

// SampleRemoved draws a token pruned from constrained position layer for cause.
// It returns "" when nothing was pruned there.
func (m *Model) SampleRemoved(cause domain.RemovalCause, layer int) domain.Token {
	return m.removed.Sample(cause, layer, m.source.Float64)
}

func pick(edges []edge, source Source) (domain.Token, bool) {
	if len(edges) == 0 {
		return "", false
	}
	u := source.Float64()
	var acc float64
	for _, e := range edges {
		acc += e.p
		if acc > u {
			return e.to, true
		}
	}
	// Rounding can leave acc a hair under u.
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].p > 0 {
			return edges[i].to, true
		}
	}
	return "", false
}
