package ports

import "github.com/aretw0/mnemo/pkg/domain"

// ConstrainedModel is a built, read-only constrained chain.
type ConstrainedModel interface {
	Trained() bool
	Feasible() bool
	Constraint() domain.Constraint
	Order() int

	// Positions is the number of tokens every generated sentence holds.
	Positions() int

	// LayerSizes returns the surviving token count per layer, Start layer first.
	LayerSizes() []int

	// Layer returns a copy of the normalized layer i, Start layer at index 0.
	Layer(i int) domain.TransitionModel

	Generate() ([]domain.Token, error)
	GenerateN(n int) ([][]domain.Token, error)
	Score(seq []domain.Token) float64

	// SampleRemoved draws a token pruned from constrained position layer, or "".
	SampleRemoved(cause domain.RemovalCause, layer int) domain.Token
}
