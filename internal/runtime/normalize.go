package runtime

import (
	"math"

	"github.com/aretw0/mnemo/pkg/domain"
)

// Normalize applies the two-pass renormalization from the last layer to the first.
//
// The last layer is normalized plainly and each token's sum becomes its reachability
// mass. Every earlier edge is then reweighted by the mass of its destination and divided
// by the source's own mass-weighted sum, which in turn becomes that source's mass for
// the layer above. A source with no mass after pruning is a construction defect and
// fails with a *domain.MassError.
func Normalize(layers Layers) error {
	var mass map[domain.Token]float64

	for i := len(layers) - 1; i >= 0; i-- {
		terminal := i == len(layers)-1
		layer := layers[i]
		sums := make(map[domain.Token]float64, len(layer))

		for _, src := range layer.Sources() {
			succ := layer[src]

			var sum float64
			for dst, w := range succ {
				if terminal {
					sum += w
				} else {
					sum += w * mass[dst]
				}
			}
			if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
				return &domain.MassError{Layer: i, Token: src}
			}

			for dst, w := range succ {
				if terminal {
					succ[dst] = w / sum
				} else {
					succ[dst] = w * mass[dst] / sum
				}
			}
			sums[src] = sum
		}
		mass = sums
	}
	return nil
}
