package runtime

import "github.com/aretw0/mnemo/pkg/domain"

// EnforceArcConsistency sweeps from the last layer back to the first, dropping edges
// into tokens that no longer exist one layer down and then any token left without
// edges. The layers form a chain, so one backward sweep reaches a fixed point.
// Removed tokens are recorded under CauseArcConsistency.
func EnforceArcConsistency(layers Layers, removed *Removed) int {
	total := 0
	for i := len(layers) - 2; i >= 0; i-- {
		next := layers[i+1]
		layer := layers[i]

		var dead []domain.Token
		for _, src := range layer.Sources() {
			succ := layer[src]

			var dangling []domain.Token
			for dst := range succ {
				if !next.Has(dst) {
					dangling = append(dangling, dst)
				}
			}
			for _, dst := range dangling {
				delete(succ, dst)
			}

			if len(succ) == 0 {
				dead = append(dead, src)
			}
		}

		for _, src := range dead {
			removed.record(domain.CauseArcConsistency, i, src)
			delete(layer, src)
		}
		total += len(dead)
	}
	return total
}
