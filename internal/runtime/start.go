package runtime

import "github.com/aretw0/mnemo/pkg/domain"

// PrependStart inserts the Start layer in front of layers. Start points at every
// survivor of the first constrained layer, weighted by its raw corpus frequency.
// When nothing survives the Start layer is left empty.
func PrependStart(layers Layers, freq map[domain.Token]int) Layers {
	if len(layers) == 0 {
		return layers
	}

	start := make(domain.TransitionModel, 1)
	for _, tok := range layers[0].Sources() {
		start.Increment(domain.Start, tok, float64(freq[tok]))
	}

	out := make(Layers, 0, len(layers)+1)
	out = append(out, start)
	return append(out, layers...)
}
