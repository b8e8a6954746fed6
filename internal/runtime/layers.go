package runtime

import "github.com/aretw0/mnemo/pkg/domain"

// Layers is the per-position stack of transition models under construction.
type Layers []domain.TransitionModel

// Replicate makes n independent deep copies of base, one per constrained position.
// Start is never a legal occupant of a position, so it is left out of every copy.
func Replicate(base domain.TransitionModel, n int) Layers {
	if n <= 0 {
		return Layers{}
	}
	layers := make(Layers, n)
	for i := range layers {
		cp := base.Clone()
		delete(cp, domain.Start)
		layers[i] = cp
	}
	return layers
}

// Sizes returns the number of source tokens in each layer.
func (l Layers) Sizes() []int {
	sizes := make([]int, len(l))
	for i, layer := range l {
		sizes[i] = len(layer)
	}
	return sizes
}

// Total is the sum of Sizes.
func (l Layers) Total() int {
	n := 0
	for _, layer := range l {
		n += len(layer)
	}
	return n
}
