package runtime_test

import (
	"testing"

	"github.com/aretw0/mnemo/internal/runtime"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTransitions(t *testing.T) {
	counts := runtime.CountTransitions(sequences(1, "a b", "a c", ""))

	w, ok := counts.Weight(domain.Start, "a")
	require.True(t, ok)
	assert.Equal(t, 2.0, w)

	w, _ = counts.Weight("a", "b")
	assert.Equal(t, 1.0, w)
	w, _ = counts.Weight("c", domain.End)
	assert.Equal(t, 1.0, w)
	assert.False(t, counts.Has(domain.End))
}

func TestCountTransitions_OrderInsensitive(t *testing.T) {
	a := runtime.CountTransitions(sequences(1, "x y z", "x z"))
	b := runtime.CountTransitions(sequences(1, "x z", "x y z"))
	assert.Equal(t, a, b)
}

func TestTrain(t *testing.T) {
	base := train(t, 1, "the cat sat", "the dog sat")

	assert.True(t, base.Trained())
	assert.Equal(t, 2, base.Sentences)
	assert.Equal(t, 2, base.Frequencies["the"])
	assert.Equal(t, 2, base.Frequencies["sat"])
	assert.Equal(t, "fixture.txt@1", base.Key())

	w, _ := base.Transitions.Weight("the", "cat")
	assert.InDelta(t, 0.5, w, 1e-12)
	w, _ = base.Transitions.Weight("sat", domain.End)
	assert.InDelta(t, 1.0, w, 1e-12)
}

func TestTrain_Empty(t *testing.T) {
	base, err := runtime.Train("empty.txt", 1, nil)
	require.NoError(t, err)
	assert.False(t, base.Trained())
}

func TestTrain_InvalidOrder(t *testing.T) {
	_, err := runtime.Train("x.txt", 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}
