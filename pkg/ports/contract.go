package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractModel(corpus string) *domain.BaseModel {
	tm := domain.TransitionModel{}
	tm.Increment(domain.Start, "the", 1)
	tm.Increment("the", "door", 0.5)
	tm.Increment("the", "dog", 0.5)
	tm.Increment("door", domain.End, 1)
	tm.Increment("dog", domain.End, 1)
	return &domain.BaseModel{
		Corpus:      corpus,
		Order:       1,
		Transitions: tm,
		Frequencies: map[domain.Token]int{"the": 2, "door": 1, "dog": 1},
		Sentences:   2,
		TrainedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// RunModelStoreContract runs a suite of tests to verify that a ModelStore implementation
// adheres to the defined interface contract.
func RunModelStoreContract(t *testing.T, store ModelStore) {
	ctx := context.Background()
	corpus := "contract-" + time.Now().Format("20060102150405") + ".txt"
	key := domain.ModelKey(corpus, 1)

	t.Run("Save and Load", func(t *testing.T) {
		model := contractModel(corpus)

		err := store.Save(ctx, key, model)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, model.Corpus, loaded.Corpus)
		assert.Equal(t, model.Order, loaded.Order)
		assert.Equal(t, model.Sentences, loaded.Sentences)
		assert.Equal(t, model.Frequencies, loaded.Frequencies)
		assert.True(t, model.TrainedAt.Equal(loaded.TrainedAt))

		w, ok := loaded.Transitions.Weight("the", "door")
		assert.True(t, ok)
		assert.InDelta(t, 0.5, w, 1e-12)
		_, ok = loaded.Transitions.Weight("dog", domain.End)
		assert.True(t, ok, "sentinel tokens must survive persistence")
	})

	t.Run("Load Returns Independent Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, contractModel(corpus)))

		first, err := store.Load(ctx, key)
		require.NoError(t, err)
		delete(first.Transitions, "the")

		second, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.True(t, second.Transitions.Has("the"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrModelNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, contractModel(corpus)))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrModelNotFound, "Load after Delete should return ErrModelNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Delete of a missing key is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		k1 := domain.ModelKey(corpus, 2)
		k2 := domain.ModelKey(corpus, 3)
		_ = store.Save(ctx, k1, contractModel(corpus))
		_ = store.Save(ctx, k2, contractModel(corpus))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
