package runtime_test

import (
	"strings"
	"testing"

	"github.com/aretw0/mnemo/internal/runtime"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/stretchr/testify/require"
)

// sequences groups the words of each sentence into order-sized tokens.
func sequences(order int, sentences ...string) [][]domain.Token {
	out := make([][]domain.Token, 0, len(sentences))
	for _, s := range sentences {
		words := strings.Fields(s)
		var seq []domain.Token
		for i := 0; i < len(words); i += order {
			hi := i + order
			if hi > len(words) {
				hi = len(words)
			}
			seq = append(seq, domain.JoinWords(words[i:hi]...))
		}
		out = append(out, seq)
	}
	return out
}

func train(t *testing.T, order int, sentences ...string) *domain.BaseModel {
	t.Helper()
	base, err := runtime.Train("fixture.txt", order, sequences(order, sentences...))
	require.NoError(t, err)
	return base
}

var (
	// The w-words reachable from "the" never lead to a d-word that can end a sentence.
	infeasibleCorpus = []string{"the weather was warm", "the door was wide"}
	feasibleCorpus   = []string{"the weather was warm", "the door was wide", "the wild dog", "the wet dog"}
)

func assertStochastic(t *testing.T, m *runtime.Model) {
	t.Helper()
	for i := 0; i < len(m.LayerSizes()); i++ {
		layer := m.Layer(i)
		for src, succ := range layer {
			var sum float64
			for _, w := range succ {
				sum += w
			}
			require.InDeltaf(t, 1.0, sum, 1e-9, "layer %d source %q", i, src)
		}
	}
}

func assertArcConsistent(t *testing.T, m *runtime.Model) {
	t.Helper()
	sizes := m.LayerSizes()
	for i := 0; i+1 < len(sizes); i++ {
		layer, next := m.Layer(i), m.Layer(i+1)
		for src, succ := range layer {
			require.NotEmptyf(t, succ, "layer %d source %q has no edges", i, src)
			for dst := range succ {
				require.Truef(t, next.Has(dst), "layer %d edge %q -> %q dangles", i, src, dst)
			}
		}
	}
}
