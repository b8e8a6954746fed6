package runtime

import (
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
)

// CountTransitions counts every adjacent pair of each sequence, with Start before the
// first token and End after the last one. Empty sequences contribute nothing.
func CountTransitions(sequences [][]domain.Token) domain.TransitionModel {
	counts := make(domain.TransitionModel)
	for _, seq := range sequences {
		if len(seq) == 0 {
			continue
		}
		prev := domain.Start
		for _, tok := range seq {
			counts.Increment(prev, tok, 1)
			prev = tok
		}
		counts.Increment(prev, domain.End, 1)
	}
	return counts
}

// CountFrequencies counts token occurrences across all sequences.
func CountFrequencies(sequences [][]domain.Token) map[domain.Token]int {
	freq := make(map[domain.Token]int)
	for _, seq := range sequences {
		for _, tok := range seq {
			freq[tok]++
		}
	}
	return freq
}

// Train builds the unconstrained chain for a corpus. An empty input yields an
// untrained model rather than an error.
func Train(corpus string, order int, sequences [][]domain.Token) (*domain.BaseModel, error) {
	if order < 1 {
		return nil, domain.ErrInvalidOrder
	}

	transitions := CountTransitions(sequences)
	transitions.Normalize()

	sentences := 0
	for _, seq := range sequences {
		if len(seq) > 0 {
			sentences++
		}
	}

	return &domain.BaseModel{
		Corpus:      corpus,
		Order:       order,
		Transitions: transitions,
		Frequencies: CountFrequencies(sequences),
		Sentences:   sentences,
		TrainedAt:   time.Now().UTC(),
	}, nil
}
