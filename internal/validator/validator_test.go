package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/testutils"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, text, constraint string) ports.ConstrainedModel {
	t.Helper()
	eng, err := mnemo.New("", mnemo.WithSeed(7))
	require.NoError(t, err)
	if text != "" {
		require.NoError(t, eng.Train(context.Background(), strings.NewReader(text)))
	}
	m, err := eng.Build(context.Background(), domain.ParseConstraint(constraint))
	require.NoError(t, err)
	return m
}

// brokenModel serves hand-written layers.
type brokenModel struct {
	ports.ConstrainedModel
	layers []domain.TransitionModel
	c      domain.Constraint
}

func (b brokenModel) Trained() bool { return true }
func (b brokenModel) Feasible() bool { return true }
func (b brokenModel) Order() int { return 1 }
func (b brokenModel) Positions() int { return len(b.layers) - 1 }
func (b brokenModel) Constraint() domain.Constraint { return b.c }
func (b brokenModel) Layer(i int) domain.TransitionModel { return b.layers[i] }

func TestCheck_BuiltModel(t *testing.T) {
	m := build(t, testutils.FeasibleCorpus, "t w d")
	require.True(t, m.Feasible())

	assert.Empty(t, Check(m, Options{RequireEnd: true, Samples: 50}))
	assert.NoError(t, Validate(m, Options{RequireEnd: true, Samples: 50}))
}

func TestCheck_Infeasible(t *testing.T) {
	m := build(t, testutils.InfeasibleCorpus, "t w d")
	assert.False(t, m.Feasible())
	assert.Empty(t, Check(m, Options{RequireEnd: true}))
}

func TestValidate_Untrained(t *testing.T) {
	m := build(t, "", "t w d")
	assert.ErrorIs(t, Validate(m, Options{}), domain.ErrNotTrained)
}

func TestCheck_Violations(t *testing.T) {
	start := domain.TransitionModel{domain.Start: {"the": 1}}

	tests := []struct {
		name   string
		layers []domain.TransitionModel
		want   string
	}{
		{
			name: "Row does not sum to one",
			layers: []domain.TransitionModel{
				start,
				{"the": {domain.End: 0.5}},
			},
			want: PropStochastic,
		},
		{
			name: "Dangling edge",
			layers: []domain.TransitionModel{
				{domain.Start: {"the": 0.5, "tall": 0.5}},
				{"the": {domain.End: 1}},
			},
			want: PropArcConsistency,
		},
		{
			name: "Word outside its window",
			layers: []domain.TransitionModel{
				{domain.Start: {"door": 1}},
				{"door": {domain.End: 1}},
			},
			want: PropConstraint,
		},
		{
			name: "Terminal cannot end",
			layers: []domain.TransitionModel{
				start,
				{"the": {"door": 1}},
			},
			want: PropEnd,
		},
		{
			name: "Extra start source",
			layers: []domain.TransitionModel{
				{domain.Start: {"the": 1}, "tall": {"the": 1}},
				{"the": {domain.End: 1}},
			},
			want: PropStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := brokenModel{layers: tt.layers, c: domain.ParseConstraint("t")}
			violations := Check(m, Options{RequireEnd: true})
			require.NotEmpty(t, violations)

			var props []string
			for _, v := range violations {
				props = append(props, v.Property)
			}
			assert.Contains(t, props, tt.want)

			err := Validate(m, Options{RequireEnd: true})
			assert.True(t, errors.Is(err, ErrViolation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
