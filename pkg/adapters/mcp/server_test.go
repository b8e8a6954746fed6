package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/testutils"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, text string) *mnemo.Engine {
	t.Helper()
	eng, err := mnemo.New("inline.txt", mnemo.WithSeed(5))
	require.NoError(t, err)
	if text != "" {
		require.NoError(t, eng.Train(context.Background(), strings.NewReader(text)))
	}
	return eng
}

func TestHandleGenerate(t *testing.T) {
	p := pool.New()
	p.Start()
	defer p.Stop()
	s := NewServer(newEngine(t, testutils.FeasibleCorpus), WithPool(p))

	res, err := s.handleGenerate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"constraint": "t, w, d",
		"count":      float64(2),
	})
	require.NoError(t, err)
	require.Len(t, res.Sentences, 2)
	for _, sentence := range res.Sentences {
		assert.Contains(t, []string{"the wild dog", "the wet dog"}, sentence.Text)
	}
	assert.Equal(t, []int{1, 1, 2, 1}, res.LayerSizes)
}

func TestHandleGenerate_Infeasible(t *testing.T) {
	s := NewServer(newEngine(t, "The weather was warm. The door was wide."))

	_, err := s.handleGenerate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"constraint": "t w d",
	})
	require.ErrorIs(t, err, domain.ErrInfeasible)
	assert.Contains(t, err.Error(), "[0 0 0 0]")
}

// stalledEngine holds every call until release is closed.
type stalledEngine struct {
	release chan struct{}
}

func (e stalledEngine) Generate(context.Context, domain.Constraint, int) (*mnemo.Result, error) {
	<-e.release
	return &mnemo.Result{LayerSizes: []int{1, 0}}, domain.ErrInfeasible
}

func (e stalledEngine) Build(context.Context, domain.Constraint) (ports.ConstrainedModel, error) {
	<-e.release
	return nil, domain.ErrNotTrained
}

func (e stalledEngine) Base() *domain.BaseModel { return nil }

func TestHandleGenerate_Timeout(t *testing.T) {
	p := pool.New(pool.WithWorkers(1))
	p.Start()
	eng := stalledEngine{release: make(chan struct{})}
	s := NewServer(eng, WithPool(p))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.handleGenerate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"constraint": "t w d",
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrInfeasible)

	close(eng.release)
	require.NoError(t, p.Stop())
}

func TestHandleGenerate_Untrained(t *testing.T) {
	s := NewServer(newEngine(t, ""))

	_, err := s.handleGenerate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"constraint": "t",
	})
	assert.ErrorIs(t, err, domain.ErrNotTrained)
}

func TestHandleLayers(t *testing.T) {
	s := NewServer(newEngine(t, testutils.FeasibleCorpus))

	resp, err := s.handleLayers(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"constraint": "t * d",
	})
	require.NoError(t, err)
	assert.Equal(t, "t * d", resp.Constraint)
	assert.True(t, resp.Feasible)
	assert.Equal(t, 4, len(resp.LayerSizes))
}

func TestModelInfo(t *testing.T) {
	s := NewServer(newEngine(t, testutils.FeasibleCorpus))

	info, err := s.modelInfo()
	require.NoError(t, err)
	assert.Equal(t, "inline.txt@1", info.Key)
	assert.Equal(t, 4, info.Sentences)
	assert.Positive(t, info.Edges)

	_, err = NewServer(newEngine(t, "")).modelInfo()
	assert.ErrorIs(t, err, domain.ErrNotTrained)
}
