package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/mnemo/internal/presentation/graph"
	"github.com/aretw0/mnemo/internal/presentation/tui"
	"github.com/aretw0/mnemo/internal/validator"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
)

func buildModel(ctx context.Context, app *App, constraint string) (ports.ConstrainedModel, error) {
	if err := app.Engine.Load(ctx); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return app.Engine.Build(ctx, domain.ParseConstraint(constraint))
}

// RunGraph writes the Mermaid chart of the model built for constraint. With
// highlight set, one sampled sentence is marked on the chart.
func RunGraph(ctx context.Context, app *App, constraint string, highlight bool, w io.Writer) error {
	m, err := buildModel(ctx, app, constraint)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if highlight && m.Feasible() {
		seq, err := m.Generate()
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{Path: seq}
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(m, overlay))
	return err
}

// RunValidate checks the model built for constraint and reports the result on w.
func RunValidate(ctx context.Context, app *App, constraint string, samples int, w io.Writer) error {
	m, err := buildModel(ctx, app, constraint)
	if err != nil {
		return err
	}
	if !m.Feasible() {
		printSystemMessage(w, "Infeasible: layers %s", tui.LayerChain(m.LayerSizes()))
		return domain.ErrInfeasible
	}

	err = validator.Validate(m, validator.Options{
		RequireEnd: app.Config.Filter.RequireEnd,
		Samples:    samples,
	})
	if err != nil {
		return err
	}
	printSystemMessage(w, "Valid: layers %s", tui.LayerChain(m.LayerSizes()))
	return nil
}
