package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/presentation/tui"
	"github.com/aretw0/mnemo/pkg/domain"
)

// Output formats for generated sentences.
const (
	FormatAuto     = "auto"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatPlain    = "plain"
)

// GenerateOptions configures RunGenerate.
type GenerateOptions struct {
	Constraint string
	Count      int
	Format     string
	// Babble draws an unconstrained sentence of this many tokens instead.
	Babble int
	Out    io.Writer
}

// RunGenerate loads the corpus, generates sentences and writes them to opts.Out.
// An infeasible constraint still prints its report before the error is returned.
func RunGenerate(ctx context.Context, app *App, opts GenerateOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if err := app.Engine.Load(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	if opts.Babble > 0 {
		s, err := app.Engine.Babble(ctx, opts.Babble)
		if err != nil {
			return err
		}
		return writeResult(opts, &mnemo.Result{Sentences: []mnemo.Sentence{*s}, Feasible: true})
	}

	count := opts.Count
	if count < 1 {
		count = app.Config.Count
	}
	res, err := app.Engine.Generate(ctx, domain.ParseConstraint(opts.Constraint), count)
	if res == nil {
		return err
	}
	if werr := writeResult(opts, res); werr != nil {
		return werr
	}
	return err
}

func writeResult(opts GenerateOptions, res *mnemo.Result) error {
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = FormatPlain
		if f, ok := opts.Out.(*os.File); ok && tui.IsTerminal(f) {
			format = FormatMarkdown
		}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatMarkdown:
		out, err := tui.NewRenderer()(tui.Report(res))
		if err != nil {
			return err
		}
		_, err = io.WriteString(opts.Out, out)
		return err
	case FormatPlain:
		if !res.Feasible {
			printSystemMessage(opts.Out, "Infeasible: layers %s", tui.LayerChain(res.LayerSizes))
			return nil
		}
		_, err := io.WriteString(opts.Out, tui.Plain(res))
		return err
	}
	return fmt.Errorf("unknown output format %q", opts.Format)
}
