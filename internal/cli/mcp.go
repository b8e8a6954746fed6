package cli

import (
	"context"
	"fmt"

	mcpadapter "github.com/aretw0/mnemo/pkg/adapters/mcp"
)

// RunMCP serves the MCP tools over stdio, or over SSE on port when sse is set.
func RunMCP(ctx context.Context, app *App, sse bool, port int) error {
	if err := app.Engine.Load(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	p := app.NewPool()
	p.Start()
	defer p.Stop()

	srv := mcpadapter.NewServer(app.Engine,
		mcpadapter.WithPool(p),
		mcpadapter.WithLogger(app.Logger),
	)
	if sse {
		return srv.ServeSSE(ctx, port)
	}
	return srv.ServeStdio()
}
