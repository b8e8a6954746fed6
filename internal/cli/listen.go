package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/mnemo/internal/adapters/socket"
)

// RunListen serves the socket protocol on port until ctx is done.
func RunListen(ctx context.Context, app *App, port int) error {
	if err := app.Engine.Load(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	p := app.NewPool()
	p.Start()
	defer p.Stop()

	srv := socket.NewServer(app.Engine,
		socket.WithPool(p),
		socket.WithCount(app.Config.Count),
		socket.WithBufferSize(app.Config.Server.BufferSize),
		socket.WithRecorder(app.Metrics),
		socket.WithLogger(app.Logger),
	)
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
