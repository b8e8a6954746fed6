package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/mnemo/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

// RunServe serves the HTTP API on port until ctx is done.
func RunServe(ctx context.Context, app *App, port int) error {
	if err := app.Engine.Load(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	p := app.NewPool()
	p.Start()
	defer p.Stop()

	handler := httpadapter.NewHandler(app.Engine,
		httpadapter.WithPool(p),
		httpadapter.WithRecorder(app.Metrics),
		httpadapter.WithGatherer(app.Registry),
		httpadapter.WithDefaultCount(app.Config.Count),
		httpadapter.WithStreams(app.Streams),
		httpadapter.WithLogger(app.Logger),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("HTTP server listening", "address", srv.Addr, "model", app.Engine.Key())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		app.Logger.Info("HTTP server stopped")
		return nil
	}
}
