package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/adapters/file"
	redisstore "github.com/aretw0/mnemo/internal/adapters/redis"
	"github.com/aretw0/mnemo/internal/adapters/sqlite"
	"github.com/aretw0/mnemo/internal/config"
	"github.com/aretw0/mnemo/internal/corpus"
	"github.com/aretw0/mnemo/internal/logging"
	"github.com/aretw0/mnemo/internal/runtime"
	httpadapter "github.com/aretw0/mnemo/pkg/adapters/http"
	"github.com/aretw0/mnemo/pkg/adapters/memory"
	redislock "github.com/aretw0/mnemo/pkg/adapters/redis"
	"github.com/aretw0/mnemo/pkg/observability"
	"github.com/aretw0/mnemo/pkg/persistence/middleware"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds everything a command needs: the engine and the infrastructure around it.
type App struct {
	Config   *config.Config
	Engine   *mnemo.Engine
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Streams  *httpadapter.StreamManager
	Store    ports.ModelStore

	closers []io.Closer
}

// NewApp wires the engine from cfg. Log output goes to w.
func NewApp(cfg *config.Config, w io.Writer) (*App, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithFormat(w, level, cfg.Log.Format)

	reg := prometheus.NewRegistry()
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  observability.NewMetrics(reg),
		Streams:  httpadapter.NewStreamManager(logger),
	}

	store, locker, err := app.openStore()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	stop, err := corpus.StopWords(cfg.Filter.StopWords)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	opts := []mnemo.Option{
		mnemo.WithOrder(cfg.Order),
		mnemo.WithLogger(logger),
		mnemo.WithTokenizer(corpus.New(corpus.WithSentenceLimit(cfg.SentenceLimit))),
		mnemo.WithPolicy(runtime.Policy{
			MinWordLength: cfg.Filter.MinWordLength,
			StopWords:     stop,
			RequireEnd:    cfg.Filter.RequireEnd,
		}),
		mnemo.WithBuildHooks(observability.Combine(
			observability.LoggingHooks(logger),
			app.Metrics.Hooks(),
			app.Streams.Hooks(),
		)),
		mnemo.WithDiagnostics(cfg.Diagnostics),
		mnemo.WithSeed(cfg.Seed),
	}
	if store != nil {
		opts = append(opts, mnemo.WithStore(store))
	}
	if locker != nil {
		opts = append(opts, mnemo.WithLocker(locker))
	}

	engine, err := mnemo.New(cfg.Corpus, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Engine = engine
	return app, nil
}

// openStore builds the configured model cache, wrapped with metrics and validation.
// A nil store means caching is disabled.
func (a *App) openStore() (ports.ModelStore, ports.DistributedLocker, error) {
	cfg := a.Config.Cache
	var (
		base   ports.ModelStore
		locker ports.DistributedLocker
	)

	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil, nil
	case config.BackendMemory:
		base = memory.NewStore()
	case config.BackendFile:
		base = file.New(cfg.Dir)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("sqlite dir: %w", err)
			}
		}
		s, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, s)
		base = s
	case config.BackendRedis:
		s := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithTTL(cfg.Redis.TTL),
			redisstore.WithPrefix(cfg.Redis.Prefix),
		)
		a.closers = append(a.closers, s)
		base = s
		if cfg.Redis.Lock {
			locker = redislock.NewLocker(s.Client(), cfg.Redis.Prefix+"lock:")
		}
	default:
		return nil, nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalid, cfg.Backend)
	}

	mws := []middleware.Middleware{
		middleware.NewMetricsMiddleware(a.Metrics),
		middleware.NewValidationMiddleware(),
	}
	if cfg.ReadOnly {
		mws = append(mws, middleware.NewReadOnlyMiddleware())
	}
	return middleware.Chain(base, mws...), locker, nil
}

// NewPool returns a worker pool sized from the server settings, reporting its
// queue depth to the app metrics. The caller starts and stops it.
func (a *App) NewPool() *pool.Pool {
	return pool.New(
		pool.WithWorkers(a.Config.Server.Workers),
		pool.WithLogger(a.Logger),
		pool.WithObserver(a.Metrics),
	)
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
