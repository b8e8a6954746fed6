package cli

import (
	"context"
	"sort"
)

// ListCache returns the cached model keys in order.
func ListCache(ctx context.Context, app *App) ([]string, error) {
	keys, err := app.Engine.Cache().List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// EvictCache removes key, or the engine's own model when key is empty.
func EvictCache(ctx context.Context, app *App, key string) (string, error) {
	if key == "" {
		key = app.Engine.Key()
	}
	return key, app.Engine.Cache().Evict(ctx, key)
}

// WarmCache trains the corpus into the cache if it is not there yet.
func WarmCache(ctx context.Context, app *App) (string, error) {
	return app.Engine.Key(), app.Engine.Load(ctx)
}
