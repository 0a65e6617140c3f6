package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.trai.ch/wasmbed/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Root string
	Overrides
}

// Watch expands every configured source, then re-expands a source whenever
// its input changes. It returns when ctx is canceled.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := a.configure(opts.Root, opts.Overrides)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return domain.ErrNoSources
	}
	p, err := a.newPipeline(cfg)
	if err != nil {
		return err
	}

	layout := cfg.Layout()
	sources := make(map[string]domain.Source, len(cfg.Sources))
	paths := make([]string, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		in := filepath.Clean(layout.Resolve(src.Input))
		sources[in] = domain.Source{Input: in, Output: layout.Resolve(src.Output)}
		paths = append(paths, in)
	}

	// Expansion runs one source at a time, both for the first pass and for
	// debounced batches.
	var mu sync.Mutex
	expand := func(inputs []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, in := range inputs {
			if ctx.Err() != nil {
				return
			}
			src, ok := sources[in]
			if !ok {
				continue
			}
			if err := a.expandFile(ctx, p, src.Input, src.Output, nil); err != nil {
				a.logger.Error(err)
			}
		}
	}

	expand(paths)

	w, err := a.watchers()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, paths); err != nil {
		_ = w.Stop()
		return zerr.Wrap(err, "failed to start watching sources")
	}
	a.logger.Info(fmt.Sprintf("watching %d source(s)", len(paths)))

	debouncer := watcher.NewDebouncer(a.debounce, expand)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range w.Events() {
			switch event.Operation {
			case ports.OpWrite, ports.OpCreate:
				a.logger.Debug(fmt.Sprintf("changed: %s", event.Path))
				debouncer.Add(event.Path)
			case ports.OpRemove, ports.OpRename:
			}
		}
		if ctx.Err() == nil {
			return zerr.New("file watcher stopped")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return w.Stop()
	})

	return g.Wait()
}
