// Package app implements the application layer for wasmbed.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/wasmbed/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/wasmbed/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	toolchains   ports.ToolchainFactory
	logger       ports.Logger
	tracer       ports.Tracer
	store        ports.BuildInfoStore
	watchers     ports.WatcherFactory

	getenv   func(string) string
	getwd    func() (string, error)
	debounce time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	toolchains ports.ToolchainFactory,
	log ports.Logger,
	tracer ports.Tracer,
	store ports.BuildInfoStore,
	watchers ports.WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		toolchains:   toolchains,
		logger:       log,
		tracer:       tracer,
		store:        store,
		watchers:     watchers,
		getenv:       os.Getenv,
		getwd:        os.Getwd,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithEnv replaces the environment lookup used for root resolution.
func (a *App) WithEnv(getenv func(string) string) *App {
	a.getenv = getenv
	return a
}

// WithWorkingDir fixes the directory root discovery starts from.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// WithDebounceWindow sets how long watch mode waits for a burst of changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

// Overrides are option values given on the command line. Empty fields keep
// the configured value.
type Overrides struct {
	Convention string
	Loader     string
	Payload    string
}

func (o Overrides) apply(opts *domain.Options) {
	if o.Convention != "" {
		opts.Convention = domain.Convention(o.Convention)
	}
	if o.Loader != "" {
		opts.Loader = domain.LoaderEncoding(o.Loader)
	}
	if o.Payload != "" {
		opts.PayloadMode = domain.PayloadMode(o.Payload)
	}
}

// ConfigureLogging switches the logger between pretty and JSON output and
// enables debug lines when verbose is set.
func (a *App) ConfigureLogging(verbose, jsonOutput bool) {
	l, ok := a.logger.(interface {
		SetJSON(enable bool)
		SetVerbose(enable bool)
	})
	if !ok {
		return
	}
	l.SetJSON(jsonOutput)
	l.SetVerbose(verbose)
}

// ResolveRoot determines the project root: the flag value, then WASMBED_ROOT,
// then CARGO_MANIFEST_DIR, then the nearest ancestor holding wasmbed.yaml.
func (a *App) ResolveRoot(flag string) (string, error) {
	candidates := []struct {
		source string
		path   string
	}{
		{source: "--root", path: flag},
		{source: domain.RootEnvVar, path: a.getenv(domain.RootEnvVar)},
		{source: domain.CargoRootEnvVar, path: a.getenv(domain.CargoRootEnvVar)},
	}

	for _, c := range candidates {
		if c.path == "" {
			continue
		}
		abs, err := filepath.Abs(c.path)
		if err != nil {
			return "", errors.Join(domain.ErrMissingEnvironment, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return "", zerr.With(zerr.With(
				zerr.Wrap(domain.ErrMissingEnvironment, "project root is not a directory"),
				"source", c.source), "path", abs)
		}
		a.logger.Debug(fmt.Sprintf("project root %s (from %s)", abs, c.source))
		return abs, nil
	}

	cwd, err := a.getwd()
	if err != nil {
		return "", errors.Join(domain.ErrMissingEnvironment, err)
	}
	root, err := a.configLoader.DiscoverRoot(cwd)
	if err != nil {
		return "", err
	}
	a.logger.Debug(fmt.Sprintf("project root %s (from %s)", root, domain.ConfigFileName))
	return root, nil
}

// configure resolves the root, loads wasmbed.yaml and applies the overrides.
func (a *App) configure(rootFlag string, overrides Overrides) (*domain.Config, error) {
	root, err := a.ResolveRoot(rootFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := a.configLoader.Load(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	overrides.apply(&cfg.Options)
	return cfg, nil
}

func (a *App) newPipeline(cfg *domain.Config) (*pipeline.Pipeline, error) {
	return pipeline.New(a.toolchains(cfg.Toolchain), a.logger, a.tracer, a.store, cfg)
}

// writeOutput writes an expanded host file.
func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", path)
	}
	if err := os.WriteFile(path, []byte(content), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", path)
	}
	return nil
}

func stdoutOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
