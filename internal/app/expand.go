package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// ExpandOptions configuration for the Expand method.
type ExpandOptions struct {
	Root string
	// Input is a single host file to expand. When empty every configured
	// source is expanded.
	Input string
	// Output receives the expansion of Input. When empty it goes to Stdout.
	Output string
	Overrides
	Stdout io.Writer
}

// Expand expands one host file or every source listed in wasmbed.yaml.
func (a *App) Expand(ctx context.Context, opts ExpandOptions) error {
	if opts.Input == "" && opts.Output != "" {
		return zerr.Wrap(domain.ErrInvalidConfig, "an output file needs an input file")
	}

	cfg, err := a.configure(opts.Root, opts.Overrides)
	if err != nil {
		return err
	}
	p, err := a.newPipeline(cfg)
	if err != nil {
		return err
	}

	if opts.Input != "" {
		return a.expandFile(ctx, p, opts.Input, opts.Output, stdoutOr(opts.Stdout))
	}

	if len(cfg.Sources) == 0 {
		return domain.ErrNoSources
	}
	layout := cfg.Layout()
	for _, src := range cfg.Sources {
		if err := a.expandFile(ctx, p, layout.Resolve(src.Input), layout.Resolve(src.Output), nil); err != nil {
			return err
		}
	}
	return nil
}

// expandFile expands the host file at in. The result is written to out, or
// to stdout when out is empty.
func (a *App) expandFile(ctx context.Context, p *pipeline.Pipeline, in, out string, stdout io.Writer) error {
	//nolint:gosec // Host files are named by the user
	src, err := os.ReadFile(in)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", in)
	}

	expanded, err := p.Expand(ctx, string(src))
	if err != nil {
		return errors.Join(domain.ErrExpansionFailed, zerr.With(zerr.Wrap(err, "failed to expand host file"), "input", in))
	}

	if out == "" {
		_, err := io.WriteString(stdoutOr(stdout), expanded)
		return err
	}
	if err := writeOutput(out, expanded); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("wrote %s", out))
	return nil
}
