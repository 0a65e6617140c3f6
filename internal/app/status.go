package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/zerr"
)

// ModuleStatus describes one materialized sub-project.
type ModuleStatus struct {
	Module string
	Root   string
	// Built reports whether the binary artifact exists.
	Built bool
	// Info is the last recorded run, nil when none was recorded.
	Info *domain.BuildInfo
}

// Status lists the sub-projects under the staging root in name order.
func (a *App) Status(_ context.Context, rootFlag string) ([]ModuleStatus, error) {
	root, err := a.ResolveRoot(rootFlag)
	if err != nil {
		return nil, err
	}
	layout := domain.NewLayout(root)

	entries, err := os.ReadDir(layout.StagingRoot())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", layout.StagingRoot())
	}

	var modules []ModuleStatus
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		proj := layout.Project(entry.Name())
		info, err := a.store.Get(layout.StorePath(), proj.Module)
		if err != nil {
			return nil, err
		}
		_, statErr := os.Stat(proj.BinaryPath)
		modules = append(modules, ModuleStatus{
			Module: proj.Module,
			Root:   proj.Root,
			Built:  statErr == nil,
			Info:   info,
		})
	}
	return modules, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Root string
	// Modules lists the sub-projects to remove. When empty the whole staging
	// root is removed.
	Modules []string
}

// Clean removes materialized sub-projects and their build info.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	root, err := a.ResolveRoot(opts.Root)
	if err != nil {
		return err
	}
	layout := domain.NewLayout(root)

	if len(opts.Modules) == 0 {
		return a.remove(layout.StagingRoot())
	}

	var errs error
	for _, module := range opts.Modules {
		if !validModuleName(module) {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid module name"), "module", module))
			continue
		}
		if err := a.remove(layout.Project(module).Root); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if err := a.store.Delete(layout.StorePath(), module); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (a *App) remove(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		a.logger.Debug(fmt.Sprintf("nothing to remove at %s", path))
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIO, err.Error()), "path", path)
	}
	a.logger.Info(fmt.Sprintf("removed %s", path))
	return nil
}

func validModuleName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, `/\`)
}
