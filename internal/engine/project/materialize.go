// Package project manages the durable sub-projects built for each module.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/zerr"
)

// Materializer creates sub-projects and writes module bodies into them.
type Materializer struct {
	toolchain ports.Toolchain
	logger    ports.Logger
}

// NewMaterializer creates a Materializer.
func NewMaterializer(toolchain ports.Toolchain, logger ports.Logger) *Materializer {
	return &Materializer{toolchain: toolchain, logger: logger}
}

// Materialize scaffolds the sub-project of decl and overwrites its source entry
// with the module body.
//
// A failing scaffold command is tolerated: on later runs the project already
// exists and the generator refuses to recreate it.
func (m *Materializer) Materialize(
	ctx context.Context, layout domain.Layout, decl domain.ModuleDeclaration,
) (domain.WorkingProject, error) {
	proj := layout.Project(decl.Name)
	staging := layout.StagingRoot()

	if err := os.MkdirAll(staging, domain.DirPerm); err != nil {
		return proj, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to create staging root"), "path", staging))
	}

	res, err := m.toolchain.Scaffold(ctx, staging, decl.Name)
	if err != nil {
		return proj, err
	}
	if !res.Succeeded() {
		if _, statErr := os.Stat(proj.ManifestPath); statErr == nil {
			m.logger.Debug(fmt.Sprintf("reusing project %s", proj.Root))
		} else {
			m.logger.Warn(fmt.Sprintf("scaffold of %s exited with code %d", decl.Name, res.ExitCode))
		}
	}

	if err := os.MkdirAll(filepath.Dir(proj.SourceEntryPath), domain.DirPerm); err != nil {
		return proj, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to create source directory"), "path", proj.SourceEntryPath))
	}
	if err := os.WriteFile(proj.SourceEntryPath, []byte(decl.Body), domain.FilePerm); err != nil {
		return proj, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to write module body"), "path", proj.SourceEntryPath))
	}
	return proj, nil
}
