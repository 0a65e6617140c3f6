package shell

import (
	"context"
	"slices"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
)

// Toolchain implements ports.Toolchain with configured command lines.
type Toolchain struct {
	executor ports.Executor
	settings domain.ToolchainSettings
}

// NewToolchain creates a Toolchain running its commands through executor.
func NewToolchain(executor ports.Executor, settings domain.ToolchainSettings) *Toolchain {
	return &Toolchain{executor: executor, settings: settings}
}

// NewFactory returns a ports.ToolchainFactory bound to executor.
func NewFactory(executor ports.Executor) ports.ToolchainFactory {
	return func(settings domain.ToolchainSettings) ports.Toolchain {
		return NewToolchain(executor, settings)
	}
}

// Scaffold runs the scaffold command with module appended, inside stagingRoot.
func (t *Toolchain) Scaffold(ctx context.Context, stagingRoot, module string) (*domain.BuildResult, error) {
	args := append(slices.Clone(t.settings.Scaffold), module)
	return t.executor.Execute(ctx, domain.Command{Args: args, Dir: stagingRoot})
}

// Build runs the build command in the project root.
func (t *Toolchain) Build(ctx context.Context, project domain.WorkingProject) (*domain.BuildResult, error) {
	return t.executor.Execute(ctx, domain.Command{Args: slices.Clone(t.settings.Build), Dir: project.Root})
}
