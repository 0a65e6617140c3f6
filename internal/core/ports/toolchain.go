package ports

import (
	"context"

	"go.trai.ch/wasmbed/internal/core/domain"
)

// Toolchain creates and builds WebAssembly sub-projects.
//
//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// Scaffold creates a library project named module inside stagingRoot.
	// A non-zero exit code is reported in the result.
	Scaffold(ctx context.Context, stagingRoot, module string) (*domain.BuildResult, error)
	// Build compiles the project for the web target.
	Build(ctx context.Context, project domain.WorkingProject) (*domain.BuildResult, error)
}

// ToolchainFactory returns a Toolchain configured with the given settings.
type ToolchainFactory func(settings domain.ToolchainSettings) Toolchain
