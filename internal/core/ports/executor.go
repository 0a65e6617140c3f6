// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/wasmbed/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command to completion and captures its output.
	//
	// A command that starts and exits non-zero is not an error: the exit code
	// is reported in the result. An error is returned only when the command
	// could not be launched.
	Execute(ctx context.Context, cmd domain.Command) (*domain.BuildResult, error)
}
