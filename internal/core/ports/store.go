package ports

import "go.trai.ch/wasmbed/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving build information.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for a given module.
	// Returns nil, nil if not found.
	Get(root, module string) (*domain.BuildInfo, error)

	// Put stores the build info.
	Put(root string, info domain.BuildInfo) error

	// Delete removes the build info of a module. A missing record is not an error.
	Delete(root, module string) error
}
