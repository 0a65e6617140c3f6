package ports

import "go.trai.ch/wasmbed/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads wasmbed.yaml from root. A missing file yields the default configuration.
	Load(root string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory containing wasmbed.yaml.
	DiscoverRoot(cwd string) (string, error)
}
