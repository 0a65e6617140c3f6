// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/wasmbed/internal/adapters/cas"
	_ "go.trai.ch/wasmbed/internal/adapters/config"
	_ "go.trai.ch/wasmbed/internal/adapters/logger"
	_ "go.trai.ch/wasmbed/internal/adapters/shell"
	_ "go.trai.ch/wasmbed/internal/adapters/telemetry"
	_ "go.trai.ch/wasmbed/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/wasmbed/internal/app"
)
