package domain

import "time"

// BuildInfo records the last successful run of a module.
type BuildInfo struct {
	Module     string    `json:"module,omitzero"`
	SourceHash string    `json:"source_hash,omitzero"`
	WasmHash   string    `json:"wasm_hash,omitzero"`
	LoaderHash string    `json:"loader_hash,omitzero"`
	WasmSize   int       `json:"wasm_size,omitzero"`
	LoaderSize int       `json:"loader_size,omitzero"`
	ExitCode   int       `json:"exit_code"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}
