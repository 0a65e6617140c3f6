package config

// File represents the structure of the wasmbed.yaml configuration file.
type File struct {
	Version      string         `yaml:"version"`
	Convention   string         `yaml:"convention"`
	Loader       string         `yaml:"loader"`
	Payload      string         `yaml:"payload"`
	Toolchain    *ToolchainDTO  `yaml:"toolchain"`
	Dependencies map[string]any `yaml:"dependencies"`
	Sources      []SourceDTO    `yaml:"sources"`
}

// ToolchainDTO overrides the external commands.
type ToolchainDTO struct {
	Scaffold   []string `yaml:"scaffold"`
	Build      []string `yaml:"build"`
	Dependency string   `yaml:"dependency"`
}

// SourceDTO pairs a host file with its expansion output.
type SourceDTO struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}
