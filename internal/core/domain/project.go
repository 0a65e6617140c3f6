package domain

// WorkingProject is a materialized sub-project of one module.
// It is durable and reused by every run for the same module name.
type WorkingProject struct {
	Module          string
	Root            string
	ManifestPath    string
	SourceEntryPath string
	OutputDir       string
	BinaryPath      string
	LoaderPath      string
}

// BuildResult is the observed outcome of a toolchain invocation.
type BuildResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Succeeded reports whether the process exited with status zero.
func (r *BuildResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// Artifact holds the two build outputs of a module.
type Artifact struct {
	Binary []byte
	Loader []byte
}
