package domain

import "path/filepath"

const (
	// StagingDirName is the name of the directory holding all materialized sub-projects.
	StagingDirName = ".wasmbed"

	// StoreDirName is the name of the build info directory inside the staging root.
	// The leading dot keeps it apart from module directories, which are identifiers.
	StoreDirName = ".store"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "wasmbed.yaml"

	// ManifestFileName is the name of a sub-project's manifest.
	ManifestFileName = "Cargo.toml"

	// SourceDirName is the sub-project's source directory.
	SourceDirName = "src"

	// SourceEntryFileName is the sub-project's source entry point.
	SourceEntryFileName = "lib.rs"

	// OutputDirName is the directory the build tool writes its artifacts to.
	OutputDirName = "pkg"

	// BinaryExt is the extension of the binary artifact.
	BinaryExt = ".wasm"

	// LoaderExt is the extension of the loader artifact.
	LoaderExt = ".js"

	// RootEnvVar names the environment variable holding the project root.
	RootEnvVar = "WASMBED_ROOT"

	// CargoRootEnvVar is the project root variable set by cargo for build scripts and macros.
	CargoRootEnvVar = "CARGO_MANIFEST_DIR"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Layout resolves every path the pipeline touches from an explicit project root.
type Layout struct {
	Root string
}

// NewLayout returns the layout for the given project root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// StagingRoot returns the directory holding all sub-projects.
func (l Layout) StagingRoot() string {
	return filepath.Join(l.Root, StagingDirName)
}

// StorePath returns the build info directory.
func (l Layout) StorePath() string {
	return filepath.Join(l.StagingRoot(), StoreDirName)
}

// Project returns the working project of the named module.
func (l Layout) Project(module string) WorkingProject {
	root := filepath.Join(l.StagingRoot(), module)
	out := filepath.Join(root, OutputDirName)
	return WorkingProject{
		Module:          module,
		Root:            root,
		ManifestPath:    filepath.Join(root, ManifestFileName),
		SourceEntryPath: filepath.Join(root, SourceDirName, SourceEntryFileName),
		OutputDir:       out,
		BinaryPath:      filepath.Join(out, module+"_bg"+BinaryExt),
		LoaderPath:      filepath.Join(out, module+LoaderExt),
	}
}

// Resolve returns path unchanged when absolute, otherwise joined to the project root.
func (l Layout) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.Root, path)
}
