// Package manifest reads and rewrites the package manifest of a sub-project.
package manifest

import (
	"bytes"
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// LibraryKey is the library target table.
	LibraryKey = "lib"
	// CrateTypeKey lists the library's artifact kinds.
	CrateTypeKey = "crate-type"
	// DependenciesKey is the dependency table.
	DependenciesKey = "dependencies"
	// DynamicLibrary is the artifact kind the web build requires.
	DynamicLibrary = "cdylib"
	// AnyVersion pins the toolchain dependency.
	AnyVersion = "*"
)

// Document is a parsed manifest. Unknown keys are preserved.
type Document struct {
	path string
	tree map[string]any
}

// Load reads the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the staging root
	if err != nil {
		return nil, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path))
	}
	return Parse(path, data)
}

// Parse decodes manifest data. path is used when the document is saved.
func Parse(path string, data []byte) (*Document, error) {
	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Join(domain.ErrManifestParse, zerr.With(zerr.Wrap(err, "invalid manifest"), "path", path))
	}
	return &Document{path: path, tree: tree}, nil
}

// Synthesize configures the document for a web build.
//
// The library kind is set to a dynamic library, the toolchain dependency is
// pinned to any version, and then each spec is applied in order. Later
// entries win on collision, so a payload may override the pinned version.
func (d *Document) Synthesize(toolchainDependency string, specs ...domain.DependencySpec) {
	lib := d.table(LibraryKey)
	lib[CrateTypeKey] = []any{DynamicLibrary}

	deps := d.table(DependenciesKey)
	if toolchainDependency != "" {
		deps[toolchainDependency] = AnyVersion
	}
	for _, spec := range specs {
		for name, value := range spec {
			deps[name] = value
		}
	}
}

// table returns the named top-level table, replacing any non-table value.
func (d *Document) table(key string) map[string]any {
	if t, ok := d.tree[key].(map[string]any); ok {
		return t
	}
	t := map[string]any{}
	d.tree[key] = t
	return t
}

// Dependencies returns the dependency table, or nil when absent.
func (d *Document) Dependencies() map[string]any {
	deps, _ := d.tree[DependenciesKey].(map[string]any)
	return deps
}

// CrateTypes returns the library's artifact kinds.
func (d *Document) CrateTypes() []any {
	lib, _ := d.tree[LibraryKey].(map[string]any)
	kinds, _ := lib[CrateTypeKey].([]any)
	return kinds
}

// Get returns a top-level value.
func (d *Document) Get(key string) any {
	return d.tree[key]
}

// Marshal encodes the document. Keys are emitted in sorted order.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(d.tree); err != nil {
		return nil, errors.Join(domain.ErrManifestParse, zerr.With(zerr.Wrap(err, "failed to encode manifest"), "path", d.path))
	}
	return buf.Bytes(), nil
}

// Save writes the document back to its path.
func (d *Document) Save() error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.path, data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", d.path))
	}
	return nil
}

// Synthesize loads the manifest at path, configures it and writes it back.
func Synthesize(path, toolchainDependency string, specs ...domain.DependencySpec) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	doc.Synthesize(toolchainDependency, specs...)
	if err := doc.Save(); err != nil {
		return nil, err
	}
	return doc, nil
}
