package domain

import (
	"maps"
	"slices"
)

// DependencySpec maps a dependency name to its version or feature specification.
// Values are TOML-compatible: a version string, a list, or a nested table
// (map[string]any).
type DependencySpec map[string]any

// NewDependencySpec returns an empty spec.
func NewDependencySpec() DependencySpec {
	return DependencySpec{}
}

// Set records value under name, replacing any previous value.
func (d DependencySpec) Set(name string, value any) DependencySpec {
	d[name] = value
	return d
}

// Version records a plain version requirement such as "0.2" or "*".
func (d DependencySpec) Version(name, version string) DependencySpec {
	return d.Set(name, version)
}

// WithFeatures records a detailed requirement with a feature list.
func (d DependencySpec) WithFeatures(name, version string, features ...string) DependencySpec {
	list := make([]any, len(features))
	for i, f := range features {
		list[i] = f
	}
	return d.Set(name, map[string]any{
		"version":  version,
		"features": list,
	})
}

// Merge copies every entry of other into d. Entries of other win on collision.
func (d DependencySpec) Merge(other DependencySpec) DependencySpec {
	maps.Copy(d, other)
	return d
}

// Names returns the dependency names in sorted order.
func (d DependencySpec) Names() []string {
	return slices.Sorted(maps.Keys(d))
}

// MergeDependencySpecs returns a new spec holding the union of all specs.
// Later specs win on collision.
func MergeDependencySpecs(specs ...DependencySpec) DependencySpec {
	out := NewDependencySpec()
	for _, s := range specs {
		out.Merge(s)
	}
	return out
}
