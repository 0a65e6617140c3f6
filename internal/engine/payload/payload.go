// Package payload turns annotation payloads into dependency specifications.
package payload

import (
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/engine/tokens"
	"go.trai.ch/zerr"
)

// DependenciesKey is the table holding dependency requirements.
const DependenciesKey = "dependencies"

// Parse interprets the payload of an annotation under the given mode.
// A relative fragment path is resolved against the layout root.
func Parse(trees []tokens.Tree, mode domain.PayloadMode, layout domain.Layout) (domain.DependencySpec, error) {
	if len(trees) == 0 {
		return domain.NewDependencySpec(), nil
	}

	isFile := len(trees) == 1 && trees[0].IsString()
	switch {
	case mode == domain.PayloadFile && !isFile:
		return nil, zerr.With(zerr.Wrap(domain.ErrPayloadMode, "payload is not a quoted fragment path"), "mode", string(mode))
	case mode == domain.PayloadInline && isFile:
		return nil, zerr.With(zerr.Wrap(domain.ErrPayloadMode, "payload is a fragment path"), "mode", string(mode))
	}

	if isFile {
		path, err := trees[0].StringValue()
		if err != nil {
			return nil, errors.Join(domain.ErrManifestParse, err)
		}
		return LoadFragment(layout.Resolve(path))
	}
	return ParseInline(Reflow(trees))
}

// ParseInline parses reflowed configuration text.
func ParseInline(text string) (domain.DependencySpec, error) {
	doc, err := Decode([]byte(text), text)
	if err != nil {
		return nil, err
	}
	return Dependencies(doc), nil
}

// LoadFragment reads a configuration fragment file.
func LoadFragment(path string) (domain.DependencySpec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the annotation
	if err != nil {
		return nil, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to read fragment"), "path", path))
	}
	doc, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	return Dependencies(doc), nil
}

// Decode parses a TOML document into generic tables. origin names the
// document in errors.
func Decode(data []byte, origin string) (map[string]any, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(domain.ErrManifestParse, zerr.With(zerr.Wrap(err, "invalid configuration"), "origin", origin))
	}
	return doc, nil
}

// Dependencies returns the dependency table of doc. Other tables are ignored.
func Dependencies(doc map[string]any) domain.DependencySpec {
	spec := domain.NewDependencySpec()
	if deps, ok := doc[DependenciesKey].(map[string]any); ok {
		spec.Merge(deps)
	}
	return spec
}
