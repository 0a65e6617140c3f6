package project

import (
	"errors"
	"os"
	"unicode/utf8"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/zerr"
)

// ReadArtifact loads the binary and loader produced by a successful build.
// A text loader must be valid UTF-8.
func ReadArtifact(proj domain.WorkingProject, encoding domain.LoaderEncoding) (*domain.Artifact, error) {
	binary, err := readOutput(proj.BinaryPath)
	if err != nil {
		return nil, err
	}
	loader, err := readOutput(proj.LoaderPath)
	if err != nil {
		return nil, err
	}
	if encoding == domain.LoaderText && !utf8.Valid(loader) {
		return nil, zerr.With(zerr.Wrap(domain.ErrLoaderEncoding, "loader is not valid UTF-8"), "path", proj.LoaderPath)
	}
	return &domain.Artifact{Binary: binary, Loader: loader}, nil
}

func readOutput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the staging root
	if err == nil {
		return data, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, zerr.With(zerr.Wrap(domain.ErrArtifactMissing, "build output not found"), "path", path)
	}
	return nil, errors.Join(domain.ErrIO, zerr.With(zerr.Wrap(err, "failed to read build output"), "path", path))
}
