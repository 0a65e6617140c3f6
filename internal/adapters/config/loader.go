// Package config provides the configuration loader for wasmbed.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only configuration schema version.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads wasmbed.yaml from root. Without a file the defaults apply.
func (l *Loader) Load(root string) (*domain.Config, error) {
	cfg := domain.DefaultConfig(filepath.Clean(root))

	configPath := filepath.Join(cfg.Root, domain.ConfigFileName)
	var file File
	found, err := readAndUnmarshalYAML(configPath, &file)
	if err != nil {
		return nil, err
	}
	if !found {
		l.Logger.Debug("no " + domain.ConfigFileName + " in " + cfg.Root + ", using defaults")
		return cfg, nil
	}

	if err := apply(cfg, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

// DiscoverRoot walks up from cwd to the nearest directory containing wasmbed.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		if _, err := os.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrMissingEnvironment, "no "+domain.ConfigFileName+" found"), "cwd", cwd)
}

func apply(cfg *domain.Config, file *File) error {
	if file.Version != "" && file.Version != SupportedVersion {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported version"), "version", file.Version)
	}

	if file.Convention != "" {
		cfg.Options.Convention = domain.Convention(file.Convention)
	}
	if file.Loader != "" {
		cfg.Options.Loader = domain.LoaderEncoding(file.Loader)
	}
	if file.Payload != "" {
		cfg.Options.PayloadMode = domain.PayloadMode(file.Payload)
	}
	if err := cfg.Options.Validate(); err != nil {
		return err
	}

	if tc := file.Toolchain; tc != nil {
		if len(tc.Scaffold) > 0 {
			cfg.Toolchain.Scaffold = tc.Scaffold
		}
		if len(tc.Build) > 0 {
			cfg.Toolchain.Build = tc.Build
		}
		if tc.Dependency != "" {
			cfg.Toolchain.Dependency = tc.Dependency
		}
	}

	deps, err := dependencies(file.Dependencies)
	if err != nil {
		return err
	}
	cfg.Options.Dependencies = domain.MergeDependencySpecs(cfg.Options.Dependencies, deps)

	for i, src := range file.Sources {
		if src.Input == "" || src.Output == "" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "source needs input and output"), "index", i)
		}
		if filepath.Clean(src.Input) == filepath.Clean(src.Output) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "source output overwrites its input"), "index", i)
		}
		cfg.Sources = append(cfg.Sources, domain.Source{Input: src.Input, Output: src.Output})
	}
	return nil
}

// dependencies converts the YAML dependency table. A requirement is either a
// version string or a table; a table holding only version and features is
// normalized, any other table is kept as written.
func dependencies(raw map[string]any) (domain.DependencySpec, error) {
	spec := domain.NewDependencySpec()
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			spec.Version(name, v)
		case map[string]any:
			version, features, ok := versionAndFeatures(v)
			if ok {
				spec.WithFeatures(name, version, features...)
				continue
			}
			spec.Set(name, v)
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "dependency must be a version string or a table"),
				"dependency", name)
		}
	}
	return spec, nil
}

func versionAndFeatures(table map[string]any) (string, []string, bool) {
	if len(table) != 2 {
		return "", nil, false
	}
	version, ok := table["version"].(string)
	if !ok {
		return "", nil, false
	}
	list, ok := table["features"].([]any)
	if !ok {
		return "", nil, false
	}
	features := make([]string, 0, len(list))
	for _, f := range list {
		name, ok := f.(string)
		if !ok {
			return "", nil, false
		}
		features = append(features, name)
	}
	return version, features, true
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// It reports false without error when the file does not exist.
func readAndUnmarshalYAML[T any](configPath string, target *T) (bool, error) {
	// #nosec G304 -- configPath is derived from the project root
	configFile, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return false, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}

	return true, nil
}
