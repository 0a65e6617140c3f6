package domain

import "go.trai.ch/zerr"

var (
	// ErrMissingEnvironment is returned when the enclosing project root cannot be determined.
	ErrMissingEnvironment = zerr.New("could not determine project root, set --root, WASMBED_ROOT or CARGO_MANIFEST_DIR")

	// ErrIO is returned when a directory or file operation fails.
	ErrIO = zerr.New("i/o failure")

	// ErrManifestParse is returned when a manifest or dependency fragment is not valid TOML.
	ErrManifestParse = zerr.New("failed to parse manifest")

	// ErrToolchainInvocation is returned when the scaffold generator or build tool cannot be launched.
	ErrToolchainInvocation = zerr.New("failed to invoke toolchain")

	// ErrToolchainFailed is returned when the build tool ran but exited with a non-zero status.
	ErrToolchainFailed = zerr.New("toolchain reported failure")

	// ErrArtifactMissing is returned when the binary or loader is absent after a build.
	ErrArtifactMissing = zerr.New("build artifact missing")

	// ErrLoaderEncoding is returned when the loader is embedded as text but is not valid UTF-8.
	ErrLoaderEncoding = zerr.New("loader is not valid UTF-8 text")

	// ErrLex is returned when source text cannot be split into token trees.
	ErrLex = zerr.New("failed to lex source")

	// ErrMissingModuleName is returned when an annotated item has no identifier before its body.
	ErrMissingModuleName = zerr.New("annotated item has no module name")

	// ErrMissingModuleBody is returned when an annotated item has no brace-delimited body.
	ErrMissingModuleBody = zerr.New("annotated item has no module body")

	// ErrPayloadMode is returned when the payload shape does not match the configured payload mode.
	ErrPayloadMode = zerr.New("payload does not match payload mode")

	// ErrInvalidConfig is returned when a configuration value is not recognized.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrNoSources is returned when expand or watch has no input to work on.
	ErrNoSources = zerr.New("no sources to expand, pass an input file or list sources in wasmbed.yaml")

	// ErrExpansionFailed is returned when expanding a host file fails.
	ErrExpansionFailed = zerr.New("expansion failed")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")
)
