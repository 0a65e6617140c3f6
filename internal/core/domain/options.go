package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// Convention selects the visibility and names of the embedded constants.
type Convention string

const (
	// ConventionExported emits `pub const wasm` and `pub const loader`.
	ConventionExported Convention = "exported"
	// ConventionInternal emits `const wasm` and `const js_loader`.
	ConventionInternal Convention = "internal"
)

// ConstantNames holds the visibility prefix and symbol names of a convention.
type ConstantNames struct {
	Visibility string
	Binary     string
	Loader     string
}

// Names returns the constant names for the convention.
func (c Convention) Names() ConstantNames {
	if c == ConventionInternal {
		return ConstantNames{Binary: "wasm", Loader: "js_loader"}
	}
	return ConstantNames{Visibility: "pub ", Binary: "wasm", Loader: "loader"}
}

// LoaderEncoding selects how the loader is read and embedded.
type LoaderEncoding string

const (
	// LoaderText embeds the loader as a string constant.
	LoaderText LoaderEncoding = "text"
	// LoaderBytes embeds the loader as a byte array constant.
	LoaderBytes LoaderEncoding = "bytes"
)

// PayloadMode selects how an annotation payload is interpreted.
type PayloadMode string

const (
	// PayloadAuto picks file mode for a single string literal and inline mode otherwise.
	PayloadAuto PayloadMode = "auto"
	// PayloadInline requires inline configuration tokens.
	PayloadInline PayloadMode = "inline"
	// PayloadFile requires a quoted fragment path.
	PayloadFile PayloadMode = "file"
)

// Options parameterize a pipeline run.
type Options struct {
	PayloadMode PayloadMode
	Convention  Convention
	Loader      LoaderEncoding
	// Dependencies are merged into every manifest before the payload's own.
	Dependencies DependencySpec
}

// DefaultOptions returns the exported/text/auto configuration.
func DefaultOptions() Options {
	return Options{
		PayloadMode:  PayloadAuto,
		Convention:   ConventionExported,
		Loader:       LoaderText,
		Dependencies: NewDependencySpec(),
	}
}

// Validate checks every enumerated option.
func (o Options) Validate() error {
	switch o.PayloadMode {
	case PayloadAuto, PayloadInline, PayloadFile:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown payload mode"), "payload", string(o.PayloadMode))
	}
	switch o.Convention {
	case ConventionExported, ConventionInternal:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown convention"), "convention", string(o.Convention))
	}
	switch o.Loader {
	case LoaderText, LoaderBytes:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown loader encoding"), "loader", string(o.Loader))
	}
	return nil
}

// Command is an external process invocation.
type Command struct {
	Args []string
	Dir  string
}

// String renders the command line for logs.
func (c Command) String() string {
	return fmt.Sprintf("%v (in %s)", c.Args, c.Dir)
}

// ToolchainSettings configure the external scaffold generator and build tool.
type ToolchainSettings struct {
	// Scaffold is the command creating a library project; the module name is appended.
	Scaffold []string
	// Build is the command building the sub-project in its root directory.
	Build []string
	// Dependency is the toolchain's own crate, pinned to "*" in every manifest.
	Dependency string
}

// DefaultToolchainSettings returns cargo + wasm-pack for the web target.
func DefaultToolchainSettings() ToolchainSettings {
	return ToolchainSettings{
		Scaffold:   []string{"cargo", "new", "--lib"},
		Build:      []string{"wasm-pack", "build", "--target", "web"},
		Dependency: "wasm-bindgen",
	}
}

// Source pairs a host file with the file its expansion is written to.
type Source struct {
	Input  string
	Output string
}

// Config is the resolved project configuration.
type Config struct {
	Root      string
	Options   Options
	Toolchain ToolchainSettings
	Sources   []Source
}

// DefaultConfig returns the configuration used when no wasmbed.yaml exists.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:      root,
		Options:   DefaultOptions(),
		Toolchain: DefaultToolchainSettings(),
	}
}

// Layout returns the filesystem layout of the configured root.
func (c *Config) Layout() Layout {
	return NewLayout(c.Root)
}
