// Package commands implements the CLI commands for wasmbed.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/wasmbed/internal/app"
	"go.trai.ch/wasmbed/internal/build"
)

// CLI represents the command line interface for wasmbed.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	root    string
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogging(verbose, jsonOutput bool)
	Expand(ctx context.Context, opts app.ExpandOptions) error
	Watch(ctx context.Context, opts app.WatchOptions) error
	Status(ctx context.Context, root string) ([]app.ModuleStatus, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	var verbose, logJSON bool
	rootCmd := &cobra.Command{
		Use:           "wasmbed",
		Short:         "Embed WebAssembly modules built from annotated Rust source",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.ConfigureLogging(verbose, logJSON)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.root, "root", "", "Project root (defaults to WASMBED_ROOT, CARGO_MANIFEST_DIR or the directory holding wasmbed.yaml)")
	flags.BoolVar(&verbose, "verbose", false, "Log debug messages")
	flags.BoolVar(&logJSON, "log-json", false, "Log as JSON")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newExpandCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addOverrideFlags registers the option overrides shared by expand and watch.
func addOverrideFlags(cmd *cobra.Command, o *app.Overrides) {
	cmd.Flags().StringVar(&o.Convention, "convention", "", "Constant naming convention: exported or internal")
	cmd.Flags().StringVar(&o.Loader, "loader", "", "Loader encoding: text or bytes")
	cmd.Flags().StringVar(&o.Payload, "payload", "", "Payload mode: auto, inline or file")
}
