package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/wasmbed/internal/app"
)

func (c *CLI) newExpandCmd() *cobra.Command {
	var opts app.ExpandOptions

	cmd := &cobra.Command{
		Use:   "expand [input]",
		Short: "Build annotated modules and embed their artifacts",
		Long: "Expand a host file, writing the result to stdout or to --output.\n" +
			"Without an input every source listed in wasmbed.yaml is expanded.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Input = args[0]
			}
			opts.Root = c.root
			opts.Stdout = cmd.OutOrStdout()
			return c.app.Expand(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the expansion to this file")
	addOverrideFlags(cmd, &opts.Overrides)

	return cmd
}
