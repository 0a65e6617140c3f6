package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/wasmbed/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var opts app.WatchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-expand configured sources when they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Root = c.root
			return c.app.Watch(cmd.Context(), opts)
		},
	}

	addOverrideFlags(cmd, &opts.Overrides)

	return cmd
}
