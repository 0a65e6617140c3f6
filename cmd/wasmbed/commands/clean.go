package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/wasmbed/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [modules...]",
		Short: "Remove materialized modules",
		Long:  "Remove the named sub-projects, or the whole .wasmbed directory when no module is named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Root:    c.root,
				Modules: args,
			})
		},
	}
}
