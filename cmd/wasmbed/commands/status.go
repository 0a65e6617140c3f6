package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/wasmbed/internal/app"
	"go.trai.ch/wasmbed/internal/ui/output"
	"go.trai.ch/wasmbed/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List materialized modules and their last build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modules, err := c.app.Status(cmd.Context(), c.root)
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), modules)
			return nil
		},
	}
}

func renderStatus(w io.Writer, modules []app.ModuleStatus) {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.Profile(w))
	muted := style.Muted.Renderer(r)

	if len(modules) == 0 {
		_, _ = fmt.Fprintln(w, muted.Render("no modules materialized"))
		return
	}

	width := 0
	for _, m := range modules {
		width = max(width, len(m.Module))
	}
	name := style.Name.Renderer(r).Width(width)
	ok := style.OK.Renderer(r)
	fail := style.Fail.Renderer(r)

	for _, m := range modules {
		icon := ok.Render(style.Check)
		if !m.Built {
			icon = fail.Render(style.Cross)
		}

		detail := "no build recorded"
		if m.Info != nil {
			detail = fmt.Sprintf("wasm %d B  loader %d B  %s  %s",
				m.Info.WasmSize, m.Info.LoaderSize, m.Info.WasmHash,
				m.Info.Timestamp.Local().Format(time.DateTime))
		}
		_, _ = fmt.Fprintf(w, "%s %s  %s\n", icon, name.Render(m.Module), muted.Render(detail))
	}
}
