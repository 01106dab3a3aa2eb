package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelens/pkg/pipeline"
)

// NewAnalyzersCommand creates the subcommand that lists the built-in
// analyzers in the order their entries appear in a report.
func NewAnalyzersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyzers",
		Short: "List the registered analyzers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := pipeline.DefaultRegistry(pipeline.AnalyzerSettings{})
			if err != nil {
				return err
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"ID", "Title", "Extensions"})

			for _, a := range reg.Analyzers() {
				d := a.Descriptor()
				tbl.AppendRow(table.Row{d.ID, d.Title, strings.Join(d.Extensions, " ")})
			}

			tbl.Render()

			return nil
		},
	}
}
