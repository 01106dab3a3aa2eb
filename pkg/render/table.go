package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

func writeTable(w io.Writer, reports []*report.Report) error {
	for i, rep := range reports {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("write table: %w", err)
			}
		}

		tbl := table.NewWriter()
		tbl.SetOutputMirror(w)
		tbl.SetStyle(table.StyleLight)
		tbl.SetTitle("Analysis for " + rep.DisplayName())
		tbl.AppendHeader(table.Row{"Analyzer", "Label", "Location", "Severity", "Message"})

		for _, e := range rep.Entries() {
			if f, failed := e.Outcome.Failure(); failed {
				tbl.AppendRow(table.Row{e.AnalyzerID, "", "", f.Reason.String(), f.Message})

				continue
			}

			findings := e.Outcome.Findings()
			if len(findings) == 0 {
				tbl.AppendRow(table.Row{e.AnalyzerID, "", "", "", "no findings"})

				continue
			}

			for _, f := range findings {
				tbl.AppendRow(table.Row{e.AnalyzerID, f.Label, f.Location.String(), f.Severity.String(), f.Message})
			}
		}

		tbl.Render()
	}

	return nil
}
