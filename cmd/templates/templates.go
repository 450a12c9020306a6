// Package templates handles the templates command
package templates

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/invoice-extract/cmd/root"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/store"
)

// Cmd represents the templates command
var Cmd = &cobra.Command{
	Use:   "templates",
	Short: "List the loaded invoice templates",
	Long: `List the templates in match priority order with their keywords and fields,
followed by any definition files that were skipped as invalid.

Example:
  invoice-extract templates --templates ./templates`,
	Args: cobra.NoArgs,
	RunE: templatesFunc,
}

func templatesFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	return Print(cmd.OutOrStdout(), appContainer.GetTemplates(), appContainer.GetLoadReport())
}

// Print writes the template listing to w.
func Print(w io.Writer, templates []models.Template, report store.LoadReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tISSUER\tKEYWORDS\tFIELDS\tFILE")
	for i, t := range templates {
		fields := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, f.Name)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, t.Issuer,
			strings.Join(t.Keywords, ", "), strings.Join(fields, ", "), t.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(report.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "\nSkipped %d invalid definition(s):\n", len(report.Skipped))
		for _, e := range report.Skipped {
			_, _ = fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	_, err := fmt.Fprintf(w, "\n%d template(s) loaded from %s\n", len(templates), report.Dir)
	return err
}
