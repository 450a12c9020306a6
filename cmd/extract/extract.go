// Package extract handles the extract command
package extract

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/invoice-extract/cmd/common"
	"fjacquet/invoice-extract/cmd/root"
	"fjacquet/invoice-extract/internal/validation"
)

var (
	inputs []string
	opts   common.RunOptions
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract invoices from PDF files into one spreadsheet",
	Long: `Extract invoice fields from one or more PDF files and write them, in the
order given, to a single aggregated spreadsheet.

Documents that match no template, have no text or fail are reported and left
out; they never stop the others.

Example:
  invoice-extract extract -i acme.pdf -i globex.pdf -o invoices.xlsx`,
	Args: cobra.NoArgs,
	RunE: extractFunc,
}

func init() {
	Cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Input PDF file (repeatable)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default: export.file_name)")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: xlsx or csv (default: from output extension)")
	Cmd.Flags().StringVar(&opts.DebugReport, "debug-report", "", "Write the per-document debug report (YAML) to this file")
	Cmd.Flags().BoolVarP(&opts.Validate, "validate", "v", false, "Reject files without a PDF header before extraction")
}

func extractFunc(cmd *cobra.Command, args []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("at least one --input file is required")
	}
	if err := validation.IsValidOutputFormat(opts.Format); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	res, err := common.ProcessFiles(cmd.Context(), appContainer, inputs, opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d invoices written to %s\n", res.Rows, len(res.Report.Outcomes), res.OutputFile)
	return nil
}
