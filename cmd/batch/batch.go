// Package batch handles batch processing of a directory of PDFs
package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/invoice-extract/cmd/common"
	"fjacquet/invoice-extract/cmd/root"
	"fjacquet/invoice-extract/internal/fileutils"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/validation"
)

var (
	inputDir  string
	outputDir string
	opts      common.RunOptions
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process every PDF in a directory",
	Long: `Batch process every PDF in an input directory and write one aggregated
spreadsheet to another directory.

Files are processed in name order. The spreadsheet is named after
export.file_name.

Example:
  invoice-extract batch -i invoices/ -o out/`,
	Args: cobra.NoArgs,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Input directory")
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: xlsx or csv")
	Cmd.Flags().StringVar(&opts.DebugReport, "debug-report", "", "Write the per-document debug report (YAML) to this file")
	Cmd.Flags().BoolVarP(&opts.Validate, "validate", "v", false, "Reject files without a PDF header before extraction")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	if inputDir == "" || outputDir == "" {
		return fmt.Errorf("input and output directories must be specified")
	}
	if err := validation.IsValidDirectory(inputDir); err != nil {
		return err
	}
	if err := validation.IsValidOutputFormat(opts.Format); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	logger := appContainer.GetLogger()

	files, err := fileutils.ListFilesWithExtensions(inputDir, ".pdf")
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("No PDF files found in input directory", logging.F("dir", inputDir))
		return nil
	}
	logger.Info("Found files for processing", logging.F(logging.FieldCount, len(files)))

	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return err
	}

	runOpts := opts
	runOpts.Output = filepath.Join(outputDir, appContainer.GetConfig().Export.FileName)
	if runOpts.Format != "" {
		runOpts.Output = strings.TrimSuffix(runOpts.Output, filepath.Ext(runOpts.Output))
	}

	res, err := common.ProcessFiles(cmd.Context(), appContainer, files, runOpts)
	if err != nil {
		return fmt.Errorf("error during batch processing: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Batch processing completed. %d of %d invoices written to %s\n",
		res.Rows, len(files), res.OutputFile)
	return nil
}
