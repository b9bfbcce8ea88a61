package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshwatch/fieldmap/internal/export"
)

var (
	exportOutput string
	exportFormat string
	exportPretty bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every sample, most recent first",
	Example: `  fieldmap export -o samples.json --pretty
  fieldmap export --format csv -o samples.csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format: json or csv (default from configuration)")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "indent JSON output")
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format := exportFormat
	if format == "" {
		format = config.Export.Format
	}
	pretty := exportPretty || config.Export.Pretty

	exporter, err := export.NewExporter(format, pretty)
	if err != nil {
		return err
	}

	records, err := samples.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("reading samples: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err = exporter.Export(ctx, records, w); err != nil {
		return err
	}

	logger.Info("export completed",
		slog.Int("samples", len(records)),
		slog.String("format", format))
	return nil
}
