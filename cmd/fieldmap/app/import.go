package app

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meshwatch/fieldmap/internal/export"
	"github.com/meshwatch/fieldmap/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Ingest samples from a JSON export file",
	Long:    `Reads a JSON export and inserts its samples. Samples whose id is already stored are skipped; records without an id are assigned one.`,
	Example: `  fieldmap import samples.json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	records, err := export.ParseRecords(f)
	if err != nil {
		return fmt.Errorf("parsing import file: %w", err)
	}

	spooler := ingest.NewSpooler(samples, logger,
		ingest.WithBatchSize(config.Storage.MaxBatchSize),
		ingest.WithFlushInterval(time.Duration(config.Storage.FlushInterval)))
	spooler.Start(ctx)

	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		spooler.Add(rec.Sample())
	}

	if err = spooler.Close(); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}

	inserted, skipped := spooler.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d samples (%d duplicates skipped)\n", inserted, skipped)
	return nil
}
