package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meshwatch/fieldmap/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sample counts and database size",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	count, err := samples.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting samples: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database:  %s\n", samples.Path())
	fmt.Fprintf(out, "Samples:   %s\n", humanize.Comma(count))

	if fi, err := os.Stat(samples.Path()); err == nil {
		fmt.Fprintf(out, "File size: %s\n", humanize.IBytes(uint64(fi.Size())))
	}

	recent, err := samples.GetMostRecent(ctx)
	switch {
	case errors.Is(err, store.ErrNoSamples):
		fmt.Fprintln(out, "Latest:    none")
	case err != nil:
		return fmt.Errorf("reading most recent sample: %w", err)
	default:
		fmt.Fprintf(out, "Latest:    %s (%s) at %.5f,%.5f\n",
			recent.Timestamp.Format("2006-01-02 15:04:05 MST"),
			humanize.Time(recent.Timestamp),
			recent.Lat, recent.Lon)
	}

	return nil
}
