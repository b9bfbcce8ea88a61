package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshwatch/fieldmap/internal/retention"
)

var (
	pruneMaxAge   time.Duration
	pruneSchedule string
	pruneWatch    bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove samples older than the retention window",
	Example: `  fieldmap prune --max-age 720h
  fieldmap prune --watch --schedule "0 3 * * *"`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneMaxAge, "max-age", 0, "retention window (default from configuration)")
	pruneCmd.Flags().StringVar(&pruneSchedule, "schedule", "", "cron schedule for watch mode (default from configuration)")
	pruneCmd.Flags().BoolVar(&pruneWatch, "watch", false, "keep running and prune on the cron schedule until interrupted")
}

func runPrune(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	maxAge := pruneMaxAge
	if maxAge == 0 {
		maxAge = time.Duration(config.Retention.MaxAge)
	}

	pruner, err := retention.NewPruner(samples, maxAge, logger)
	if err != nil {
		return err
	}

	if !pruneWatch {
		removed, err := pruner.PruneOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d samples older than %s\n", removed, maxAge)
		return nil
	}

	schedule := pruneSchedule
	if schedule == "" {
		schedule = config.Retention.Schedule
	}

	scheduler := retention.NewScheduler(pruner, schedule, logger)
	if err = scheduler.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	scheduler.Stop()
	return nil
}
