package app

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var wipeYes bool

var wipeCmd = &cobra.Command{
	Use:     "wipe",
	Short:   "Delete every stored sample",
	Long:    `Removes all samples from the database. The database file and its schema remain in place. Asks for confirmation unless --yes is given.`,
	Example: `  fieldmap wipe --yes`,
	RunE:    runWipe,
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runWipe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	count, err := samples.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting samples: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete")
		return nil
	}

	if !wipeYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete all %d samples? [y/N]: ", count)

		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if answer = strings.ToLower(strings.TrimSpace(answer)); answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	removed, err := samples.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("deleting samples: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d samples\n", removed)
	return nil
}
