package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evensen/daybook/internal/journal"
)

func newRecentCommand(ctx context.Context) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List entries from the last few months, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if months < 1 {
				return fmt.Errorf("--months must be at least 1")
			}

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.log.Sync()

			reader := journal.NewReader(d.store)
			entries, err := reader.Months(ctx, time.Now(), months)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
				return nil
			}

			for i, entry := range entries {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), formatEntryMarkdown(entry))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 3, "How many months back to load")

	return cmd
}
