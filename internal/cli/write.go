package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evensen/daybook/internal/journal"
)

func newWriteCommand(ctx context.Context) *cobra.Command {
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "write [text...]",
		Short: "Append a timestamped note to today's entry without opening the editor.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("nothing to write")
			}

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.log.Sync()

			merger := journal.NewMerger(d.store, d.log)
			today := journal.DateOnly(time.Now())

			load, err := merger.Load(ctx, today)
			if err != nil {
				return err
			}
			title := load.Title
			if titleFlag != "" {
				title = titleFlag
			}

			res, err := merger.Save(ctx, journal.SaveRequest{
				Date:        today,
				Baseline:    load.Baseline,
				Title:       title,
				Text:        text,
				ForceAppend: true,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Mode.Message())
			return nil
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Set or replace the entry title")

	return cmd
}
