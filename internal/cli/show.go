package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/evensen/daybook/internal/journal"
)

func newShowCommand(ctx context.Context) *cobra.Command {
	var (
		dateFlag string
		render   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the journal entry for today or a specific date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag)
			if err != nil {
				return err
			}

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.log.Sync()

			reader := journal.NewReader(d.store)
			entry, err := reader.Day(ctx, date)
			if err != nil {
				if errors.Is(err, journal.ErrEntryNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "No entry for %s\n", date.Format("2006-01-02"))
					return nil
				}
				return err
			}

			markdown := formatEntryMarkdown(entry)
			if !render {
				fmt.Fprint(cmd.OutOrStdout(), markdown)
				return nil
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("init renderer: %w", err)
			}
			out, err := renderer.Render(markdown)
			if err != nil {
				return fmt.Errorf("render entry: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Target date in YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&render, "render", false, "Render the markdown instead of printing it raw")

	return cmd
}
