package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/evensen/daybook/internal/config"
	"github.com/evensen/daybook/internal/journal"
	"github.com/evensen/daybook/internal/logger"
	"github.com/evensen/daybook/internal/store"
	"github.com/evensen/daybook/internal/ui"
)

// deps bundles what every command needs: the effective config, a logger, and
// the selected document store.
type deps struct {
	cfg   *config.Config
	log   logger.Logger
	store store.DocumentStore
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	var st store.DocumentStore
	switch cfg.Backend {
	case config.BackendWebDAV:
		dav := store.NewWebDAV(store.WebDAVConfig{
			BaseURL:  cfg.WebDAV.URL,
			Username: cfg.WebDAV.Username,
			Password: cfg.WebDAV.Password,
			Token:    cfg.WebDAV.Token,
			Folder:   cfg.WebDAV.Folder,
		})
		if err := dav.EnsureFolder(ctx); err != nil {
			// First read/write will surface a hard failure; this is advisory.
			log.Warn("could not ensure remote folder", logger.Error(err))
		}
		st = dav
	case config.BackendLocal:
		st, err = store.NewLocal(cfg.LocalPath)
		if err != nil {
			return nil, err
		}
	}

	return &deps{cfg: cfg, log: log, store: st}, nil
}

// NewRootCommand creates the top-level Cobra command. Running it bare opens
// the editor TUI for today's entry.
func NewRootCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daybook",
		Short: "A personal journal stored as monthly markdown files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.log.Sync()

			merger := journal.NewMerger(d.store, d.log)
			session := journal.NewSession(ctx, merger, journal.Options{
				DebounceDelay: d.cfg.DebounceDelay,
				CommitDelay:   d.cfg.CommitDelay,
				Log:           d.log,
			})

			m := ui.NewModel(ctx, session)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run editor: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newShowCommand(ctx),
		newRecentCommand(ctx),
		newWriteCommand(ctx),
		newVersionCommand(),
	)

	return cmd
}

// ExecuteCommand runs the root command.
func ExecuteCommand(ctx context.Context) error {
	return NewRootCommand(ctx).Execute()
}

// Main keeps process wiring contained in one package for cmd/daybook.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
