package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/difftool"
	"github.com/kingrea/assent/internal/pending"
	"github.com/kingrea/assent/internal/tui"
)

func newReviewCmd(c *cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "review [dir]",
		Short: "Review pending files interactively",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.resolve(firstArg(args))
			// The TUI owns the terminal, so diff tools must not block it.
			chain, err := c.reporterChain(difftool.ModeNonBlocking)
			if err != nil {
				return err
			}
			opts := []tui.AppOption{
				tui.WithDiff(chain.Report),
				tui.WithLogbook(c.logbook),
				tui.WithLogger(c.logger()),
			}
			if watch {
				watcher, err := watchPending(cmd.Context(), root, c.logger())
				if err != nil {
					return err
				}
				defer watcher.Stop()
				opts = append(opts, tui.WithChanges(watcher.Changes()))
			}

			p := tea.NewProgram(tui.NewApp(root, opts...), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run review: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "refresh when tests write new received files")
	return cmd
}

// watchPending starts a watcher on root. The watcher is released when it
// cannot start.
func watchPending(ctx context.Context, root string, logger *zap.Logger) (*pending.Watcher, error) {
	watcher, err := pending.NewWatcher(root, pending.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return nil, err
	}
	return watcher, nil
}
