package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/artifact"
	"github.com/kingrea/assent/internal/config"
	"github.com/kingrea/assent/internal/difftool"
	"github.com/kingrea/assent/internal/logbook"
	"github.com/kingrea/assent/internal/pending"
	"github.com/kingrea/assent/internal/reporter"
	"github.com/kingrea/assent/plugins"
)

var (
	newBadge     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	changedBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir]",
		Short: "List received files waiting for review",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.resolve(firstArg(args))
			items, err := pending.Scan(root)
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), root, items)
			return nil
		},
	}
}

func printItems(w io.Writer, root string, items []pending.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, okStyle.Render("Nothing to review."))
		return
	}
	for _, item := range items {
		badge := changedBadge.Render("CHANGED")
		if item.NewTest {
			badge = newBadge.Render("NEW    ")
		}
		fmt.Fprintf(w, "%s %s\n", badge, item.Name(root))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d pending", len(items))))
}

func newApproveCmd(c *cli) *cobra.Command {
	var all bool
	var jobs int
	cmd := &cobra.Command{
		Use:   "approve [files...]",
		Short: "Promote received files to approved",
		Long: `Promote received files to approved.

Either received or approved paths may be given. With --all every received
file under the working directory is approved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return usageError{fmt.Errorf("approve needs files or --all, not both")}
			}
			items, err := c.itemsFor(args, all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, okStyle.Render("Nothing to review."))
				return nil
			}
			err = pending.ApproveAll(cmd.Context(), items, jobs, func(item pending.Item) {
				c.record(logbook.ActionApprove, item.Approved, "")
			})
			if err != nil {
				c.record(logbook.ActionError, c.workDir, err.Error())
				return err
			}
			for _, item := range items {
				fmt.Fprintf(out, "%s %s\n", okStyle.Render("approved"), item.Name(c.workDir))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "approve every received file under the working directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", pending.DefaultConcurrency, "approvals to run at once")
	return cmd
}

func newRejectCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reject [files...]",
		Short: "Delete received files, keeping the approved files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return usageError{fmt.Errorf("reject needs files or --all, not both")}
			}
			items, err := c.itemsFor(args, all)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := pending.Reject(item); err != nil {
					c.record(logbook.ActionError, item.Received, err.Error())
					return err
				}
				c.record(logbook.ActionReject, item.Received, "")
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dimStyle.Render("rejected"), item.Name(c.workDir))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "reject every received file under the working directory")
	return cmd
}

func newDiffCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <file>",
		Short: "Open the received and approved pair in a diff tool",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.itemsFor(args, false)
			if err != nil {
				return err
			}
			item := items[0]
			chain, err := c.reporterChain(difftool.ModeAuto)
			if err != nil {
				return err
			}
			report := chain.Report(item.Received, item.Approved)
			out := cmd.OutOrStdout()
			if report.Launched() {
				fmt.Fprintf(out, "opened in %s\n", report.Final.Reporter)
				return nil
			}
			fmt.Fprintln(out, "no diff tool found; compare manually:")
			fmt.Fprintf(out, "  received: %s\n  approved: %s\n", item.Received, item.Approved)
			if preview, err := pending.Preview(item); err == nil {
				fmt.Fprintln(out, preview)
			}
			return nil
		},
	}
}

func newToolsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show diff tools in the order they are tried",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, pluginNames, err := plugins.ProjectRegistry(c.cfg, runtime.GOOS)
			if err != nil {
				return err
			}
			isPlugin := map[string]bool{}
			for _, name := range pluginNames {
				isPlugin[name] = true
			}
			out := cmd.OutOrStdout()
			if c.cfg.ReportingMode() == config.ModeOff {
				fmt.Fprintln(out, dimStyle.Render("reporting is off; tests never open a diff tool"))
			}
			prober := difftool.DefaultProber()
			for i, d := range registry.Descriptors() {
				source := "built-in"
				if isPlugin[d.Name] {
					source = "plugin"
				}
				status := dimStyle.Render("not installed")
				if path, err := prober.Probe(d); err == nil {
					status = okStyle.Render(path)
				}
				fmt.Fprintf(out, "%2d. %-14s %-8s %s\n", i+1, d.Name, source, status)
			}
			return nil
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent approve and reject decisions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, total := c.logbook.Tail(lines)
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, "No decisions recorded.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			if total > len(entries) {
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("showing %d of %d entries", len(entries), total)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries to show")
	return cmd
}

// itemsFor maps file arguments to pending items, or scans the working
// directory when all is set.
func (c *cli) itemsFor(args []string, all bool) ([]pending.Item, error) {
	if all {
		return pending.Scan(c.workDir)
	}
	items := make([]pending.Item, 0, len(args))
	for _, arg := range args {
		path := c.resolve(arg)
		if !artifact.IsReceived(path) {
			counterpart, ok := artifact.Counterpart(path)
			if !ok {
				return nil, usageError{fmt.Errorf("%s is neither a received nor an approved file", arg)}
			}
			path = counterpart
		}
		item, err := pending.ItemFor(path)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// reporterChain builds the project's diff tool chain. fallback is used when
// the project leaves the launch mode on auto.
func (c *cli) reporterChain(fallback difftool.LaunchMode) (*reporter.Chain, error) {
	if c.cfg.ReportingMode() == config.ModeOff {
		return reporter.NewChain(c.logger()), nil
	}
	registry, _, err := plugins.ProjectRegistry(c.cfg, runtime.GOOS)
	if err != nil {
		return nil, err
	}
	mode, err := difftool.ParseLaunchMode(c.cfg.ReportingMode())
	if err != nil {
		return nil, err
	}
	if mode == difftool.ModeAuto {
		mode = fallback
	}
	return reporter.NewChain(c.logger(), reporter.FromRegistry(registry, difftool.NewLauncher(mode))...), nil
}

func (c *cli) record(action logbook.Action, path, note string) {
	if err := c.logbook.Record(action, path, note); err != nil {
		c.logger().Warn("approvals log write failed", zap.String("path", path), zap.Error(err))
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}
