// cmd/assent/main.go
//
// Entry point for the assent CLI. Tests write received files; this tool
// is how a developer reviews them: list what is pending, open a diff,
// approve or reject, either one command at a time or in the review TUI.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/config"
	"github.com/kingrea/assent/internal/logbook"
	"github.com/kingrea/assent/internal/logging"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by bad arguments or flags.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// cli holds the state shared by every command for one invocation.
type cli struct {
	workDir string
	debug   bool

	cfg     *config.Config
	log     *logging.Logger
	logbook *logbook.Logbook
}

func (c *cli) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "assent",
		Short: "Review approval test output",
		Long: `assent reviews the received files written by failing approval tests.

A received file holds the latest output of a test whose output no longer
matches its approved file. Approving promotes it to the approved file;
rejecting deletes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVarP(&c.workDir, "dir", "C", "", "run as if started in this directory")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "write debug entries to .assent/logs/assent.log")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		newListCmd(c),
		newApproveCmd(c),
		newRejectCmd(c),
		newDiffCmd(c),
		newToolsCmd(c),
		newReviewCmd(c),
		newHistoryCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	if c.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		c.workDir = wd
	}
	cfg, err := config.Load(c.workDir, nil)
	if err != nil {
		return err
	}
	c.cfg = cfg
	log, err := logging.New(cfg, c.debug)
	if err != nil {
		return err
	}
	c.log = log
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		return fmt.Errorf("open approvals log: %w", err)
	}
	c.logbook = lb
	return nil
}

// resolve makes path absolute against the working directory.
func (c *cli) resolve(path string) string {
	if path == "" {
		return c.workDir
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.workDir, path)
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{}
	defer func() { _ = c.log.Close() }()
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "assent: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitFailure
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
