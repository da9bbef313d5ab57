// Package reporter presents a mismatch to a developer. Reporters are tried
// in order until one launches; a terminal manual reporter guarantees the
// chain always produces a result without a UI.
package reporter

import (
	"errors"
	"fmt"

	"github.com/kingrea/assent/internal/difftool"
)

// Status is the outcome of one reporter attempt.
type Status string

const (
	// StatusLaunched means a diff UI was started.
	StatusLaunched Status = "launched"
	// StatusNotFound means the reporter's tool is not installed.
	StatusNotFound Status = "not_found"
	// StatusFailed means the tool exists but could not be started.
	StatusFailed Status = "failed"
	// StatusManual is returned by the terminal manual reporter.
	StatusManual Status = "manual"
)

// Result records one reporter attempt.
type Result struct {
	Status   Status
	Reporter string
	Err      error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", r.Reporter, r.Status, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Reporter, r.Status)
}

// Reporter is the extension point for new diff tools or other UIs.
type Reporter interface {
	Name() string
	// Probe reports whether the reporter can run on this host.
	Probe() bool
	Launch(receivedPath, approvedPath string) Result
}

// Manual performs no UI action; the file pair stays on disk for inspection.
type Manual struct{}

// Name implements Reporter.
func (Manual) Name() string { return "manual" }

// Probe implements Reporter.
func (Manual) Probe() bool { return true }

// Launch implements Reporter.
func (Manual) Launch(string, string) Result {
	return Result{Status: StatusManual, Reporter: "manual"}
}

// DiffTool adapts a diff tool descriptor to the Reporter interface.
type DiffTool struct {
	Descriptor difftool.Descriptor
	Launcher   *difftool.Launcher
}

// NewDiffTool wraps d with launcher.
func NewDiffTool(d difftool.Descriptor, launcher *difftool.Launcher) *DiffTool {
	return &DiffTool{Descriptor: d, Launcher: launcher}
}

// Name implements Reporter.
func (r *DiffTool) Name() string { return r.Descriptor.Name }

// Probe implements Reporter.
func (r *DiffTool) Probe() bool {
	_, err := r.launcher().Probe(r.Descriptor)
	return err == nil
}

// Launch implements Reporter.
func (r *DiffTool) Launch(receivedPath, approvedPath string) Result {
	_, err := r.launcher().Launch(r.Descriptor, receivedPath, approvedPath)
	switch {
	case err == nil:
		return Result{Status: StatusLaunched, Reporter: r.Name()}
	case errors.Is(err, difftool.ErrNotFound):
		return Result{Status: StatusNotFound, Reporter: r.Name(), Err: err}
	default:
		return Result{Status: StatusFailed, Reporter: r.Name(), Err: err}
	}
}

func (r *DiffTool) launcher() *difftool.Launcher {
	if r.Launcher == nil {
		r.Launcher = difftool.NewLauncher(difftool.ModeAuto)
	}
	return r.Launcher
}

// FromRegistry builds one DiffTool reporter per descriptor, in registry order.
func FromRegistry(registry *difftool.Registry, launcher *difftool.Launcher) []Reporter {
	if registry == nil {
		return nil
	}
	descriptors := registry.Descriptors()
	out := make([]Reporter, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, NewDiffTool(d, launcher))
	}
	return out
}
