package difftool

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// LaunchMode controls whether Launch waits for the diff program to exit.
type LaunchMode string

const (
	// ModeAuto blocks on an interactive terminal outside CI, otherwise it
	// behaves like ModeNonBlocking.
	ModeAuto LaunchMode = "auto"
	// ModeBlocking waits for the diff program to exit.
	ModeBlocking LaunchMode = "blocking"
	// ModeNonBlocking starts the diff program and returns immediately.
	ModeNonBlocking LaunchMode = "nonblocking"
)

// ParseLaunchMode accepts the config/env spellings of a mode. Empty maps to ModeAuto.
func ParseLaunchMode(value string) (LaunchMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "blocking", "block", "wait":
		return ModeBlocking, nil
	case "nonblocking", "non-blocking", "async":
		return ModeNonBlocking, nil
	default:
		return "", fmt.Errorf("difftool: unknown launch mode %q", value)
	}
}

// Resolve turns ModeAuto into a concrete mode for the current process.
func (m LaunchMode) Resolve(env func(string) string, interactive func() bool) LaunchMode {
	if m != ModeAuto && m != "" {
		return m
	}
	if env == nil {
		env = os.Getenv
	}
	if interactive == nil {
		interactive = StdinIsTerminal
	}
	if isCI(env) || !interactive() {
		return ModeNonBlocking
	}
	return ModeBlocking
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var ciVariables = []string{"CI", "TF_BUILD", "GITHUB_ACTIONS", "GITLAB_CI", "TEAMCITY_VERSION", "JENKINS_URL", "BUILDKITE"}

func isCI(env func(string) string) bool {
	for _, key := range ciVariables {
		value := strings.ToLower(strings.TrimSpace(env(key)))
		if value != "" && value != "false" && value != "0" {
			return true
		}
	}
	return false
}

// Process is a started diff program.
type Process interface {
	Wait() error
}

// Spawner starts processes.
type Spawner interface {
	Start(path string, args []string) (Process, error)
}

// ExecSpawner starts real child processes with os/exec.
type ExecSpawner struct{}

// Start implements Spawner.
func (ExecSpawner) Start(path string, args []string) (Process, error) {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// LaunchError reports an executable that exists but could not be started.
type LaunchError struct {
	Tool string
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("difftool %s: launch %s: %v", e.Tool, e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Launch describes a started diff program.
type Launch struct {
	Tool string
	Path string
	Args []string
	Mode LaunchMode
	// ExitErr is the result of Wait in blocking mode. It is informational
	// only: a non-zero exit still counts as a successful launch.
	ExitErr error
	done    chan struct{}
}

// Wait blocks until the process has been reaped.
func (l *Launch) Wait() {
	if l == nil || l.done == nil {
		return
	}
	<-l.done
}

// Launcher probes and starts descriptors.
type Launcher struct {
	Prober  Prober
	Spawner Spawner
	Mode    LaunchMode
	// Env and Interactive feed ModeAuto resolution; nil uses the process values.
	Env         func(string) string
	Interactive func() bool
}

// NewLauncher returns a launcher using the real host.
func NewLauncher(mode LaunchMode) *Launcher {
	return &Launcher{Prober: DefaultProber(), Spawner: ExecSpawner{}, Mode: mode}
}

// Probe reports the resolved executable for d.
func (l *Launcher) Probe(d Descriptor) (string, error) {
	return l.Prober.Probe(d)
}

// Launch starts d with the file pair. It returns ErrNotFound (wrapped) when
// the tool is not installed and *LaunchError when spawning fails. In
// non-blocking mode the process is reaped on a background goroutine so a
// window that is never closed cannot hold up the caller.
func (l *Launcher) Launch(d Descriptor, receivedPath, approvedPath string) (*Launch, error) {
	path, err := l.Probe(d)
	if err != nil {
		return nil, err
	}
	spawner := l.Spawner
	if spawner == nil {
		spawner = ExecSpawner{}
	}
	args := d.Arguments(receivedPath, approvedPath)
	proc, err := spawner.Start(path, args)
	if err != nil {
		return nil, &LaunchError{Tool: d.Name, Path: path, Err: err}
	}
	launch := &Launch{
		Tool: d.Name,
		Path: path,
		Args: args,
		Mode: l.Mode.Resolve(l.Env, l.Interactive),
		done: make(chan struct{}),
	}
	if launch.Mode == ModeBlocking {
		launch.ExitErr = proc.Wait()
		close(launch.done)
		return launch, nil
	}
	go func() {
		defer close(launch.done)
		_ = proc.Wait()
	}()
	return launch, nil
}
