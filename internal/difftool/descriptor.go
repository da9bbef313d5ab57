// Package difftool knows where external diff programs live and how to start
// them with a received/approved file pair.
package difftool

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when none of a descriptor's candidate paths exist.
var ErrNotFound = errors.New("difftool: not found")

// ArgRule builds the process arguments for a received/approved pair.
type ArgRule func(receivedPath, approvedPath string) []string

// DefaultArgs passes the received file first, then the approved file.
func DefaultArgs(receivedPath, approvedPath string) []string {
	return []string{receivedPath, approvedPath}
}

// SwappedArgs passes the approved file first, for tools that treat the first
// argument as the "left"/base side.
func SwappedArgs(receivedPath, approvedPath string) []string {
	return []string{approvedPath, receivedPath}
}

// WithFlags prepends fixed flags to the result of rule.
func WithFlags(rule ArgRule, flags ...string) ArgRule {
	return func(receivedPath, approvedPath string) []string {
		args := append([]string{}, flags...)
		return append(args, rule(receivedPath, approvedPath)...)
	}
}

// Descriptor names a diff program, the ordered locations it may be installed
// at, and how it expects its arguments.
type Descriptor struct {
	Name  string
	Paths []string
	Args  ArgRule
}

// Validate ensures the descriptor can be probed.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("difftool: name is required")
	}
	if len(d.Paths) == 0 {
		return fmt.Errorf("difftool %s: at least one candidate path is required", d.Name)
	}
	return nil
}

// Arguments applies the descriptor's rule, defaulting to DefaultArgs.
func (d Descriptor) Arguments(receivedPath, approvedPath string) []string {
	rule := d.Args
	if rule == nil {
		rule = DefaultArgs
	}
	return rule(receivedPath, approvedPath)
}

// Prober resolves candidate paths against the host.
type Prober struct {
	// Exists reports whether an absolute or relative file path exists.
	Exists func(path string) bool
	// LookPath resolves bare program names through PATH.
	LookPath func(name string) (string, error)
	// Getenv expands $VAR and ${VAR} references in candidate paths.
	Getenv func(key string) string
}

// DefaultProber checks the real file system and PATH.
func DefaultProber() Prober {
	return Prober{
		Exists:   fileExists,
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
	}
}

// Probe returns the first candidate that exists, in declaration order.
func (p Prober) Probe(d Descriptor) (string, error) {
	p = p.withDefaults()
	for _, candidate := range d.Paths {
		expanded := strings.TrimSpace(os.Expand(candidate, p.Getenv))
		if expanded == "" {
			continue
		}
		if isBareName(expanded) {
			if resolved, err := p.LookPath(expanded); err == nil {
				return resolved, nil
			}
			continue
		}
		if p.Exists(expanded) {
			return expanded, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, d.Name)
}

func (p Prober) withDefaults() Prober {
	def := DefaultProber()
	if p.Exists == nil {
		p.Exists = def.Exists
	}
	if p.LookPath == nil {
		p.LookPath = def.LookPath
	}
	if p.Getenv == nil {
		p.Getenv = def.Getenv
	}
	return p
}

func isBareName(path string) bool {
	return !strings.ContainsAny(path, `/\`) && filepath.VolumeName(path) == ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
