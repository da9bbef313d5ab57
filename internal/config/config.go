// internal/config/config.go
//
// This package handles the optional .assent.yaml project file and the
// environment overrides that sit on top of it. A project without the file
// gets defaults: approvals under testdata/, .txt extension, automatic
// launch mode.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project configuration file searched for upwards from
	// the working directory.
	FileName = ".assent.yaml"

	// AssentDir holds logs and plugin tools in the project root.
	AssentDir = ".assent"

	defaultApprovalsDir = "testdata"
	defaultExtension    = "txt"
)

// Reporting modes. ModeOff disables diff tools entirely (manual only).
const (
	ModeAuto        = "auto"
	ModeBlocking    = "blocking"
	ModeNonBlocking = "nonblocking"
	ModeOff         = "off"
)

// Environment variables that override the file.
const (
	EnvReportingMode = "ASSENT_REPORTING_MODE"
	EnvDiffTool      = "ASSENT_DIFF_TOOL"
)

// ApprovalsConfig controls where approval files live.
type ApprovalsConfig struct {
	Dir       string `yaml:"dir,omitempty"`
	Extension string `yaml:"extension,omitempty"`
}

// ReportingConfig controls diff tool selection and launch behaviour.
type ReportingConfig struct {
	Mode     string   `yaml:"mode,omitempty"`
	Prefer   []string `yaml:"prefer,omitempty"`
	Disabled []string `yaml:"disabled,omitempty"`
	ToolsDir string   `yaml:"tools_dir,omitempty"`
}

// ProjectConfig models .assent.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Approvals ApprovalsConfig `yaml:"approvals"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// Config is the resolved configuration for one project root.
type Config struct {
	// ProjectDir is the directory holding .assent.yaml, or the module root
	// when no file exists.
	ProjectDir string
	// Found reports whether .assent.yaml was read.
	Found   bool
	Project ProjectConfig
}

// Default returns defaults rooted at projectDir.
func Default(projectDir string) *Config {
	return &Config{ProjectDir: projectDir, Project: defaultProjectConfig()}
}

// Load walks up from startDir to the first directory containing
// .assent.yaml or go.mod, loads the file when present and applies the
// environment overrides read through getenv (os.Getenv when nil).
func Load(startDir string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	root, err := FindProjectDir(startDir)
	if err != nil {
		return nil, err
	}
	cfg := Default(root)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindProjectDir returns the nearest ancestor of startDir (inclusive) that
// holds .assent.yaml or go.mod. When neither exists startDir is returned.
func FindProjectDir(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", startDir, err)
	}
	dir := abs
	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ProjectDir, FileName)
}

// LogsDir returns the directory for diagnostic and approval logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProjectDir, AssentDir, "logs")
}

// ToolsDir returns the plugin tools directory, resolved against ProjectDir.
func (c *Config) ToolsDir() string {
	return resolvePath(c.ProjectDir, c.Project.Reporting.ToolsDir)
}

// ApprovalsDir returns the approvals directory. Relative values are kept
// relative so they resolve against the package under test.
func (c *Config) ApprovalsDir() string {
	return c.Project.Approvals.Dir
}

// Extension returns the approval file extension without a leading dot.
func (c *Config) Extension() string {
	return c.Project.Approvals.Extension
}

// ReportingMode returns one of the Mode* constants.
func (c *Config) ReportingMode() string {
	return c.Project.Reporting.Mode
}

// PreferredTools returns tool names to move to the front of the registry.
func (c *Config) PreferredTools() []string {
	return append([]string(nil), c.Project.Reporting.Prefer...)
}

// DisabledTools returns tool names to drop from the registry.
func (c *Config) DisabledTools() []string {
	return append([]string(nil), c.Project.Reporting.Disabled...)
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.Project = parsed
	c.Found = true
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if mode := getenv(EnvReportingMode); strings.TrimSpace(mode) != "" {
		c.Project.Reporting.Mode = normalizeMode(mode)
	}
	if tool := strings.TrimSpace(getenv(EnvDiffTool)); tool != "" {
		c.Project.Reporting.Prefer = append([]string{tool}, c.Project.Reporting.Prefer...)
	}
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Approvals.Dir) == "" {
		pc.Approvals.Dir = defaultApprovalsDir
	}
	if strings.TrimSpace(pc.Approvals.Extension) == "" {
		pc.Approvals.Extension = defaultExtension
	}
	if strings.TrimSpace(pc.Reporting.Mode) == "" {
		pc.Reporting.Mode = ModeAuto
	}
	if strings.TrimSpace(pc.Reporting.ToolsDir) == "" {
		pc.Reporting.ToolsDir = filepath.Join(AssentDir, "tools")
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Approvals.Dir = filepath.Clean(strings.TrimSpace(pc.Approvals.Dir))
	pc.Approvals.Extension = strings.TrimPrefix(strings.TrimSpace(pc.Approvals.Extension), ".")
	pc.Reporting.Mode = normalizeMode(pc.Reporting.Mode)
	pc.Reporting.Prefer = trimAll(pc.Reporting.Prefer)
	pc.Reporting.Disabled = trimAll(pc.Reporting.Disabled)
	pc.Reporting.ToolsDir = strings.TrimSpace(pc.Reporting.ToolsDir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Approvals.Extension == "" || strings.ContainsAny(pc.Approvals.Extension, `/\`) {
		return fmt.Errorf("approvals.extension %q is invalid", pc.Approvals.Extension)
	}
	switch pc.Reporting.Mode {
	case ModeAuto, ModeBlocking, ModeNonBlocking, ModeOff:
	default:
		return fmt.Errorf("reporting.mode must be one of auto, blocking, nonblocking, off (got %q)", pc.Reporting.Mode)
	}
	for _, name := range pc.Reporting.Prefer {
		if contains(pc.Reporting.Disabled, name) {
			return fmt.Errorf("reporting: %s is both preferred and disabled", name)
		}
	}
	return nil
}

func normalizeMode(value string) string {
	mode := strings.ToLower(strings.TrimSpace(value))
	switch mode {
	case "non-blocking", "async":
		return ModeNonBlocking
	case "block", "wait":
		return ModeBlocking
	case "none", "disabled", "manual":
		return ModeOff
	}
	return mode
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
