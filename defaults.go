package assent

import (
	"os"
	"runtime"
	"sync"

	"github.com/kingrea/assent/internal/config"
	"github.com/kingrea/assent/internal/difftool"
	"github.com/kingrea/assent/plugins"
)

var (
	defaultOnce   sync.Once
	defaultConfig Configuration
	defaultErr    error
)

// DefaultConfiguration returns the configuration for the project containing
// the working directory. It is loaded once per process and shared
// read-only by every assertion that does not pass its own configuration.
func DefaultConfiguration() (Configuration, error) {
	defaultOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			defaultErr = err
			return
		}
		defaultConfig, defaultErr = LoadConfiguration(wd)
	})
	return defaultConfig, defaultErr
}

// LoadConfiguration builds a configuration from the .assent.yaml found by
// walking up from dir, with environment overrides applied. Plugin diff
// tools from the project's tools directory are tried before the built-in
// catalog.
func LoadConfiguration(dir string) (Configuration, error) {
	cfg, err := config.Load(dir, nil)
	if err != nil {
		return Configuration{}, err
	}
	return fromProjectConfig(cfg, runtime.GOOS)
}

func fromProjectConfig(cfg *config.Config, goos string) (Configuration, error) {
	registry, _, err := plugins.ProjectRegistry(cfg, goos)
	if err != nil {
		return Configuration{}, err
	}
	c := NewConfiguration().
		UsingDirectory(cfg.ApprovalsDir()).
		UsingExtension(cfg.Extension()).
		UsingDiffTools(registry.Descriptors()...)

	mode := cfg.ReportingMode()
	if mode == config.ModeOff {
		return c.WithoutReporting(), nil
	}
	launchMode, err := difftool.ParseLaunchMode(mode)
	if err != nil {
		return Configuration{}, err
	}
	return c.UsingLaunchMode(launchMode), nil
}
