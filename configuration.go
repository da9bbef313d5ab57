package assent

import (
	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/artifact"
	"github.com/kingrea/assent/internal/compare"
	"github.com/kingrea/assent/internal/difftool"
	"github.com/kingrea/assent/internal/reporter"
	"github.com/kingrea/assent/internal/sanitise"
)

// Public names for the building blocks a Configuration is made of.
type (
	// Sanitiser normalises content before comparison.
	Sanitiser = sanitise.Func
	// Comparer decides whether sanitised received content matches approved content.
	Comparer = compare.Comparer
	// ComparerFunc adapts a function to Comparer.
	ComparerFunc = compare.Func
	// Reporter presents a mismatch to a developer.
	Reporter = reporter.Reporter
	// ReporterResult is the outcome of one reporter attempt.
	ReporterResult = reporter.Result
	// ReporterStatus classifies a ReporterResult.
	ReporterStatus = reporter.Status
	// Report is the outcome of the whole reporter chain.
	Report = reporter.Report
	// TestIdentity is the logical name approval files are derived from.
	TestIdentity = artifact.TestIdentity
	// Namer derives the base file name for an identity.
	Namer = artifact.Namer
	// ReaderWriter is the file-system collaborator.
	ReaderWriter = artifact.ReaderWriter
	// DiffTool describes an external diff program.
	DiffTool = difftool.Descriptor
	// LaunchMode controls whether diff tools are waited for.
	LaunchMode = difftool.LaunchMode
)

// Reporter statuses.
const (
	Launched = reporter.StatusLaunched
	NotFound = reporter.StatusNotFound
	Failed   = reporter.StatusFailed
	Manual   = reporter.StatusManual
)

// Launch modes.
const (
	LaunchAuto        = difftool.ModeAuto
	LaunchBlocking    = difftool.ModeBlocking
	LaunchNonBlocking = difftool.ModeNonBlocking
)

// Built-in sanitisers and comparers.
var (
	NormaliseLineEndings   Sanitiser = sanitise.NormaliseLineEndings
	TrimTrailingWhitespace Sanitiser = sanitise.TrimTrailingWhitespace
	RedactGUIDs            Sanitiser = sanitise.RedactGUIDs
	RedactTimestamps       Sanitiser = sanitise.RedactTimestamps

	ExactComparer            = compare.Exact
	IgnoreWhitespaceComparer = compare.IgnoreWhitespace
)

// Replace returns a sanitiser replacing every occurrence of old with repl.
func Replace(old, repl string) Sanitiser { return sanitise.Replace(old, repl) }

// ReplaceRegexp returns a sanitiser replacing every match of pattern with repl.
func ReplaceRegexp(pattern, repl string) Sanitiser { return sanitise.ReplaceRegexp(pattern, repl) }

// Configuration is an immutable description of how one assertion runs.
// Every Using*/Replacing*/Keeping* method returns a modified copy, so a base
// configuration can be shared between tests and specialised per test.
type Configuration struct {
	sanitisers sanitise.Pipeline
	comparer   compare.Comparer

	reporters    []reporter.Reporter
	reportersSet bool
	diffTools    []difftool.Descriptor
	reportingOff bool
	launchMode   difftool.LaunchMode
	spawner      difftool.Spawner

	dir       string
	extension string
	namer     artifact.Namer
	rw        artifact.ReaderWriter

	keepStaleReceived bool
	logger            *zap.Logger
}

// NewConfiguration returns the built-in defaults: line-ending normalisation,
// exact comparison, approvals in testdata/ with a .txt extension, and the
// platform's diff tool catalog in automatic launch mode. It ignores any
// .assent.yaml; see DefaultConfiguration for that.
func NewConfiguration() Configuration {
	return Configuration{
		sanitisers: sanitise.Default(),
		comparer:   compare.Exact,
		diffTools:  difftool.DefaultRegistry().Descriptors(),
		launchMode: difftool.ModeAuto,
		dir:        artifact.DefaultDir,
		extension:  artifact.DefaultExtension,
		namer:      artifact.DefaultNamer,
		rw:         artifact.OS{},
		logger:     zap.NewNop(),
	}
}

// UsingSanitiser appends sanitisers after the existing ones.
func (c Configuration) UsingSanitiser(fns ...Sanitiser) Configuration {
	c.sanitisers = c.sanitisers.Append(fns...)
	return c
}

// ReplacingSanitisers drops the built-in and previously added sanitisers
// and runs only fns.
func (c Configuration) ReplacingSanitisers(fns ...Sanitiser) Configuration {
	c.sanitisers = c.sanitisers.Replace(fns...)
	return c
}

// UsingComparer swaps the comparer. A nil comparer restores exact comparison.
func (c Configuration) UsingComparer(comparer Comparer) Configuration {
	c.comparer = compare.OrDefault(comparer)
	return c
}

// UsingReporter replaces the reporter chain. The manual reporter always
// terminates the chain and need not be listed.
func (c Configuration) UsingReporter(reporters ...Reporter) Configuration {
	c.reporters = append([]reporter.Reporter(nil), reporters...)
	c.reportersSet = true
	c.reportingOff = false
	return c
}

// UsingDiffTools replaces the diff tool catalog, in fallback order, and
// clears any explicit reporter chain.
func (c Configuration) UsingDiffTools(tools ...DiffTool) Configuration {
	c.diffTools = append([]difftool.Descriptor(nil), tools...)
	c.reporters = nil
	c.reportersSet = false
	c.reportingOff = false
	return c
}

// WithoutReporting disables every reporter except the manual one.
func (c Configuration) WithoutReporting() Configuration {
	c.reportingOff = true
	return c
}

// UsingLaunchMode sets whether diff tools are waited for.
func (c Configuration) UsingLaunchMode(mode LaunchMode) Configuration {
	c.launchMode = mode
	return c
}

// UsingDirectory sets the approvals directory.
func (c Configuration) UsingDirectory(dir string) Configuration {
	if dir != "" {
		c.dir = dir
	}
	return c
}

// UsingExtension sets the content-type extension of approval files.
func (c Configuration) UsingExtension(ext string) Configuration {
	if ext != "" {
		c.extension = ext
	}
	return c
}

// UsingNamer sets the naming strategy.
func (c Configuration) UsingNamer(namer Namer) Configuration {
	if namer != nil {
		c.namer = namer
	}
	return c
}

// UsingReaderWriter sets the file-system collaborator.
func (c Configuration) UsingReaderWriter(rw ReaderWriter) Configuration {
	if rw != nil {
		c.rw = rw
	}
	return c
}

// UsingLogger sets the logger for verification diagnostics.
func (c Configuration) UsingLogger(logger *zap.Logger) Configuration {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
	return c
}

// KeepingStaleReceived leaves an existing received file in place when the
// content matches. By default it is removed.
func (c Configuration) KeepingStaleReceived() Configuration {
	c.keepStaleReceived = true
	return c
}

func (c Configuration) usingSpawner(spawner difftool.Spawner) Configuration {
	c.spawner = spawner
	return c
}

func (c Configuration) store() *artifact.Store {
	return artifact.NewStore(
		artifact.WithDir(c.dir),
		artifact.WithExtension(c.extension),
		artifact.WithNamer(c.namer),
		artifact.WithReaderWriter(c.rw),
	)
}

func (c Configuration) chain() *reporter.Chain {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case c.reportingOff:
		return reporter.NewChain(logger)
	case c.reportersSet:
		return reporter.NewChain(logger, c.reporters...)
	}
	launcher := difftool.NewLauncher(c.launchMode)
	if c.spawner != nil {
		launcher.Spawner = c.spawner
	}
	reporters := make([]reporter.Reporter, 0, len(c.diffTools))
	for _, d := range c.diffTools {
		reporters = append(reporters, reporter.NewDiffTool(d, launcher))
	}
	return reporter.NewChain(logger, reporters...)
}
