package reporter

import (
	"go.uber.org/zap"
)

// Report is the outcome of running a chain.
type Report struct {
	// Final is the launched result, or the manual reporter's result when
	// nothing launched.
	Final Result
	// Attempts lists every reporter tried, in order, including Final.
	Attempts []Result
}

// Launched reports whether a UI was started.
func (r Report) Launched() bool {
	return r.Final.Status == StatusLaunched
}

// Chain tries reporters in order and stops at the first launch.
type Chain struct {
	reporters []Reporter
	logger    *zap.Logger
}

// NewChain builds a chain. A nil logger is replaced with a no-op logger.
func NewChain(logger *zap.Logger, reporters ...Reporter) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	filtered := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			filtered = append(filtered, r)
		}
	}
	return &Chain{reporters: filtered, logger: logger}
}

// Reporters returns the configured reporters, excluding the terminal manual one.
func (c *Chain) Reporters() []Reporter {
	return append([]Reporter(nil), c.reporters...)
}

// Report never fails: tools that are missing or fail to start are recorded
// and skipped, and the manual reporter terminates the chain.
func (c *Chain) Report(receivedPath, approvedPath string) Report {
	var attempts []Result
	for _, r := range c.reporters {
		var res Result
		if !r.Probe() {
			res = Result{Status: StatusNotFound, Reporter: r.Name()}
		} else {
			res = r.Launch(receivedPath, approvedPath)
		}
		if res.Reporter == "" {
			res.Reporter = r.Name()
		}
		attempts = append(attempts, res)
		switch res.Status {
		case StatusLaunched:
			c.logger.Debug("diff tool launched",
				zap.String("tool", res.Reporter),
				zap.String("received", receivedPath),
				zap.String("approved", approvedPath))
			return Report{Final: res, Attempts: attempts}
		case StatusFailed:
			c.logger.Warn("diff tool failed to launch",
				zap.String("tool", res.Reporter),
				zap.Error(res.Err))
		}
	}
	final := Manual{}.Launch(receivedPath, approvedPath)
	attempts = append(attempts, final)
	c.logger.Debug("no diff tool launched, falling back to manual review",
		zap.Int("attempts", len(attempts)-1))
	return Report{Final: final, Attempts: attempts}
}
