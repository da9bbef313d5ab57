// Package logging writes structured diagnostics for the assent CLI to
// .assent/logs/assent.log so a failed approval run can be inspected after
// the terminal has closed.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/assent/internal/config"
)

// FileName is the log file inside the logs directory.
const FileName = "assent.log"

// Logger owns the log file and the zap logger writing to it.
type Logger struct {
	*zap.Logger
	file *os.File
}

// New creates (or appends to) the log file under the project's logs
// directory. debug lowers the level from info to debug.
func New(cfg *config.Config, debug bool) (*Logger, error) {
	logDir := cfg.LogsDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level)
	return &Logger{Logger: zap.New(core), file: f}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Close flushes and releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.Logger.Sync()
	return l.file.Close()
}
