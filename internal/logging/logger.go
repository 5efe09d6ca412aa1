// Package logging provides categorized zap logging for syskit.
// Every subsystem logs through a named category so a single log stream can
// be grepped per concern (the original shell scripts each appended to their
// own file; here one structured stream carries a category field instead).
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryMirror  Category = "mirror"  // Watch-and-backup loops
	CategoryDevices Category = "devices" // Device nodes, HID matching
	CategoryKernels Category = "kernels" // Kernel package cleanup
	CategoryConvert Category = "convert" // CSV/YAML/date conversions
	CategoryExec    Category = "exec"    // External command execution
)

var (
	mu   sync.RWMutex
	root *zap.Logger = zap.NewNop()
	subs             = make(map[Category]*zap.SugaredLogger)
)

// Options controls logger construction.
type Options struct {
	Verbose bool   // Debug level when true
	LogFile string // Also append JSON logs to this file when set
}

// Init builds the process-wide logger. Console output is human-readable;
// when LogFile is set a JSON core is teed into it as well.
func Init(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	logger, err := buildLogger(level, opts.LogFile)
	if err != nil {
		return err
	}

	mu.Lock()
	root = logger
	subs = make(map[Category]*zap.SugaredLogger)
	mu.Unlock()
	return nil
}

func buildLogger(level zapcore.Level, logFile string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	console, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if logFile == "" {
		return console, nil
	}

	fileCfg := zap.NewProductionConfig()
	fileCfg.Level = zap.NewAtomicLevelAt(level)
	fileCfg.OutputPaths = []string{logFile}
	fileLogger, err := fileCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logFile, err)
	}

	return zap.New(zapcore.NewTee(console.Core(), fileLogger.Core())), nil
}

// Get returns the sugared logger for a category.
func Get(cat Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := subs[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := subs[cat]; ok {
		return l
	}
	l := root.Named(string(cat)).Sugar()
	subs[cat] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// SetLogger swaps the root logger. Tests use this to install observers.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	subs = make(map[Category]*zap.SugaredLogger)
}

// Timer measures an operation and logs its duration when stopped.
type Timer struct {
	cat   Category
	op    string
	start time.Time
}

// StartTimer begins timing an operation.
func StartTimer(cat Category, operation string) *Timer {
	return &Timer{cat: cat, op: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.cat).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold warns if the operation exceeded the threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.cat).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.cat).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
