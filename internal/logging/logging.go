// Package logging provides config-driven categorized file logging.
// Logs go to <workspace>/.tactician/logs/ with one file per category and
// are written only when debug mode is enabled, so production runs stay
// silent.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names one logging subsystem.
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup, config resolution
	CategoryEngine Category = "engine" // Combinator passes and step outcomes
	CategoryTactic Category = "tactic" // Rule dispatch and expansion choices
	CategoryOracle Category = "oracle" // Decidability oracle queries
	CategoryStore  Category = "store"  // Run ledger operations
	CategoryScript Category = "script" // Problem file loading and execution
)

// Settings controls the logging subsystem. Zero value = disabled.
type Settings struct {
	Debug      bool
	Level      string   // debug, info, warn, error
	Categories []string // empty = all categories enabled
}

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	mu       sync.RWMutex
	loggers  = make(map[Category]*Logger)
	logsDir  string
	settings Settings
	level    = levelInfo
)

// Logger writes to one category's log file. A Logger with no file is a
// no-op, which keeps call sites unconditional.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// Initialize wires the logging directory under the workspace and applies
// settings. Call once at startup; safe to skip entirely (everything stays
// a no-op).
func Initialize(workspace string, s Settings) error {
	mu.Lock()
	defer mu.Unlock()

	settings = s
	switch s.Level {
	case "debug":
		level = levelDebug
	case "warn", "warning":
		level = levelWarn
	case "error":
		level = levelError
	default:
		level = levelInfo
	}

	if !s.Debug {
		return nil
	}
	if workspace == "" {
		return fmt.Errorf("workspace path required when debug logging is on")
	}
	logsDir = filepath.Join(workspace, ".tactician", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

func categoryEnabled(c Category) bool {
	if !settings.Debug {
		return false
	}
	if len(settings.Categories) == 0 {
		return true
	}
	for _, name := range settings.Categories {
		if Category(name) == c {
			return true
		}
	}
	return false
}

// Get returns (or creates) the logger for a category.
func Get(c Category) *Logger {
	mu.RLock()
	if !categoryEnabled(c) || logsDir == "" {
		mu.RUnlock()
		return &Logger{category: c}
	}
	if l, ok := loggers[c]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, c))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: c}
	}
	l := &Logger{
		category: c,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[c] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || level > levelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || level > levelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || level > levelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// Timer measures one operation and logs its duration at debug level.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(c Category, op string) *Timer {
	return &Timer{category: c, op: op, start: time.Now()}
}

// Stop logs the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	logsDir = ""
}
