// Package logging provides a process-wide structured logger for the
// sidecar: a level-based facade backed by zerolog, writing to both a
// rotating file under ~/.claude/logs and stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	logPath       string
	logFile       *os.File
	mu            sync.Mutex
	maxSize       int64 = 10 * 1024 * 1024
	initialized   bool
)

// Init initializes the default logger. Safe to call more than once; only
// the first call takes effect.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".claude", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(logDir, "voxbridge-server.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	writer := zerolog.ConsoleWriter{Out: io.MultiWriter(f, os.Stderr), TimeFormat: "2006-01-02 15:04:05.000", NoColor: true}
	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	initialized = true
	return nil
}

func rotateIfNeeded() {
	if logFile == nil {
		return
	}
	info, err := logFile.Stat()
	if err != nil || info.Size() < maxSize {
		return
	}

	logFile.Close()
	backupPath := logPath + "." + time.Now().Format("2006-01-02-150405")
	os.Rename(logPath, backupPath)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	logFile = f
	writer := zerolog.ConsoleWriter{Out: io.MultiWriter(f, os.Stderr), TimeFormat: "2006-01-02 15:04:05.000", NoColor: true}
	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	cleanupOldLogs()
}

func cleanupOldLogs() {
	dir := filepath.Dir(logPath)
	pattern := filepath.Base(logPath) + ".*"
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	if len(matches) <= 5 {
		return
	}
	for i := 0; i < len(matches)-5; i++ {
		os.Remove(matches[i])
	}
}

// Event starts a structured log entry at the given level. Callers chain
// fields (e.g. .Str("request_id", id)) and finish with .Msg(...).
//
//	logging.Event(zerolog.InfoLevel).Str("request_id", id).Msg("queued")
func Event(level zerolog.Level) *zerolog.Event {
	mu.Lock()
	rotateIfNeeded()
	l := defaultLogger
	mu.Unlock()
	if !initialized {
		return zerolog.Nop().Log()
	}
	return l.WithLevel(level)
}

func Debug() *zerolog.Event { return Event(zerolog.DebugLevel) }
func Info() *zerolog.Event  { return Event(zerolog.InfoLevel) }
func Warn() *zerolog.Event  { return Event(zerolog.WarnLevel) }
func Error() *zerolog.Event { return Event(zerolog.ErrorLevel) }

// Fatal logs at fatal level and terminates the process, mirroring the
// teacher's Fatal() semantics.
func Fatal(msg string, args ...interface{}) {
	Event(zerolog.FatalLevel).Msg(fmt.Sprintf(msg, args...))
	Close()
	os.Exit(1)
}

// Close flushes and closes the underlying log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
}

// GetLogPath returns the path of the active log file.
func GetLogPath() string {
	mu.Lock()
	defer mu.Unlock()
	if logPath != "" {
		return logPath
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".claude", "logs", "voxbridge-server.log")
}

// Preview truncates s to n runes for compact log lines, appending an
// ellipsis marker when truncated. Mirrors original_source's request.text[:50]
// log previews.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
