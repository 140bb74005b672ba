// Package log provides structured file logging for smbox.
// Logging is off unless --debug or SMBOX_DEBUG turns it on; the terminal is
// owned by the viewer, so entries go to a file opened through tea.LogToFile.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smbox/smbox/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatMbox      Category = "mbox"      // Mbox parsing and rewriting
	CatHighlight Category = "highlight" // Rule loading and body highlighting
	CatConfig    Category = "config"    // Configuration loading/saving
	CatWatcher   Category = "watcher"   // Mbox file watcher events
	CatUI        Category = "ui"        // Viewer updates
	CatTrash     Category = "trash"     // Trash store
	CatTrace     Category = "trace"     // Tracing provider
	CatCache     Category = "cache"     // Rendered body cache
)

// Logger writes formatted entries and republishes them to subscribers.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]

	// recent is a ring of the last bufferSize entries for the log overlay.
	recent []string
	next   int
	full   bool
}

const bufferSize = 500

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens path through tea.LogToFile and installs it as the global logger.
// The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "smbox")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(&Logger{
		writer:   f,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	})
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger writing to w. Used by tests and by commands
// that log to stderr.
func InitWriter(w io.Writer, minLevel Level) {
	install(&Logger{
		writer:   w,
		enabled:  true,
		minLevel: minLevel,
		broker:   pubsub.NewBroker[string](),
	})
}

// Reset removes the global logger.
func Reset() {
	install(nil)
}

func install(l *Logger) {
	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()
	if old != nil && old.broker != nil {
		old.broker.Close()
	}
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// DebugFromEnv reports whether SMBOX_DEBUG requests debug logging.
func DebugFromEnv() bool {
	switch strings.ToLower(os.Getenv("SMBOX_DEBUG")) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2025-12-06T10:45:00 [ERROR] [mbox] message key=value key2=value2
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.remember(entry)
	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, entry)
	}
}

func (l *Logger) remember(entry string) {
	if l.recent == nil {
		l.recent = make([]string, bufferSize)
	}
	l.recent[l.next] = entry
	l.next = (l.next + 1) % bufferSize
	if l.next == 0 {
		l.full = true
	}
}

// RecentLogs returns up to n of the most recent entries, oldest first.
func RecentLogs(n int) []string {
	l := current()
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.next
	if l.full {
		count = bufferSize
	}
	n = min(n, count)
	out := make([]string, 0, n)
	for i := count - n; i < count; i++ {
		idx := i
		if l.full {
			idx = (l.next + i) % bufferSize
		}
		out = append(out, l.recent[idx])
	}
	return out
}

// ClearBuffer drops the entries returned by RecentLogs.
func ClearBuffer() {
	l := current()
	if l == nil {
		return
	}
	l.mu.Lock()
	l.recent, l.next, l.full = nil, 0, false
	l.mu.Unlock()
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener delivers log entries to the log overlay.
type LogListener = pubsub.Listener[string]

// NewListener subscribes to log entries until ctx is cancelled.
// Returns nil when logging is not initialised.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil || l.broker == nil {
		return nil
	}
	return pubsub.Listen(ctx, l.broker)
}
