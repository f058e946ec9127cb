// Package logging provides leveled logging with selectable text or JSON output.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity level.
type Level int

const (
	// LevelDebug enables all log output including diagnostics.
	LevelDebug Level = iota
	// LevelInfo is the default level for normal operation.
	LevelInfo
	// LevelWarn logs warnings and errors only.
	LevelWarn
	// LevelError logs errors only.
	LevelError
)

// String returns the uppercase name of the level.
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

// ParseLevel converts a level name to a Level. Names are case-insensitive;
// "warning" is accepted as an alias for "warn". Surrounding whitespace is
// not trimmed: a padded name is a config error, not a convenience.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
}

var (
	mu         sync.Mutex
	level      = LevelInfo
	format     = "text"
	out        io.Writer = os.Stderr
	simpleMode bool
)

// SetLevel sets the minimum level that will be logged.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetFormat selects the output format: "text" or "json".
// Unknown values fall back to "text".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f == "json" {
		format = "json"
	} else {
		format = "text"
	}
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		out = os.Stderr
	} else {
		out = w
	}
}

// SetSimpleMode toggles bare-message text output without timestamp and
// level prefixes. Useful for interactive CLI output. Ignored in JSON format.
func SetSimpleMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	simpleMode = enabled
}

// IsDebug reports whether debug-level output is enabled.
func IsDebug() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a message at debug level.
func Debug(msg string, args ...interface{}) {
	log(LevelDebug, msg, args...)
}

// Info logs a message at info level.
func Info(msg string, args ...interface{}) {
	log(LevelInfo, msg, args...)
}

// Warn logs a message at warn level.
func Warn(msg string, args ...interface{}) {
	log(LevelWarn, msg, args...)
}

// Error logs a message at error level.
func Error(msg string, args ...interface{}) {
	log(LevelError, msg, args...)
}

func log(l Level, msg string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if l < level {
		return
	}

	rendered := msg
	if len(args) > 0 {
		rendered = fmt.Sprintf(msg, args...)
	}

	if format == "json" {
		entry := map[string]interface{}{
			"ts":    time.Now().Format(time.RFC3339),
			"level": strings.ToLower(l.String()),
			"msg":   rendered,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(out, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), l, rendered)
			return
		}
		fmt.Fprintln(out, string(b))
		return
	}

	if simpleMode {
		fmt.Fprintln(out, rendered)
		return
	}
	fmt.Fprintf(out, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), l, rendered)
}
