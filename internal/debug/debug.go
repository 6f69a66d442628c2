package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode, overridable at build time:
// go build -ldflags "-X github.com/standardbeagle/lri/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by main when stdio carries the protocol
var MCPMode = false

var (
	mu      sync.Mutex
	output  io.Writer
	logFile *os.File
)

// SetMCPMode suppresses all debug output
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitDebugLogFile directs debug output to a timestamped file in the temp dir
// and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	logDir := filepath.Join(os.TempDir(), "lri-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	logFile = file
	output = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

// IsDebugEnabled reports whether debug output is on. It is always off in MCP mode.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	if !IsDebugEnabled() {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Printf prints when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Println prints when debug mode is enabled and output is configured
func Println(args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprint(w, "[DEBUG] ")
		fmt.Fprintln(w, args...)
	}
}

// Log writes a line tagged with a component name
func Log(component, format string, args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
	}
}

// LogIndexing logs file discovery and symbol building
func LogIndexing(format string, args ...interface{}) {
	Log("INDEX", format, args...)
}

// LogResolve logs definition lookup
func LogResolve(format string, args ...interface{}) {
	Log("RESOLVE", format, args...)
}

// LogSearch logs fuzzy search
func LogSearch(format string, args ...interface{}) {
	Log("SEARCH", format, args...)
}

// LogMCP logs protocol handling
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records a catastrophic error to the debug log and returns it.
// Callers decide whether to exit.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		mu.Lock()
		w := output
		mu.Unlock()
		if w != nil {
			fmt.Fprintf(w, "[FATAL] %s\n", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
