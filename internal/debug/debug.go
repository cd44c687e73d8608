// Package debug provides optional file-based debug logging.
//
// When the SCROLLSPY_DEBUG environment variable is set to a file path, debug
// messages are appended to that file. Otherwise, logging is a no-op.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnvVar names the environment variable holding the debug log path.
const EnvVar = "SCROLLSPY_DEBUG"

var (
	logFile  *os.File
	mu       sync.Mutex
	resolved bool
)

// Init opens path for debug logging, replacing any open log file.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	resolved = true
	return initLocked(path)
}

// initLocked does the actual init work. Caller must hold mu.
func initLocked(path string) error {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	logFile = f
	return nil
}

// Enabled reports whether debug output is going anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	resolveLocked()
	return logFile != nil
}

// resolveLocked opens the file named by EnvVar the first time logging is
// needed. Caller must hold mu.
func resolveLocked() {
	if resolved {
		return
	}
	resolved = true
	if path := os.Getenv(EnvVar); path != "" {
		_ = initLocked(path)
	}
}

// Close closes the debug log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Log writes a message to the debug log with a timestamp.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	resolveLocked()
	if logFile == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(logFile, "[%s] %s\n", timestamp, msg)
}
