// Package runlog provides the simulation run log. The run log is a single
// file shared by the whole simulation. Messages are gated by a log level,
// and the file is rotated once it grows past a configured size so that long
// runs do not fill the disk.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// A Logger writes leveled messages to the run log file.
type Logger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	out     *log.Logger
	level   int
	enabled bool
	maxSize int64
	written int64
}

// New creates a Logger that writes to the file at path. The file is
// truncated. maxSize is the rotation threshold in bytes; 0 disables
// rotation.
func New(path string, level int, maxSize int64) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		path:    path,
		file:    f,
		level:   level,
		enabled: true,
		maxSize: maxSize,
	}
	l.out = log.New(countingWriter{l}, "", log.LstdFlags)

	return l, nil
}

// Discard creates a Logger that drops all output. Useful in tests and when
// no log file is configured.
func Discard() *Logger {
	l := &Logger{enabled: true}
	l.out = log.New(io.Discard, "", 0)
	return l
}

type countingWriter struct {
	l *Logger
}

func (w countingWriter) Write(p []byte) (int, error) {
	n, err := w.l.file.Write(p)
	w.l.written += int64(n)
	return n, err
}

// Level returns the configured log level.
func (l *Logger) Level() int {
	return l.level
}

// Enabled reports whether logging is currently active.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.enabled
}

// Enable activates logging. Used for deferred activation, where logging
// starts only after a configured iteration count.
func (l *Logger) Enable() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enabled = true
}

// Disable suppresses all gated output.
func (l *Logger) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enabled = false
}

// Logable reports whether a message at level n would be written.
func (l *Logger) Logable(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.enabled && l.level >= n
}

// Printf writes to the run log unconditionally.
func (l *Logger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out.Printf(format, args...)
}

// Logf writes to the run log if level n is logable.
func (l *Logger) Logf(n int, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.level < n {
		return
	}

	l.out.Printf(format, args...)
}

// Fatalf reports a fatal error. The message is written to both the
// operator console and the run log, then the process aborts by panicking.
// There is no recovery path for configuration errors.
func (l *Logger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	fmt.Fprintln(os.Stderr, msg)

	l.mu.Lock()
	l.out.Print(msg)
	l.mu.Unlock()

	panic(msg)
}

// Size returns the number of bytes written to the current log file.
func (l *Logger) Size() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.written
}

// RotateIfNeeded backs up and reopens the log file if it has grown past
// the configured size limit. The previous contents move to <path>.bk.
func (l *Logger) RotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.maxSize == 0 || l.written <= l.maxSize {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return err
	}

	if err := os.Rename(l.path, l.path+".bk"); err != nil {
		return err
	}

	f, err := os.Create(l.path)
	if err != nil {
		return err
	}

	l.file = f
	l.written = 0

	return nil
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil

	return err
}
