package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends dated lines to a single log file. Safe for concurrent use
// by the workers that share it.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// New creates the log directory if needed and opens fname in append mode
func New(dir, fname string) (*Logger, error) {
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, fname), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Logger{file: f}, nil
}

// NewOrDie is for main.go, where a missing log dir is fatal anyway
func NewOrDie(dir, fname string) *Logger {
	l, err := New(dir, fname)
	if err != nil {
		panic(err)
	}
	return l
}

// Discard returns a logger writing to nowhere, for tests
func Discard() *Logger {
	return &Logger{}
}

// Printf formats and appends one dated line
func (l *Logger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	t := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.file, "%s %s\n", t, fmt.Sprintf(format, args...))
}

// Close flushes and closes the underlying file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
