package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventLogger writes timestamped events to a file.  It is safe for concurrent use.
type EventLogger struct {
	filePath string
	mu       sync.Mutex
	stderr   io.Writer
}

// NewEventLogger creates a logger appending to filePath.  With an empty path
// events go to standard error.
func NewEventLogger(filePath string) *EventLogger {
	return &EventLogger{filePath: filePath, stderr: os.Stderr}
}

// Log writes a single event with timestamp.  Errors are ignored but printed
// to standard error.
func (el *EventLogger) Log(format string, args ...any) {
	el.mu.Lock()
	defer el.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format(time.RFC3339)
	line := fmt.Sprintf("%s - %s\n", ts, msg)
	if el.filePath == "" {
		if _, err := fmt.Fprint(el.stderr, line); err != nil {
			fmt.Fprintf(os.Stderr, "log write error: %v\n", err)
		}
		return
	}
	// The file is reopened per event so it can be rotated underneath us.
	f, err := os.OpenFile(el.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(el.stderr, "log error: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		fmt.Fprintf(el.stderr, "log write error: %v\n", err)
	}
}
