package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	el := NewEventLogger(path)

	el.Log("alarm on: %.2f cm", 4.2)
	el.Log("alarm off")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " - alarm on: 4.20 cm"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " - alarm off"), lines[1])

	ts, _, ok := strings.Cut(lines[0], " - ")
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestEventLoggerStderr(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger("")
	el.stderr = &buf

	el.Log("alarm started")
	assert.Contains(t, buf.String(), " - alarm started\n")
}

func TestEventLoggerOpenError(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(filepath.Join(t.TempDir(), "missing", "events.log"))
	el.stderr = &buf

	el.Log("lost")
	assert.Contains(t, buf.String(), "log error:")
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("closed")
}

func TestEventLoggerStderrWriteError(t *testing.T) {
	w := &failingWriter{}
	el := NewEventLogger("")
	el.stderr = w

	assert.NotPanics(t, func() { el.Log("alarm on") })
	assert.Equal(t, 1, w.calls)
}
