// Package logger prints RAG pipeline progress to stderr. Warnings are
// always shown; Debug, Info and Section output only when the --verbose
// flag is set.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

func (l level) label() string {
	switch l {
	case levelDebug:
		return "[DEBUG] "
	case levelInfo:
		return "[INFO] "
	default:
		return "[WARN] "
	}
}

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose enables or disables debug-level output.
func SetVerbose(v bool) {
	state.Lock()
	state.verbose = v
	state.Unlock()
}

// IsVerbose reports whether debug-level output is enabled.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	state.Lock()
	state.out = w
	state.Unlock()
}

// logf writes one line at the given level, honouring the verbose gate.
func logf(l level, format string, args ...any) {
	state.RLock()
	defer state.RUnlock()
	if l < levelWarn && !state.verbose {
		return
	}
	fmt.Fprintf(state.out, l.label()+format+"\n", args...)
}

// Debug prints pipeline detail when verbose output is enabled.
func Debug(format string, args ...any) {
	logf(levelDebug, format, args...)
}

// Info prints progress when verbose output is enabled.
func Info(format string, args ...any) {
	logf(levelInfo, format, args...)
}

// Warn prints regardless of the verbose setting.
func Warn(format string, args ...any) {
	logf(levelWarn, format, args...)
}

// Section prints a pipeline stage header when verbose output is enabled.
func Section(name string) {
	state.RLock()
	defer state.RUnlock()
	if !state.verbose {
		return
	}
	fmt.Fprintf(state.out, "\n=== %s ===\n", name)
}
