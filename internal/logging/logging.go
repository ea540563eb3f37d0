// Package logging provides the logging utility collaborator described in
// the core's external interfaces: a single environment-driven level knob
// (MEMOIZATION_LOGLVL) threaded through the compiler, selector, memo table,
// and simulator instead of the file-scope log-level flag the original C
// implementation used.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// EnvVar is the environment variable that controls the default logger's level.
const EnvVar = "MEMOIZATION_LOGLVL"

// Logger wraps a zerolog.Logger so call sites depend on this package's
// narrow surface rather than zerolog directly.
type Logger struct {
	z zerolog.Logger
}

// levelFromName maps the spec's six-level taxonomy onto zerolog's levels.
// verbose and debug both sit below Info in the spec; zerolog has exactly
// two levels there (Debug, Trace), so verbose maps to Debug and debug maps
// to Trace to preserve a monotonic ordering.
func levelFromName(name string) zerolog.Level {
	switch name {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "verbose":
		return zerolog.DebugLevel
	case "debug":
		return zerolog.TraceLevel
	case "silent", "":
		return zerolog.Disabled
	default:
		return zerolog.Disabled
	}
}

// New builds a Logger writing to w at the given spec level name.
func New(w *os.File, levelName string) *Logger {
	z := zerolog.New(w).With().Timestamp().Logger().Level(levelFromName(levelName))
	return &Logger{z: z}
}

// Default builds a Logger from the MEMOIZATION_LOGLVL environment variable,
// writing to stderr. Defaults to "silent" when unset.
func Default() *Logger {
	return New(os.Stderr, os.Getenv(EnvVar))
}

// Nop returns a Logger that discards everything, for tests and library
// callers that never configured MEMOIZATION_LOGLVL.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{z: l}
}

func (l *Logger) Debug() *zerolog.Event { return l.z.Debug() }
func (l *Logger) Trace() *zerolog.Event { return l.z.Trace() }
func (l *Logger) Info() *zerolog.Event  { return l.z.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.z.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.z.Error() }
