// Package trace carries a leveled, prefixed logger through a context so that
// library code can emit diagnostics without owning any logging setup.
package trace

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
)

// LogLevel represents tracing verbosity level
type LogLevel int

const (
	// LogLevelNormal for regular user-facing messages
	LogLevelNormal LogLevel = iota
	// LogLevelVerbose for detailed debug info
	LogLevelVerbose
	// LogLevelTrace adds per-call state dumps from the generators
	LogLevelTrace
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelNormal:
		return "normal"
	case LogLevelVerbose:
		return "verbose"
	case LogLevelTrace:
		return "trace"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// LevelFor maps the CLI's -verbose and -trace flags to a level.
func LevelFor(verbose, traceOn bool) LogLevel {
	switch {
	case traceOn:
		return LogLevelTrace
	case verbose:
		return LogLevelVerbose
	}
	return LogLevelNormal
}

type traceKeyType string

const traceKey traceKeyType = "tracer"

// Tracer is a prefixed logger with a verbosity level. Tracers derived with
// WithPrefix share the parent's output.
type Tracer struct {
	prefix string
	level  LogLevel
	out    *log.Logger
}

// NewTracer creates a tracer writing to the standard logger's destination.
func NewTracer(prefix string, level LogLevel) *Tracer {
	return &Tracer{
		prefix: prefix,
		level:  level,
		out:    log.New(stdWriter{}, "", log.LstdFlags),
	}
}

// stdWriter forwards to whatever log.Writer() is at write time, so that
// log.SetOutput keeps affecting tracers created earlier.
type stdWriter struct{}

func (stdWriter) Write(p []byte) (int, error) {
	return log.Writer().Write(p)
}

// SetOutput redirects this tracer and every tracer sharing its output
// through WithPrefix.
func (t *Tracer) SetOutput(w io.Writer) {
	t.out.SetOutput(w)
}

// WithContext adds the tracer to the given context
func WithContext(ctx context.Context, tracer *Tracer) context.Context {
	return context.WithValue(ctx, traceKey, tracer)
}

// FromContext extracts the tracer from the context, or returns a quiet
// default tracer.
func FromContext(ctx context.Context) *Tracer {
	if tracer, ok := ctx.Value(traceKey).(*Tracer); ok {
		return tracer
	}
	return NewTracer("", LogLevelNormal)
}

// WithPrefix derives a tracer with a new prefix, same level and output.
func (t *Tracer) WithPrefix(prefix string) *Tracer {
	return &Tracer{
		prefix: prefix,
		level:  t.level,
		out:    t.out,
	}
}

// SetVerbose switches between normal and verbose levels.
func (t *Tracer) SetVerbose(verbose bool) {
	if verbose {
		t.level = LogLevelVerbose
	} else {
		t.level = LogLevelNormal
	}
}

// Level returns the current level.
func (t *Tracer) Level() LogLevel {
	return t.level
}

// IsVerbose returns whether debug output is enabled
func (t *Tracer) IsVerbose() bool {
	return t.level >= LogLevelVerbose
}

func (t *Tracer) emit(tag, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case t.prefix != "" && tag != "":
		t.out.Printf("%s %s: %s", t.prefix, tag, msg)
	case t.prefix != "":
		t.out.Printf("%s: %s", t.prefix, msg)
	case tag != "":
		t.out.Printf("%s: %s", tag, msg)
	default:
		t.out.Print(msg)
	}
}

// Infof logs a formatted message at normal level
func (t *Tracer) Infof(format string, args ...interface{}) {
	t.emit("", format, args...)
}

// Debugf logs only if verbose is enabled
func (t *Tracer) Debugf(format string, args ...interface{}) {
	if t.level < LogLevelVerbose {
		return
	}
	t.emit("", format, args...)
}

// Tracef logs only at the trace level
func (t *Tracer) Tracef(format string, args ...interface{}) {
	if t.level < LogLevelTrace {
		return
	}
	t.emit("TRACE", format, args...)
}

// Error logs an error message
func (t *Tracer) Error(err error) {
	t.emit("ERROR", "%v", err)
}

// Fatal logs a fatal error and exits
func (t *Tracer) Fatal(err error) {
	t.emit("FATAL", "%v", err)
	os.Exit(1)
}
