package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext provides a fluent interface for building a context logger with pre-populated fields.
// Fields added through LogContext are appended to every line the child logger writes.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for a single log line with typed fields.
// A LogEvent for a disabled level is a no-op.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Interface(key string, val interface{}) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event
type logEvent struct {
	event *zerolog.Event
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	if e.event != nil {
		e.event.Uint64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

// Err sets the error field and, for non-nil errors, the chain enrichment fields
// error_chain, error_root, error_history, error_ops and error_root_op.
func (e *logEvent) Err(err error) LogEvent {
	return e.AnErr(zerolog.ErrorFieldName, err)
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event == nil {
		return e
	}
	e.event.AnErr(key, err)
	if err == nil {
		return e
	}
	chain, ops, root, rootOp := buildErrorChain(err)
	if len(chain) > 1 {
		e.event.Strs(key+"_chain", chain)
		e.event.Str(key+"_root", root)
		e.event.Str(key+"_history", joinChain(chain))
	}
	if rootOp != emptyString {
		e.event.Strs(key+"_ops", ops)
		e.event.Str(key+"_root_op", rootOp)
	}
	return e
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	if e.event != nil {
		e.event.Send()
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	parent  *Handle
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{logger: &logger, parent: c.parent}
}

// contextLogger shares its parent's sinks; it stops writing once the parent is closed.
// Its level is fixed when it is created.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Handle
}

func (cl *contextLogger) event(l Level) LogEvent {
	if cl.parent == nil || cl.parent.closed.Load() {
		return newLogEvent(nil)
	}
	return newLogEvent(cl.logger.WithLevel(l.zerolog()))
}

func (cl *contextLogger) DebugWith() LogEvent    { return cl.event(LevelDebug) }
func (cl *contextLogger) InfoWith() LogEvent     { return cl.event(LevelInfo) }
func (cl *contextLogger) WarnWith() LogEvent     { return cl.event(LevelWarning) }
func (cl *contextLogger) ErrorWith() LogEvent    { return cl.event(LevelError) }
func (cl *contextLogger) CriticalWith() LogEvent { return cl.event(LevelCritical) }

func (cl *contextLogger) With() LogContext {
	return &logContext{context: cl.logger.With(), parent: cl.parent}
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext                   { return n }
func (n *noopLogContext) Int(key string, val int) LogContext               { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext           { return n }
func (n *noopLogContext) Bool(key string, val bool) LogContext             { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext        { return n }
func (n *noopLogContext) Err(err error) LogContext                         { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext { return n }
func (n *noopLogContext) Logger() Logger                                   { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) DebugWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) CriticalWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext       { return &noopLogContext{} }
