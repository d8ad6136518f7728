package logging

import (
	stderrs "errors"
	"io"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Handle is a named logger with a console sink and a rotating file sink.
// Handles are created and configured by a Registry; a handle's sinks are
// attached exactly once.
type Handle struct {
	name   string
	format string
	logger atomic.Pointer[zerolog.Logger]
	closed atomic.Bool

	mu    sync.Mutex // guards sinks and attachment
	sinks []Sink
}

func newHandle(name string) *Handle {
	return &Handle{name: name}
}

// Name returns the handle name.
func (h *Handle) Name() string { return h.name }

// Format returns the format template lines are rendered with.
func (h *Handle) Format() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.format
}

// Level returns the current minimum level.
func (h *Handle) Level() Level {
	logger := h.logger.Load()
	if logger == nil {
		return LevelInfo
	}
	return levelFromZerolog(logger.GetLevel())
}

// Sinks returns the attached sinks in attachment order.
func (h *Handle) Sinks() []Sink {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Sink, len(h.sinks))
	copy(out, h.sinks)
	return out
}

// FileSink returns the rotating file sink, or nil before setup.
func (h *Handle) FileSink() *RotatingFileSink {
	for _, s := range h.Sinks() {
		if fs, ok := s.(*RotatingFileSink); ok {
			return fs
		}
	}
	return nil
}

// attachLocked builds the sinks and publishes the logger. The caller holds h.mu.
// Nothing is published unless every sink opened.
func (h *Handle) attachLocked(cfg *options, level Level) error {
	lay, err := newLayout(cfg.Format)
	if err != nil {
		return err
	}

	var sinks []Sink
	if !cfg.NoConsole {
		sinks = append(sinks, newConsoleSink(cfg.Console, level, lay))
	}
	fileSink, err := newRotatingFileSink(cfg, level, lay)
	if err != nil {
		return err
	}
	sinks = append(sinks, fileSink)

	writers := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		writers = append(writers, s)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level.zerolog()).
		Hook(timestampHook{now: cfg.Now, layout: cfg.TimeLayout}).
		With().
		Str(LoggerFieldName, h.name).
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
		Logger()

	h.format = cfg.Format
	h.sinks = sinks
	h.logger.Store(&logger)
	return nil
}

func (h *Handle) configuredLocked() bool {
	return len(h.sinks) > 0
}

func (h *Handle) event(l Level) *zerolog.Event {
	if h == nil || h.closed.Load() {
		return nil
	}
	logger := h.logger.Load()
	if logger == nil {
		return nil
	}
	return logger.WithLevel(l.zerolog())
}

// SetLevel changes the minimum level of the handle and of its sinks.
func (h *Handle) SetLevel(level string) error {
	const op errors.Op = "logging.Handle.SetLevel"
	if h == nil {
		return configError(op, ErrInvalidConfig, errMsgNilHandle)
	}
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}

	for {
		oldLogger := h.logger.Load()
		if oldLogger == nil {
			return nil
		}
		newLogger := oldLogger.Level(l.zerolog())
		if h.logger.CompareAndSwap(oldLogger, &newLogger) {
			break
		}
	}
	for _, s := range h.Sinks() {
		s.setLevel(l)
	}
	return nil
}

// Hook installs zerolog hooks on the handle.
func (h *Handle) Hook(hooks ...zerolog.Hook) {
	if h == nil || h.closed.Load() {
		return
	}

	// Atomic compare-and-swap loop for thread-safe hook installation
	for {
		oldLogger := h.logger.Load()
		if oldLogger == nil {
			return
		}

		newLogger := oldLogger.Hook(hooks...)

		if h.logger.CompareAndSwap(oldLogger, &newLogger) {
			break
		}
	}
}

// DebugWith returns a LogEvent for structured Debug-level logging.
func (h *Handle) DebugWith() LogEvent { return newLogEvent(h.event(LevelDebug)) }

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: logger.InfoWith().Str("user_id", id).Int("count", 5).Msg("User processed")
func (h *Handle) InfoWith() LogEvent { return newLogEvent(h.event(LevelInfo)) }

// WarnWith returns a LogEvent for structured Warning-level logging.
func (h *Handle) WarnWith() LogEvent { return newLogEvent(h.event(LevelWarning)) }

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: logger.ErrorWith().Err(err).Str("operation", "database").Msg("Query failed")
func (h *Handle) ErrorWith() LogEvent { return newLogEvent(h.event(LevelError)) }

// CriticalWith returns a LogEvent for Critical-level logging. The process keeps running.
func (h *Handle) CriticalWith() LogEvent { return newLogEvent(h.event(LevelCritical)) }

func (h *Handle) Debugf(format string, v ...interface{}) { h.event(LevelDebug).Msgf(format, v...) }

func (h *Handle) Infof(format string, v ...interface{}) { h.event(LevelInfo).Msgf(format, v...) }

func (h *Handle) Warnf(format string, v ...interface{}) { h.event(LevelWarning).Msgf(format, v...) }

func (h *Handle) Errorf(format string, v ...interface{}) { h.event(LevelError).Msgf(format, v...) }

func (h *Handle) Criticalf(format string, v ...interface{}) {
	h.event(LevelCritical).Msgf(format, v...)
}

// With returns a LogContext for creating a child logger with pre-populated fields.
// Example: reqLogger := logger.With().Str("request_id", id).Logger()
func (h *Handle) With() LogContext {
	if h == nil || h.closed.Load() {
		return &noopLogContext{}
	}
	logger := h.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{context: logger.With(), parent: h}
}

// Rotate forces the file sink to roll over.
func (h *Handle) Rotate() error {
	const op errors.Op = "logging.Handle.Rotate"
	if h == nil {
		return configError(op, ErrInvalidConfig, errMsgNilHandle)
	}
	if h.closed.Load() {
		return errors.New(op).Err(ErrClosed).Msg(errMsgHandleClosed)
	}
	fs := h.FileSink()
	if fs == nil {
		return nil
	}
	if err := fs.Rotate(); err != nil {
		if hasCause(err, ErrIO) {
			return err
		}
		return ioError(op, err, errMsgRotate)
	}
	return nil
}

// Close stops the handle from writing and closes its file. It is safe to call
// Close multiple times. The handle stays registered under its name and Level
// keeps reporting the configured level.
func (h *Handle) Close() error {
	if h == nil || h.closed.Swap(true) {
		return nil
	}
	var errs []error
	for _, s := range h.Sinks() {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrs.Join(errs...)
}
