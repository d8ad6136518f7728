package logging

// Logger is the structured logging surface shared by handles and the child
// loggers created through With.
type Logger interface {
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	CriticalWith() LogEvent

	// With for context logger creation
	// Creates a new logger with pre-populated fields that will be included in all subsequent logs
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext
}

var (
	_ Logger = (*Handle)(nil)
	_ Logger = (*contextLogger)(nil)
	_ Sink   = (*ConsoleSink)(nil)
	_ Sink   = (*RotatingFileSink)(nil)
)
