package logging

const emptyString = ""

const (
	// EnvLogLevel names the environment variable consulted when no explicit level is given.
	EnvLogLevel = "LOG_LEVEL"

	// DefaultName is used when a handle is requested with an empty name.
	DefaultName = "app"

	// DefaultLogDir is the directory, relative to the working directory, that
	// receives log files when no explicit path is configured.
	DefaultLogDir = "logs"

	// DefaultMaxBytes is the size at which the active log file is rotated.
	DefaultMaxBytes int64 = 10 * 1024 * 1024

	// DefaultBackupCount is the number of rotated files retained.
	DefaultBackupCount = 5

	// DefaultFormat renders
	// "<timestamp> - <logger-name> - <level> - [<source-file>:<line>] - <message>".
	DefaultFormat = "{{.Time}} - {{.Name}} - {{.Level}} - [{{.File}}:{{.Line}}] - {{.Message}}"

	// DefaultTimeLayout is the time.Format layout used for the Time field.
	DefaultTimeLayout = "2006-01-02 15:04:05.000"

	// LoggerFieldName carries the handle name on every event.
	LoggerFieldName = "logger"

	megabyte = 1024 * 1024
)

const (
	errMsgInvalidLevel  = "Logging level is not recognised."
	errMsgConfigInvalid = "Logging configuration is invalid."
	errMsgInvalidFormat = "Logging format template is invalid."
	errMsgCreateDir     = "Failed to create log directory."
	errMsgOpenFile      = "Failed to open log file."
	errMsgRotate        = "Failed to rotate log file."
	errMsgReadConfig    = "Failed to read logging config file."
	errMsgParseConfig   = "Failed to parse logging config file."
	errMsgWatchConfig   = "Failed to watch logging config file."
	errMsgHandleClosed  = "Logger handle is closed."
	errMsgNilHandle     = "Logger handle is nil."
	errMsgNilAppConfig  = "Application config service is nil."
	errMsgLoadAppConfig = "Failed to load application config."
)
