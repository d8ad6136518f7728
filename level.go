package logging

import (
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// Level is an ordered severity: DEBUG < INFO < WARNING < ERROR < CRITICAL.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

var levelNames = [...]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// zerolog maps the severity onto zerolog's scale. CRITICAL is zerolog's fatal
// level; events at that level are emitted with WithLevel and never exit.
func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelCritical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

func levelFromZerolog(l zerolog.Level) Level {
	switch {
	case l <= zerolog.DebugLevel:
		return LevelDebug
	case l == zerolog.InfoLevel:
		return LevelInfo
	case l == zerolog.WarnLevel:
		return LevelWarning
	case l == zerolog.ErrorLevel:
		return LevelError
	default:
		return LevelCritical
	}
}

// ParseLevel parses DEBUG, INFO, WARN, WARNING, ERROR or CRITICAL, ignoring case
// and surrounding whitespace.
func ParseLevel(s string) (Level, error) {
	const op errors.Op = "logging.ParseLevel"
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return LevelInfo, configError(op, ErrInvalidLevel, errMsgInvalidLevel+" Got: "+s)
}

// resolveLevel applies the precedence explicit > LOG_LEVEL > INFO.
func resolveLevel(explicit string, lookupEnv func(string) (string, bool)) (Level, error) {
	if explicit != emptyString {
		return ParseLevel(explicit)
	}
	if lookupEnv != nil {
		if v, ok := lookupEnv(EnvLogLevel); ok && strings.TrimSpace(v) != emptyString {
			return ParseLevel(v)
		}
	}
	return LevelInfo, nil
}

// levelName renders zerolog's level field value with this package's names.
func levelName(v interface{}) string {
	s, _ := v.(string)
	l, err := zerolog.ParseLevel(s)
	if err != nil || l == zerolog.NoLevel {
		return strings.ToUpper(s)
	}
	switch l {
	case zerolog.TraceLevel:
		return "TRACE"
	case zerolog.PanicLevel:
		return "PANIC"
	}
	return levelFromZerolog(l).String()
}
