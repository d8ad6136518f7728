package logging

import (
	stderrs "errors"

	"github.com/Station-Manager/errors"
)

// Sentinel causes carried inside the DetailedErrors returned by this package.
var (
	// ErrInvalidLevel reports a level string that names no known severity.
	ErrInvalidLevel = stderrs.New("invalid log level")
	// ErrInvalidConfig reports options that fail validation.
	ErrInvalidConfig = stderrs.New("invalid logging configuration")
	// ErrIO reports a failure to create the log directory, open or rotate the log file.
	ErrIO = stderrs.New("log file i/o failure")
	// ErrClosed reports use of a handle or sink after Close.
	ErrClosed = stderrs.New("logger closed")
)

// IsConfigurationError reports whether err was caused by an invalid level or
// invalid options.
func IsConfigurationError(err error) bool {
	return hasCause(err, ErrInvalidLevel) || hasCause(err, ErrInvalidConfig)
}

// IsIOError reports whether err was caused by a filesystem failure.
func IsIOError(err error) bool {
	return hasCause(err, ErrIO)
}

// hasCause walks the chain the same way buildErrorChain does: DetailedError.Cause()
// first, stdlib errors.Unwrap otherwise.
func hasCause(err, target error) bool {
	const maxDepth = 50
	for depth := 0; err != nil && depth < maxDepth; depth++ {
		if stderrs.Is(err, target) {
			return true
		}
		if dErr, ok := errors.AsDetailedError(err); ok && dErr != nil {
			err = dErr.Cause()
			continue
		}
		err = stderrs.Unwrap(err)
	}
	return false
}

func configError(op errors.Op, cause error, msg string) error {
	return errors.New(op).Err(cause).Msg(msg)
}

func ioError(op errors.Op, err error, msg string) error {
	return errors.New(op).Err(stderrs.Join(ErrIO, err)).Msg(msg)
}
