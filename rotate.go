package logging

import (
	stderrs "errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Station-Manager/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationStyle selects how the file sink rolls its log file over.
type RotationStyle string

const (
	// RotationNumbered rolls over once the file would exceed MaxBytes and keeps
	// backups as <file>.1 (newest) ... <file>.N (oldest). With zero backups it
	// never rolls over.
	RotationNumbered RotationStyle = "numbered"
	// RotationTimestamped delegates to lumberjack: megabyte thresholds,
	// timestamped backup names, optional age limit and gzip compression.
	RotationTimestamped RotationStyle = "timestamped"
)

// Rotator is the file behind a RotatingFileSink.
type Rotator interface {
	io.WriteCloser
	Rotate() error
}

const (
	fileMode os.FileMode = 0o644
	dirMode  os.FileMode = 0o755
)

// newRotator ensures the parent directory exists and opens the rotator for cfg.
func newRotator(cfg *options) (Rotator, error) {
	const op errors.Op = "logging.newRotator"

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), dirMode); err != nil {
		return nil, ioError(op, err, errMsgCreateDir)
	}

	if cfg.Rotation == RotationTimestamped {
		// lumberjack opens lazily; touch the file so permission problems surface now.
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fileMode)
		if err != nil {
			return nil, ioError(op, err, errMsgOpenFile)
		}
		_ = f.Close()
		return newRollingFileLogger(cfg), nil
	}

	return openNumberedRotator(cfg.FilePath, cfg.MaxBytes, cfg.BackupCount)
}

// rollingFile is lumberjack with numbered-style semantics for zero backups:
// with nothing to keep, rollover never happens and every line is kept.
type rollingFile struct {
	*lumberjack.Logger
	rollover bool
}

func newRollingFileLogger(cfg *options) *rollingFile {
	maxSize := int(math.Ceil(float64(cfg.MaxBytes) / megabyte))
	rollover := cfg.BackupCount > 0
	if cfg.MaxBytes == 0 || !rollover {
		// lumberjack treats 0 as its 100MB default; size rotation is disabled here instead.
		maxSize = math.MaxInt32
	}
	return &rollingFile{
		Logger: &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxSize,
			MaxBackups: cfg.BackupCount,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		},
		rollover: rollover,
	}
}

// Rotate rolls the file over, or with zero backups just reopens it for appending.
func (r *rollingFile) Rotate() error {
	if !r.rollover {
		return r.Logger.Close()
	}
	return r.Logger.Rotate()
}

// numberedRotator is a size-bounded append-only file with numbered backups.
type numberedRotator struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	file     *os.File
	size     int64
	closed   bool
}

func openNumberedRotator(path string, maxBytes int64, backups int) (*numberedRotator, error) {
	r := &numberedRotator{path: path, maxBytes: maxBytes, backups: backups}
	if err := r.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *numberedRotator) open(flag int) error {
	const op errors.Op = "logging.numberedRotator.open"
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|flag, fileMode)
	if err != nil {
		return ioError(op, err, errMsgOpenFile)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return ioError(op, err, errMsgOpenFile)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// Write appends p, rolling the file over first when p would push it past maxBytes.
// A record larger than maxBytes is still written whole into a fresh file.
// Without backups there is nowhere to roll over to, so the file keeps growing.
func (r *numberedRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if r.file == nil {
		// a previous rollover failed part way through
		if err := r.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if r.maxBytes > 0 && r.backups > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		if err := r.rotateLocked(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Rotate forces a rollover regardless of the current size.
func (r *numberedRotator) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.rotateLocked()
}

func (r *numberedRotator) rotateLocked() error {
	const op errors.Op = "logging.numberedRotator.rotate"

	if r.file != nil {
		// nil after a rollover that failed part way through
		if err := r.file.Close(); err != nil {
			return ioError(op, err, errMsgRotate)
		}
		r.file = nil
	}

	if r.backups == 0 {
		return r.open(os.O_APPEND)
	}

	oldest := r.backupName(r.backups)
	if err := os.Remove(oldest); err != nil && !stderrs.Is(err, fs.ErrNotExist) {
		return ioError(op, err, errMsgRotate)
	}
	for i := r.backups - 1; i >= 1; i-- {
		src := r.backupName(i)
		if err := os.Rename(src, r.backupName(i+1)); err != nil && !stderrs.Is(err, fs.ErrNotExist) {
			return ioError(op, err, errMsgRotate)
		}
	}
	if err := os.Rename(r.path, r.backupName(1)); err != nil && !stderrs.Is(err, fs.ErrNotExist) {
		return ioError(op, err, errMsgRotate)
	}
	return r.open(os.O_TRUNC)
}

func (r *numberedRotator) backupName(i int) string {
	return r.path + "." + strconv.Itoa(i)
}

// Close closes the active file. Further writes fail with ErrClosed.
func (r *numberedRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
