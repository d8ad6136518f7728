package logging

import (
	"io"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// SinkKind identifies a sink variant.
type SinkKind string

const (
	SinkConsole SinkKind = "console"
	SinkFile    SinkKind = "file"
)

// Sink is a destination for rendered lines with its own level threshold.
// Sinks receive zerolog's JSON payload through WriteLevel and render it with
// the handle's format template before writing.
type Sink interface {
	zerolog.LevelWriter
	io.Closer
	Kind() SinkKind
	Level() Level
	setLevel(Level)
}

// sinkBase drops events under the threshold and renders the rest.
type sinkBase struct {
	threshold atomic.Int32
	render    zerolog.ConsoleWriter
}

func (s *sinkBase) init(level Level, lay *layout, out io.Writer) {
	s.threshold.Store(int32(level))
	s.render = lay.writer(out)
}

func (s *sinkBase) Level() Level { return Level(s.threshold.Load()) }

func (s *sinkBase) setLevel(l Level) { s.threshold.Store(int32(l)) }

func (s *sinkBase) Write(p []byte) (int, error) {
	return s.render.Write(p)
}

func (s *sinkBase) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l != zerolog.NoLevel && levelFromZerolog(l) < s.Level() {
		return len(p), nil
	}
	return s.render.Write(p)
}

// ConsoleSink mirrors lines to a console stream, one write per line.
type ConsoleSink struct {
	sinkBase
}

func newConsoleSink(out io.Writer, level Level, lay *layout) *ConsoleSink {
	s := &ConsoleSink{}
	s.init(level, lay, zerolog.SyncWriter(out))
	return s
}

func (s *ConsoleSink) Kind() SinkKind { return SinkConsole }

// Close leaves the underlying stream open; stdout belongs to the process.
func (s *ConsoleSink) Close() error { return nil }

// RotatingFileSink appends lines to a size-rotated file.
type RotatingFileSink struct {
	sinkBase
	rotator     Rotator
	path        string
	maxBytes    int64
	backupCount int
	style       RotationStyle
}

func newRotatingFileSink(cfg *options, level Level, lay *layout) (*RotatingFileSink, error) {
	rot, err := newRotator(cfg)
	if err != nil {
		return nil, err
	}
	s := &RotatingFileSink{
		rotator:     rot,
		path:        cfg.FilePath,
		maxBytes:    cfg.MaxBytes,
		backupCount: cfg.BackupCount,
		style:       cfg.Rotation,
	}
	s.init(level, lay, rot)
	return s, nil
}

func (s *RotatingFileSink) Kind() SinkKind { return SinkFile }

// Path is the active log file.
func (s *RotatingFileSink) Path() string { return s.path }

// MaxBytes is the rotation threshold.
func (s *RotatingFileSink) MaxBytes() int64 { return s.maxBytes }

// BackupCount is the number of retained backups.
func (s *RotatingFileSink) BackupCount() int { return s.backupCount }

// Rotation is the rotation style in use.
func (s *RotatingFileSink) Rotation() RotationStyle { return s.style }

// Rotate forces a rollover.
func (s *RotatingFileSink) Rotate() error { return s.rotator.Rotate() }

func (s *RotatingFileSink) Close() error { return s.rotator.Close() }
