package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Option configures a handle created by Registry.Setup.
type Option func(*options)

// options holds the resolved settings for one handle. Zero values are replaced
// by defaults before any Option runs, so an explicit zero (for example
// WithBackupCount(0)) is honoured.
type options struct {
	Name        string
	Level       string
	Format      string        `validate:"required"`
	FilePath    string        `validate:"required"`
	LogDir      string        `validate:"required"`
	MaxBytes    int64         `validate:"gte=0"`
	BackupCount int           `validate:"gte=0,lte=1024"`
	Rotation    RotationStyle `validate:"oneof=numbered timestamped"`
	MaxAgeDays  int           `validate:"gte=0,lte=3650"`
	Compress    bool
	TimeLayout  string    `validate:"required"`
	Console     io.Writer `validate:"-"`
	NoConsole   bool
	Now         func() time.Time `validate:"-"`
}

func defaultOptions() *options {
	return &options{
		Format:      DefaultFormat,
		LogDir:      DefaultLogDir,
		MaxBytes:    DefaultMaxBytes,
		BackupCount: DefaultBackupCount,
		Rotation:    RotationNumbered,
		TimeLayout:  DefaultTimeLayout,
		Console:     os.Stdout,
		Now:         time.Now,
	}
}

// WithName sets the handle name. An empty name selects DefaultName.
func WithName(name string) Option {
	return func(o *options) { o.Name = name }
}

// WithLevel sets the minimum level, overriding LOG_LEVEL.
func WithLevel(level string) Option {
	return func(o *options) { o.Level = level }
}

// WithFormat sets the text/template used to render each line.
// Available fields: Time, Name, Level, File, Line, Caller, Message.
func WithFormat(format string) Option {
	return func(o *options) { o.Format = format }
}

// WithFilePath sets an explicit log file path. Parent directories are created.
func WithFilePath(path string) Option {
	return func(o *options) { o.FilePath = path }
}

// WithLogDir sets the directory used to derive the default file path.
func WithLogDir(dir string) Option {
	return func(o *options) { o.LogDir = dir }
}

// WithMaxBytes sets the rotation threshold. Zero disables size-based rotation.
func WithMaxBytes(n int64) Option {
	return func(o *options) { o.MaxBytes = n }
}

// WithBackupCount sets how many rotated files are kept. With zero the file is
// never rolled over and no line is discarded.
func WithBackupCount(n int) Option {
	return func(o *options) { o.BackupCount = n }
}

// WithRotation selects numbered (default) or timestamped rotation.
func WithRotation(style RotationStyle) Option {
	return func(o *options) { o.Rotation = style }
}

// WithMaxAgeDays bounds backup age. Only timestamped rotation honours it.
func WithMaxAgeDays(days int) Option {
	return func(o *options) { o.MaxAgeDays = days }
}

// WithCompress gzips backups. Only timestamped rotation honours it.
func WithCompress(compress bool) Option {
	return func(o *options) { o.Compress = compress }
}

// WithTimeLayout sets the time.Format layout of the Time field.
func WithTimeLayout(layout string) Option {
	return func(o *options) { o.TimeLayout = layout }
}

// WithConsole redirects the console sink, which writes to os.Stdout by default.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.Console = w
		o.NoConsole = w == nil
	}
}

// WithoutConsole attaches only the file sink.
func WithoutConsole() Option {
	return func(o *options) { o.NoConsole = true }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.Now = now
		}
	}
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.Name == emptyString {
		o.Name = DefaultName
	}
	if o.FilePath == emptyString {
		o.FilePath = defaultFilePath(o.LogDir, o.Name)
	}
}

// defaultFilePath derives <dir>/<name with dots as underscores>.log.
func defaultFilePath(dir, name string) string {
	if name == emptyString {
		name = DefaultName
	}
	return filepath.Join(dir, strings.ReplaceAll(name, ".", "_")+".log")
}
