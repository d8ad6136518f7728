package logging

import (
	stderrs "errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// Record is the data a format template is executed against.
type Record struct {
	Time    string
	Name    string
	Level   string
	File    string
	Line    int
	Caller  string
	Message string
}

// layout renders zerolog events into single text lines using a format template.
type layout struct {
	tmpl *template.Template
}

func newLayout(format string) (*layout, error) {
	const op errors.Op = "logging.newLayout"
	tmpl, err := template.New("line").Option("missingkey=error").Parse(format)
	if err != nil {
		return nil, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgInvalidFormat)
	}
	// Unknown fields only fail at execution time, so probe once here.
	probe := Record{Time: "t", Name: "n", Level: "INFO", File: "f.go", Line: 1, Caller: "f.go:1", Message: "m"}
	if err = tmpl.Execute(io.Discard, probe); err != nil {
		return nil, configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgInvalidFormat)
	}
	return &layout{tmpl: tmpl}, nil
}

// record converts a decoded event into a Record.
func (l *layout) record(evt map[string]interface{}) Record {
	r := Record{
		Time:    fieldString(evt[zerolog.TimestampFieldName]),
		Name:    fieldString(evt[LoggerFieldName]),
		Level:   levelName(evt[zerolog.LevelFieldName]),
		Message: strings.ToValidUTF8(fieldString(evt[zerolog.MessageFieldName]), "\uFFFD"),
		File:    "???",
	}
	if caller := fieldString(evt[zerolog.CallerFieldName]); caller != emptyString {
		r.File, r.Line = splitCaller(caller)
		r.Caller = r.File + ":" + strconv.Itoa(r.Line)
	}
	return r
}

// prepare replaces the message with the rendered line. It is installed as the
// ConsoleWriter's FormatPrepare hook, so only the message part is printed and
// any remaining contextual fields follow it as key=value pairs.
func (l *layout) prepare(evt map[string]interface{}) error {
	var b strings.Builder
	if err := l.tmpl.Execute(&b, l.record(evt)); err != nil {
		return err
	}
	evt[zerolog.MessageFieldName] = b.String()
	return nil
}

// writer returns a plain-text ConsoleWriter that renders lines onto out.
func (l *layout) writer(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.MessageFieldName},
		FieldsExclude: []string{LoggerFieldName},
		FormatPrepare: l.prepare,
		FormatMessage: fieldString,
	}
}

func splitCaller(caller string) (string, int) {
	i := strings.LastIndexByte(caller, ':')
	if i < 0 {
		return filepath.Base(caller), 0
	}
	line, err := strconv.Atoi(caller[i+1:])
	if err != nil {
		return filepath.Base(caller), 0
	}
	return filepath.Base(caller[:i]), line
}

func fieldString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return emptyString
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// timestampHook stamps events with a preformatted time so every sink of a
// handle prints the same instant.
type timestampHook struct {
	now    func() time.Time
	layout string
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, h.now().Format(h.layout))
}
