package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atikulmunna/logsift/internal/model"
	"github.com/vjeantet/jodaTime"
)

// Patterns holds the configured expression for each field kind.
type Patterns struct {
	Username string
	Date     string
	Message  string
	Syntax   string // SyntaxRegexp or SyntaxGrok
}

func (p Patterns) source(kind model.FieldKind) string {
	switch kind {
	case model.Username:
		return p.Username
	case model.Date:
		return p.Date
	default:
		return p.Message
	}
}

// ErrDateFormat means the configured date format is unusable.
var ErrDateFormat = errors.New("invalid date format")

// Fields is the compiled extraction configuration shared by filters and
// grouping. It is built once at startup and read-only afterwards.
type Fields struct {
	extractors [3]Extractor
	dateFormat string
	log        *slog.Logger
}

// NewFields compiles every pattern. dateFormat uses Joda/Java notation,
// e.g. "dd/MM/yyyy".
func NewFields(p Patterns, dateFormat string, logger *slog.Logger) (*Fields, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := CheckDateFormat(dateFormat); err != nil {
		return nil, err
	}

	f := &Fields{dateFormat: dateFormat, log: logger}
	for _, kind := range model.FieldKinds() {
		ex, err := Compile(kind, p.source(kind), p.Syntax)
		if err != nil {
			return nil, err
		}
		f.extractors[kind] = ex
	}
	return f, nil
}

// Extractor returns the compiled extractor for kind.
func (f *Fields) Extractor(kind model.FieldKind) Extractor {
	return f.extractors[kind]
}

// Value extracts kind from line. Defensive extraction errors are logged and
// the line is treated as carrying no value for that field.
func (f *Fields) Value(kind model.FieldKind, line string) (string, bool) {
	ex := f.Extractor(kind)
	if ex == nil {
		panic("parser: no compiled pattern for " + kind.String())
	}

	v, ok, err := ex.Extract(line)
	if err != nil {
		f.log.Warn("invalid configuration", "field", kind.String(), "error", err)
		return "", false
	}
	return v, ok
}

// DateFormat returns the configured Joda-style date format.
func (f *Fields) DateFormat() string {
	return f.dateFormat
}

// ParseDate parses s with the configured date format.
func (f *Fields) ParseDate(s string) (time.Time, error) {
	return ParseDate(f.dateFormat, s)
}

// CheckDateFormat verifies format can render a date and read it back.
func CheckDateFormat(format string) error {
	if strings.TrimSpace(format) == "" {
		return fmt.Errorf("%w: empty", ErrDateFormat)
	}
	ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)
	s, err := formatDate(format, ref)
	if err != nil {
		return err
	}
	if _, err := ParseDate(format, s); err != nil {
		return fmt.Errorf("%w %q: %v", ErrDateFormat, format, err)
	}
	return nil
}

// ParseDate parses s with a Joda-style format. A malformed format is an
// error, never a panic.
func ParseDate(format, s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w %q: %v", ErrDateFormat, format, r)
		}
	}()
	return jodaTime.Parse(format, s)
}

func formatDate(format string, t time.Time) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w %q: %v", ErrDateFormat, format, r)
		}
	}()
	return jodaTime.Format(format, t), nil
}

// FormatDate renders t with a Joda-style format.
func FormatDate(format string, t time.Time) string {
	return jodaTime.Format(format, t)
}
