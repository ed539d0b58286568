package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/atikulmunna/logsift/internal/filter"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
	"github.com/atikulmunna/logsift/internal/watcher"
)

// Options is the configuration of one parse run. It is filled in while
// collecting input and treated as read-only once parsing starts.
type Options struct {
	InputPath  string
	OutputPath string
	Filters    filter.Criteria
	Groups     model.DimensionSet

	// Workers > 1 scans files in parallel. Output order and statistics are
	// identical to a sequential run.
	Workers int
}

// NewOptions returns empty options ready to be populated.
func NewOptions() *Options {
	return &Options{Filters: filter.Criteria{}}
}

// SetInputPath accepts a file, a directory or a glob that matches something.
func (o *Options) SetInputPath(path string) error {
	if _, err := watcher.Resolve(path); err != nil {
		return err
	}
	o.InputPath = path
	return nil
}

// SetOutputPath accepts a file path, creating parent directories and an
// empty file when it does not exist yet.
func (o *Options) SetOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrOutputPath)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%w: %s", ErrOutputIsDirectory, path)
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrOutputPath, err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOutputPath, err)
		}
		f.Close()
	default:
		return fmt.Errorf("%w: %v", ErrOutputPath, err)
	}

	o.OutputPath = path
	return nil
}

func (o *Options) setFilter(kind model.FieldKind, value string) {
	if o.Filters == nil {
		o.Filters = filter.Criteria{}
	}
	o.Filters[kind] = value
}

// SetUsernameFilter keeps lines whose username equals name.
func (o *Options) SetUsernameFilter(name string) {
	o.setFilter(model.Username, name)
}

// SetMessageFilter keeps lines whose message contains text.
func (o *Options) SetMessageFilter(text string) {
	o.setFilter(model.Message, text)
}

// SetDateFilter keeps lines dated strictly between from and to. Both must
// parse with format and from must not be later than to.
func (o *Options) SetDateFilter(from, to, format string) error {
	lo, err := parser.ParseDate(format, from)
	if err != nil {
		return fmt.Errorf("%w (%s): %q", ErrDateFormat, format, from)
	}
	hi, err := parser.ParseDate(format, to)
	if err != nil {
		return fmt.Errorf("%w (%s): %q", ErrDateFormat, format, to)
	}
	if lo.After(hi) {
		return fmt.Errorf("%w: %s > %s", ErrDateRange, from, to)
	}

	o.setFilter(model.Date, filter.DateRange(from, to))
	return nil
}

// AddGrouping adds a grouping dimension.
func (o *Options) AddGrouping(d model.Dimension) {
	o.Groups = o.Groups.Add(d)
}

// Validate checks the options describe a meaningful run. Validity is derived
// from the options themselves: at least one non-empty filter and one grouping.
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("%w: no input path", ErrInputNotFound)
	}
	if o.OutputPath == "" {
		return fmt.Errorf("%w: no output path", ErrOutputPath)
	}
	if len(o.Filters.Active()) == 0 {
		return ErrNoFilter
	}
	if o.Groups.IsEmpty() {
		return ErrNoGrouping
	}
	return nil
}
