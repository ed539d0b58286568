package engine

import (
	"errors"
	"fmt"

	"github.com/atikulmunna/logsift/internal/watcher"
)

var (
	// ErrInputNotFound is returned when the input path resolves to nothing.
	ErrInputNotFound = watcher.ErrInputNotFound

	ErrOutputIsDirectory = errors.New("output path is a directory")
	ErrOutputPath        = errors.New("output file cannot be created")
	ErrNoFilter          = errors.New("no filter specified")
	ErrNoGrouping        = errors.New("no grouping specified")
	ErrDateFormat        = errors.New("date does not match the configured format")
	ErrDateRange         = errors.New("date FROM is later than date TO")
)

// FileError reports an I/O failure that aborted a run.
type FileError struct {
	Op   string // open, read, write, truncate
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
