// Package engine runs the file-walk, filter, group and aggregate pipeline.
package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atikulmunna/logsift/internal/aggregator"
	"github.com/atikulmunna/logsift/internal/filter"
	"github.com/atikulmunna/logsift/internal/group"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
	"github.com/atikulmunna/logsift/internal/watcher"
	"golang.org/x/sync/errgroup"
)

const readBufferSize = 64 * 1024

// Engine parses log files with a fixed set of compiled field patterns.
type Engine struct {
	fields *parser.Fields
	log    *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default.
func New(fields *parser.Fields, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fields: fields, log: logger}
}

// Parse scans every file under opts.InputPath in order, writes each line
// that passes all filters to opts.OutputPath and returns the statistics.
//
// The output file is truncated once before any input is opened. Any I/O
// failure, or cancellation of ctx between files, aborts the run and no
// statistics are returned.
func (e *Engine) Parse(ctx context.Context, opts Options) (aggregator.Snapshot, error) {
	files, err := watcher.Resolve(opts.InputPath)
	if err != nil {
		return aggregator.Snapshot{}, err
	}

	out, err := openSink(opts.OutputPath)
	if err != nil {
		return aggregator.Snapshot{}, err
	}
	defer out.Close()

	files = e.skipSink(files, out)
	e.log.Info("parse started",
		"input", opts.InputPath,
		"files", len(files),
		"filters", len(opts.Filters.Active()),
		"groups", opts.Groups.String(),
	)

	p := &pipeline{
		filters: filter.NewSet(e.fields, opts.Filters),
		keys:    group.NewBuilder(e.fields, opts.Groups),
	}
	bw := bufio.NewWriter(out)
	dst := &sink{w: bw, path: opts.OutputPath}

	var agg *aggregator.Aggregator
	if opts.Workers > 1 && len(files) > 1 {
		agg, err = e.scanParallel(ctx, files, p, dst, opts.Workers)
	} else {
		agg, err = e.scanSequential(ctx, files, p, dst)
	}
	if err != nil {
		return aggregator.Snapshot{}, err
	}

	if err := bw.Flush(); err != nil {
		return aggregator.Snapshot{}, &FileError{Op: "write", Path: opts.OutputPath, Err: err}
	}
	if err := out.Close(); err != nil {
		return aggregator.Snapshot{}, &FileError{Op: "write", Path: opts.OutputPath, Err: err}
	}

	snap := agg.Snapshot()
	e.log.Info("parse completed", "matched", snap.Total.String(), "buckets", len(snap.Counts))
	return snap, nil
}

// openSink truncates the output file so a previous run never leaks into this one.
func openSink(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOutputPath)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsDirectory, path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &FileError{Op: "truncate", Path: path, Err: err}
	}
	return f, nil
}

// skipSink drops the output file from the inputs when it lives inside the
// scanned directory; reading it while appending to it would never end.
func (e *Engine) skipSink(files []string, out *os.File) []string {
	outInfo, err := out.Stat()
	if err != nil {
		return files
	}

	kept := files[:0:0]
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && os.SameFile(info, outInfo) {
			e.log.Info("skipping output file found among inputs", "path", f)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func (e *Engine) scanSequential(ctx context.Context, files []string, p *pipeline, s *sink) (*aggregator.Aggregator, error) {
	agg := aggregator.New()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse aborted: %w", err)
		}
		if err := e.scanFile(path, p, agg, s); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// scanParallel scans files concurrently into per-file buffers and partial
// aggregators, then writes the buffers in file order and sums the partials.
func (e *Engine) scanParallel(ctx context.Context, files []string, p *pipeline, s *sink, workers int) (*aggregator.Aggregator, error) {
	type partial struct {
		buf bytes.Buffer
		agg *aggregator.Aggregator
	}
	parts := make([]partial, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("parse aborted: %w", err)
			}
			parts[i].agg = aggregator.New()
			return e.scanFile(path, p, parts[i].agg, &sink{w: &parts[i].buf, path: s.path})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := aggregator.New()
	for i := range parts {
		if _, err := s.w.Write(parts[i].buf.Bytes()); err != nil {
			return nil, &FileError{Op: "write", Path: s.path, Err: err}
		}
		agg.Merge(parts[i].agg)
	}
	return agg, nil
}

func (e *Engine) scanFile(path string, p *pipeline, agg *aggregator.Aggregator, s *sink) error {
	rc, err := watcher.Open(path)
	if err != nil {
		return &FileError{Op: "open", Path: path, Err: err}
	}
	defer rc.Close()

	e.log.Debug("scanning file", "path", path)

	r := bufio.NewReaderSize(rc, readBufferSize)
	for n := 1; ; n++ {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			raw := model.RawLine{Text: trimEOL(line), Source: path, Number: n}
			if werr := e.process(p, raw, agg, s); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &FileError{Op: "read", Path: path, Err: err}
		}
	}
}

// pipeline holds the read-only per-run evaluators; it is shared by workers.
type pipeline struct {
	filters *filter.Set
	keys    *group.Builder
}

func (e *Engine) process(p *pipeline, raw model.RawLine, agg *aggregator.Aggregator, s *sink) error {
	if !p.filters.Accept(raw.Text) {
		return nil
	}
	key := p.keys.Build(raw.Text)
	if key.IsEmpty() {
		e.log.Debug("line matched without a group value", "source", raw.Source, "line", raw.Number)
	}
	agg.Record(key)
	return s.writeLine(raw.Text)
}

type sink struct {
	w    io.Writer
	path string
}

func (s *sink) writeLine(line string) error {
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return &FileError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
