package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atikulmunna/logsift/internal/config"
	"github.com/atikulmunna/logsift/internal/engine"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/output"
	"github.com/atikulmunna/logsift/internal/parser"
	"github.com/atikulmunna/logsift/internal/report"
	"github.com/spf13/cobra"
)

// app carries the persistent flags and everything built from the config
// file before a subcommand runs.
type app struct {
	cfgFile  string
	format   string
	logLevel string

	cfg    *config.Config
	fields *parser.Fields
	log    *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "logsift",
		Short: "logsift filters log files and counts what matched",
		Long: `logsift scans a log file, a directory of log files or a glob, keeps the
lines that match a username, a date range and/or a message fragment, writes
them to an output file and prints how many matched per group.

Fields are extracted with the named-group patterns of the config file,
which is created with defaults on first use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", config.DefaultPath, "config file (.properties, .yaml, .json, ...)")
	root.PersistentFlags().StringVarP(&a.format, "format", "f", "text", "report format: text, json, yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	root.AddCommand(newRunCmd(a), newWatchCmd(a), newPromptCmd(a))
	return root
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		a.fail(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(errOut io.Writer) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()}))
	a.log.Debug("configuration loaded", "file", cfg.File, "syntax", cfg.PatternSyntax, "date_format", cfg.DateFormat)

	fields, err := cfg.Fields(a.log)
	if err != nil {
		return err
	}
	a.fields = fields
	for _, k := range model.FieldKinds() {
		ex := fields.Extractor(k)
		a.log.Debug("pattern compiled", "field", ex.Kind().String(), "extractor", fmt.Sprintf("%T", ex))
	}
	return nil
}

func (a *app) logger() *slog.Logger {
	if a.log == nil {
		return slog.Default()
	}
	return a.log
}

func (a *app) dateFormat() string {
	if a.cfg == nil {
		return config.Default().DateFormat
	}
	return a.cfg.DateFormat
}

// fail logs err in full and prints its user-facing message.
func (a *app) fail(w io.Writer, err error) {
	a.logger().Error("logsift failed", "error", err)
	fmt.Fprintln(w, Message(err, a.dateFormat()))
}

func (a *app) renderer(w io.Writer) (output.Renderer, error) {
	return output.New(a.format, w)
}

// parse runs one pass over opts and wraps the statistics in a report.
func (a *app) parse(ctx context.Context, opts *engine.Options) (report.Report, error) {
	started := time.Now()
	snap, err := engine.New(a.fields, a.logger()).Parse(ctx, *opts)
	if err != nil {
		return report.Report{}, err
	}
	return report.New(snap, opts.Groups, report.Run{
		Input:    opts.InputPath,
		Started:  started,
		Duration: time.Since(started),
	}), nil
}
