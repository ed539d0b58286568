package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atikulmunna/logsift/internal/engine"
	"github.com/atikulmunna/logsift/internal/hub"
	"github.com/atikulmunna/logsift/internal/output"
	"github.com/atikulmunna/logsift/internal/report"
	"github.com/atikulmunna/logsift/internal/server"
	"github.com/atikulmunna/logsift/internal/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type watchFlags struct {
	runFlags
	serve    string
	debounce time.Duration
}

func newWatchCmd(a *app) *cobra.Command {
	var f watchFlags
	cmd := &cobra.Command{
		Use:   "watch INPUT",
		Short: "Re-run the filter whenever the input changes",
		Long: `Run the filter once, then watch INPUT and run it again after every burst of
changes. Each run truncates the output file and prints a fresh report.

With --serve the latest report is also available over HTTP at /api/report
and streamed to WebSocket clients at /ws.

Examples:
  logsift watch /var/log/app --user alice --group-by day
  logsift watch "logs/*.log" -m error -g hour --serve :8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(a, args[0])
			if err != nil {
				return err
			}
			renderer, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runWatch(cmd, a, opts, f, renderer)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.serve, "serve", "", "serve reports over HTTP on this address, e.g. :8080")
	cmd.Flags().DurationVar(&f.debounce, "debounce", 500*time.Millisecond, "quiet period before a burst of changes triggers a run")
	return cmd
}

func runWatch(cmd *cobra.Command, a *app, opts *engine.Options, f watchFlags, renderer output.Renderer) error {
	targets, err := watchTargets(opts.InputPath)
	if err != nil {
		return err
	}
	w, err := watcher.New(targets, a.log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.Ignore(opts.OutputPath)

	fmt.Fprintf(cmd.ErrOrStderr(), "logsift watching %d path(s):\n", len(w.Paths()))
	for _, p := range w.Paths() {
		fmt.Fprintf(cmd.ErrOrStderr(), "   • %s\n", p)
	}

	reports := make(chan report.Report)
	h := hub.New(reports, a.log)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		h.Start(ctx)
		return nil
	})
	g.Go(func() error {
		w.Start(ctx)
		return nil
	})
	if f.serve != "" {
		srv := server.New(h, f.serve, a.log)
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	batches := watcher.Debounce(ctx, w.Events, f.debounce)
	g.Go(func() error {
		defer close(reports)

		publish := func() {
			rep, err := a.parse(ctx, opts)
			if err != nil {
				if ctx.Err() == nil {
					a.fail(cmd.ErrOrStderr(), err)
				}
				return
			}
			if err := renderer.Render(rep); err != nil {
				a.log.Warn("render failed", "error", err)
			}
			select {
			case reports <- rep:
			case <-ctx.Done():
			}
		}

		publish()
		for batch := range batches {
			a.log.Info("inputs changed", "events", len(batch), "first", batch[0].Path)
			publish()
		}
		return nil
	})

	err = g.Wait()
	fmt.Fprintln(cmd.ErrOrStderr(), "logsift stopped watching")
	return err
}

// watchTargets lists the paths to watch for input: the file or directory
// itself, or for a glob the directories holding its current matches.
func watchTargets(input string) ([]string, error) {
	if _, err := os.Stat(input); err == nil {
		return []string{input}, nil
	}

	files, err := watcher.Resolve(input)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs, nil
}
