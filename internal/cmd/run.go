package cmd

import (
	"github.com/atikulmunna/logsift/internal/engine"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/spf13/cobra"
)

// runFlags are the per-run options shared by run and watch.
type runFlags struct {
	out     string
	user    string
	from    string
	to      string
	message string
	groupBy string
	workers int
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.out, "out", "o", "", "file the matching lines are written to (default: path.log.output)")
	fs.StringVarP(&f.user, "user", "u", "", "keep lines whose username equals this value")
	fs.StringVar(&f.from, "from", "", "keep lines dated strictly after this date (format.date)")
	fs.StringVar(&f.to, "to", "", "keep lines dated strictly before this date (format.date)")
	fs.StringVarP(&f.message, "message", "m", "", "keep lines whose message contains this text")
	fs.StringVarP(&f.groupBy, "group-by", "g", "", "comma-separated groupings: username, year, month, day, hour")
	fs.IntVarP(&f.workers, "workers", "w", 1, "files scanned in parallel; output order is unchanged")
}

// options validates the flags into run options for input.
func (f *runFlags) options(a *app, input string) (*engine.Options, error) {
	o := engine.NewOptions()
	if err := o.SetInputPath(input); err != nil {
		return nil, err
	}

	out := f.out
	if out == "" {
		out = a.cfg.OutputPath
	}
	if err := o.SetOutputPath(out); err != nil {
		return nil, err
	}

	if f.user != "" {
		o.SetUsernameFilter(f.user)
	}
	if f.from != "" || f.to != "" {
		if err := o.SetDateFilter(f.from, f.to, a.cfg.DateFormat); err != nil {
			return nil, err
		}
	}
	if f.message != "" {
		o.SetMessageFilter(f.message)
	}

	dims, err := model.ParseDimensions(f.groupBy)
	if err != nil {
		return nil, err
	}
	for _, d := range dims.Slice() {
		o.AddGrouping(d)
	}
	o.Workers = f.workers

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run INPUT",
		Short: "Filter log files once and print the grouped counts",
		Long: `Scan INPUT (a file, a directory or a glob), write every line that passes
all filters to the output file and print the number of matching lines per group.

At least one filter and one grouping are required.

Examples:
  logsift run /var/log/app --user alice --group-by day
  logsift run "logs/**/*.log.gz" --from 01/01/2020 --to 01/03/2020 -g year,month
  logsift run app.log -m timeout -g username,hour --format json`,
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

			rep, err := a.parse(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return renderer.Render(rep)
		},
	}
	f.register(cmd)
	return cmd
}
