package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atikulmunna/logsift/internal/engine"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/spf13/cobra"
)

const startingMessage = `Tool for logs analysis.
Please, double-check configuration before starting.
Other options must be specified by user input.
`

func newPromptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Ask for the input path, filters and groupings interactively",
		Long: `Ask for every run option on the terminal, then filter and print the report.
Matching lines are written to path.log.output from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &prompter{
				app: a,
				in:  bufio.NewScanner(cmd.InOrStdin()),
				out: cmd.OutOrStdout(),
			}
			return p.run(cmd.Context())
		},
	}
}

// prompter drives one interactive session. Every answer is validated
// immediately and asked again until it is accepted.
type prompter struct {
	app *app
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *prompter) ask(question string) (string, error) {
	p.say("%s", question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", fmt.Errorf("read answer: %w", io.ErrUnexpectedEOF)
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// result prints the outcome of setting a parameter and reports whether it was accepted.
func (p *prompter) result(err error) bool {
	p.say("%s", Message(err, p.app.dateFormat()))
	return err == nil
}

func (p *prompter) run(ctx context.Context) error {
	opts := engine.NewOptions()
	if err := opts.SetOutputPath(p.app.cfg.OutputPath); err != nil {
		return err
	}
	renderer, err := p.app.renderer(p.out)
	if err != nil {
		return err
	}

	p.say("%s", startingMessage)

	if err := p.inputPath(opts); err != nil {
		return err
	}
	for {
		if err := p.usernameFilter(opts); err != nil {
			return err
		}
		if err := p.dateFilter(opts); err != nil {
			return err
		}
		if err := p.messageFilter(opts); err != nil {
			return err
		}
		if len(opts.Filters.Active()) > 0 {
			break
		}
		p.result(engine.ErrNoFilter)
	}
	if err := p.groupBy(opts); err != nil {
		return err
	}

	p.app.log.Info("analysis started with user defined parameters")
	rep, err := p.app.parse(ctx, opts)
	if err != nil {
		return err
	}
	p.say("")
	return renderer.Render(rep)
}

func (p *prompter) inputPath(opts *engine.Options) error {
	for {
		line, err := p.ask("Specify a path to log files for analysis (file, directory or glob):")
		if err != nil {
			return err
		}
		if p.result(opts.SetInputPath(line)) {
			return nil
		}
	}
}

func (p *prompter) usernameFilter(opts *engine.Options) error {
	line, err := p.ask("Specify USERNAME filter. Leave line empty to SKIP filter:")
	if err != nil || line == "" {
		return err
	}
	opts.SetUsernameFilter(line)
	p.result(nil)
	return nil
}

func (p *prompter) dateFilter(opts *engine.Options) error {
	for {
		p.say("Specify DATE filter (%s). Leave line empty to SKIP filter,", p.app.dateFormat())
		from, err := p.ask("Date FROM:")
		if err != nil || from == "" {
			return err
		}
		to, err := p.ask("Date TO:")
		if err != nil {
			return err
		}
		if p.result(opts.SetDateFilter(from, to, p.app.dateFormat())) {
			return nil
		}
	}
}

func (p *prompter) messageFilter(opts *engine.Options) error {
	line, err := p.ask("Specify MESSAGE filter. Leave line empty to SKIP filter:")
	if err != nil || line == "" {
		return err
	}
	opts.SetMessageFilter(line)
	p.result(nil)
	return nil
}

func (p *prompter) groupBy(opts *engine.Options) error {
	names := make([]string, 0, model.NumDimensions)
	for _, d := range model.Dimensions() {
		names = append(names, d.String())
	}
	question := "Specify conditions for grouping. Several conditions can be separated by commas. " +
		"Example, YEAR, DAY. Case insensitive.\nPossible values: " + strings.Join(names, " ")

	for {
		line, err := p.ask(question)
		if err != nil {
			return err
		}
		dims, err := model.ParseDimensions(line)
		if err == nil && dims.IsEmpty() {
			err = engine.ErrNoGrouping
		}
		if !p.result(err) {
			continue
		}
		for _, d := range dims.Slice() {
			opts.AddGrouping(d)
		}
		return nil
	}
}
