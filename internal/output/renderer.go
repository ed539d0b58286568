package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atikulmunna/logsift/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Renderer writes reports to an output stream.
type Renderer interface {
	Render(r report.Report) error
}

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "yaml"}

// New returns the renderer for format, writing to w.
func New(format string, w io.Writer) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	case "yaml", "yml":
		return NewYAMLRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (possible values: %s)", format, strings.Join(Formats, ", "))
	}
}

// ---------------------------------------------------------------------------
// Text Renderer (results table)
// ---------------------------------------------------------------------------

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Padding(0, 1) // cyan
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleCount  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Padding(0, 1).Align(lipgloss.Right) // yellow
	styleBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))                                      // gray
	styleTotal  = lipgloss.NewStyle().Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

const missingValue = "-"

// TextRenderer prints the total followed by a table with one column per
// grouping dimension and a trailing COUNT column.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes a styled table to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(rep report.Report) error {
	if _, err := fmt.Fprintln(r.w, styleTotal.Render("Total records filtered: "+rep.Total)); err != nil {
		return err
	}
	if len(rep.Rows) == 0 {
		_, err := fmt.Fprintln(r.w, styleMuted.Render("no groups"))
		return err
	}

	countCol := len(rep.Dimensions)
	headers := append(append([]string{}, rep.Dimensions...), "COUNT")

	rows := make([][]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		rows = append(rows, append(row.Cells(missingValue), row.Count))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == countCol:
				return styleCount
			default:
				return styleCell
			}
		})

	_, err := fmt.Fprintln(r.w, t.Render())
	return err
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each report as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(rep report.Report) error {
	return r.enc.Encode(rep)
}

// ---------------------------------------------------------------------------
// YAML Renderer
// ---------------------------------------------------------------------------

// YAMLRenderer prints each report as its own YAML document.
type YAMLRenderer struct {
	w io.Writer
}

// NewYAMLRenderer returns a Renderer that writes YAML documents to w.
func NewYAMLRenderer(w io.Writer) *YAMLRenderer {
	return &YAMLRenderer{w: w}
}

func (r *YAMLRenderer) Render(rep report.Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := io.WriteString(r.w, "---\n"); err != nil {
		return err
	}
	_, err = r.w.Write(data)
	return err
}
