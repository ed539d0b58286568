package cmd

import (
	"errors"
	"strings"

	"github.com/atikulmunna/logsift/internal/config"
	"github.com/atikulmunna/logsift/internal/engine"
	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
)

// SuccessMessage acknowledges an accepted interactive answer.
const SuccessMessage = "The parameter was successfully set."

// Message maps an error to the sentence shown to the user. dateFormat is the
// configured format, quoted back when a date does not follow it.
func Message(err error, dateFormat string) string {
	var fe *engine.FileError
	switch {
	case err == nil:
		return SuccessMessage
	case errors.Is(err, engine.ErrDateFormat):
		return "Wrong date format. Dates must follow the pattern: " + dateFormat
	case errors.Is(err, engine.ErrDateRange):
		return "Date FROM must be earlier than date TO."
	case errors.Is(err, engine.ErrInputNotFound):
		return "Wrong input path. Please specify some file, directory or glob."
	case errors.Is(err, engine.ErrOutputIsDirectory):
		return "Output file cannot be a directory. Please, check current configuration."
	case errors.Is(err, engine.ErrOutputPath):
		return "Wrong output path: file cannot be created."
	case errors.Is(err, engine.ErrNoFilter):
		return "Wrong filter: at least one parameter should be specified."
	case errors.Is(err, engine.ErrNoGrouping):
		return "Wrong group by: at least one parameter should be specified."
	case errors.Is(err, model.ErrUnknownDimension):
		names := make([]string, 0, model.NumDimensions)
		for _, d := range model.Dimensions() {
			names = append(names, d.String())
		}
		return "Wrong group value. Values can be: " + strings.Join(names, ", ")
	case errors.Is(err, parser.ErrInvalidPattern), errors.Is(err, parser.ErrMissingGroup):
		return "Wrong pattern in config. See error log for details."
	case errors.Is(err, parser.ErrDateFormat):
		return "Wrong date format in config. See error log for details."
	case errors.Is(err, config.ErrConfig):
		return "An error occurred during configuration loading. See error log for details."
	case errors.As(err, &fe):
		return "An error occurred while processing " + fe.Path + ". See error log for details."
	default:
		return err.Error()
	}
}
