package group

import (
	"time"

	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
)

// Builder derives keys for a fixed set of dimensions.
type Builder struct {
	fields *parser.Fields
	dims   []model.Dimension
}

// NewBuilder returns a Builder for dims, evaluated in canonical order.
func NewBuilder(fields *parser.Fields, dims model.DimensionSet) *Builder {
	return &Builder{fields: fields, dims: dims.Slice()}
}

// Build derives a key from line. Dimensions whose pattern does not match, or
// whose date does not parse, are left out; the key may end up empty.
func (b *Builder) Build(line string) Key {
	var (
		key  Key
		date lazyDate
	)

	for _, d := range b.dims {
		if d.Source() == model.Username {
			if v, ok := b.fields.Value(model.Username, line); ok {
				key = key.With(d, v)
			}
			continue
		}

		t, ok := date.get(b.fields, line)
		if !ok {
			continue
		}
		key = key.With(d, parser.FormatDate(d.Layout(), t))
	}

	return key
}

// lazyDate extracts and parses a line's date at most once per Build.
type lazyDate struct {
	done bool
	ok   bool
	t    time.Time
}

func (l *lazyDate) get(fields *parser.Fields, line string) (time.Time, bool) {
	if l.done {
		return l.t, l.ok
	}
	l.done = true

	raw, ok := fields.Value(model.Date, line)
	if !ok {
		return l.t, false
	}
	t, err := fields.ParseDate(raw)
	if err != nil {
		return l.t, false
	}
	l.t, l.ok = t, true
	return l.t, true
}
