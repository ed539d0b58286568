// Package group derives the composite key a matching line is counted under.
package group

import (
	"strings"

	"github.com/atikulmunna/logsift/internal/model"
)

// Key maps grouping dimensions to the values derived from one line.
// It is a comparable value: two keys are == iff they carry the same
// dimensions with the same values, so Key can index a Go map directly.
type Key struct {
	dims   model.DimensionSet
	values [model.NumDimensions]string
}

// With returns a copy of k with d set to value.
func (k Key) With(d model.Dimension, value string) Key {
	if d < 0 || int(d) >= model.NumDimensions {
		return k
	}
	k.dims = k.dims.Add(d)
	k.values[d] = value
	return k
}

// Value returns the value for d, if present.
func (k Key) Value(d model.Dimension) (string, bool) {
	if !k.dims.Has(d) {
		return "", false
	}
	return k.values[d], true
}

// Dimensions returns the dimensions present in the key.
func (k Key) Dimensions() model.DimensionSet {
	return k.dims
}

// IsEmpty reports whether no dimension contributed a value.
func (k Key) IsEmpty() bool {
	return k.dims.IsEmpty()
}

// String renders the key as DIM=value pairs in canonical order.
func (k Key) String() string {
	var b strings.Builder
	for i, d := range k.dims.Slice() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.String())
		b.WriteByte('=')
		b.WriteString(k.values[d])
	}
	return b.String()
}

// Less orders keys by their dimension values in canonical order, keys with
// fewer leading dimensions first. It gives reports a stable row order.
func (k Key) Less(other Key) bool {
	for _, d := range model.Dimensions() {
		a, aok := k.Value(d)
		b, bok := other.Value(d)
		switch {
		case aok != bok:
			return !aok
		case a != b:
			return a < b
		}
	}
	return false
}
