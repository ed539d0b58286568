package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDimension means a grouping name matches no dimension.
var ErrUnknownDimension = errors.New("unknown grouping")

// Dimension is an axis statistics can be grouped by.
// Declaration order is the canonical reporting order.
type Dimension int

const (
	ByUsername Dimension = iota
	ByYear
	ByMonth
	ByDay
	ByHour

	numDimensions
)

// NumDimensions is the number of grouping dimensions.
const NumDimensions = int(numDimensions)

// GroupSeparator splits a list of dimension names.
const GroupSeparator = ","

var dimensionNames = [...]string{"USERNAME", "YEAR", "MONTH", "DAY", "HOUR"}

// Joda-style layouts the time dimensions reduce a date to.
var dimensionLayouts = [...]string{"", "yyyy", "MMM", "MM/dd/yyyy", "hh a"}

// Dimensions returns every dimension in canonical order.
func Dimensions() []Dimension {
	return []Dimension{ByUsername, ByYear, ByMonth, ByDay, ByHour}
}

func (d Dimension) String() string {
	if !d.valid() {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

func (d Dimension) valid() bool {
	return d >= 0 && d < numDimensions
}

// Source is the field kind the dimension is extracted from.
func (d Dimension) Source() FieldKind {
	if d == ByUsername {
		return Username
	}
	return Date
}

// Layout is the coarser date format for time dimensions; empty for ByUsername.
func (d Dimension) Layout() string {
	if !d.valid() {
		return ""
	}
	return dimensionLayouts[d]
}

// ParseDimension resolves a case-insensitive dimension name.
func ParseDimension(s string) (Dimension, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (possible values: %s)", ErrUnknownDimension, s, strings.Join(dimensionNames[:], ", "))
}

// DimensionSet is a set of dimensions that always iterates in canonical order.
type DimensionSet uint8

// NewDimensionSet builds a set from the given dimensions.
func NewDimensionSet(dims ...Dimension) DimensionSet {
	var s DimensionSet
	for _, d := range dims {
		s = s.Add(d)
	}
	return s
}

// ParseDimensions parses a comma-separated list such as "year, day".
// Blank items are ignored.
func ParseDimensions(list string) (DimensionSet, error) {
	var s DimensionSet
	for _, item := range strings.Split(list, GroupSeparator) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		d, err := ParseDimension(item)
		if err != nil {
			return 0, err
		}
		s = s.Add(d)
	}
	return s, nil
}

// Add returns the set with d included.
func (s DimensionSet) Add(d Dimension) DimensionSet {
	if !d.valid() {
		return s
	}
	return s | 1<<uint(d)
}

// Has reports whether d is in the set.
func (s DimensionSet) Has(d Dimension) bool {
	return d.valid() && s&(1<<uint(d)) != 0
}

// Len returns the number of dimensions in the set.
func (s DimensionSet) Len() int {
	n := 0
	for _, d := range Dimensions() {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set holds no dimension.
func (s DimensionSet) IsEmpty() bool {
	return s == 0
}

// Slice lists the set's members in canonical order.
func (s DimensionSet) Slice() []Dimension {
	out := make([]Dimension, 0, NumDimensions)
	for _, d := range Dimensions() {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DimensionSet) String() string {
	names := make([]string, 0, NumDimensions)
	for _, d := range s.Slice() {
		names = append(names, d.String())
	}
	return strings.Join(names, GroupSeparator)
}
