// Package filter decides whether a log line satisfies the user's criteria.
package filter

import (
	"strings"

	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
)

// DateSeparator joins the lower and upper bound of a date criterion.
const DateSeparator = ";"

// DateRange encodes a date criterion from its two bounds.
func DateRange(from, to string) string {
	return from + DateSeparator + to
}

// Matcher compares an extracted field value with a user criterion.
type Matcher interface {
	Match(value, criterion string) bool
}

// UsernameMatcher requires exact equality.
type UsernameMatcher struct{}

func (UsernameMatcher) Match(value, criterion string) bool {
	return value == criterion
}

// MessageMatcher requires the criterion to occur anywhere in the message.
type MessageMatcher struct{}

func (MessageMatcher) Match(value, criterion string) bool {
	return strings.Contains(value, criterion)
}

// DateMatcher accepts dates strictly between the two bounds of a
// DateRange criterion. Anything that fails to split or parse does not match.
type DateMatcher struct {
	Format string // Joda-style, e.g. "dd/MM/yyyy"
}

func (m DateMatcher) Match(value, criterion string) bool {
	bounds := strings.Split(criterion, DateSeparator)
	if len(bounds) < 2 {
		return false
	}

	from, err := parser.ParseDate(m.Format, bounds[0])
	if err != nil {
		return false
	}
	to, err := parser.ParseDate(m.Format, bounds[1])
	if err != nil {
		return false
	}
	current, err := parser.ParseDate(m.Format, value)
	if err != nil {
		return false
	}

	return current.After(from) && current.Before(to)
}

// MatcherFor returns the comparison rule for a field kind.
func MatcherFor(kind model.FieldKind, dateFormat string) Matcher {
	switch kind {
	case model.Username:
		return UsernameMatcher{}
	case model.Date:
		return DateMatcher{Format: dateFormat}
	default:
		return MessageMatcher{}
	}
}

// Criteria maps a field kind to the raw value supplied by the user.
// An empty value registers the filter without constraining on it.
type Criteria map[model.FieldKind]string

// Active lists the kinds carrying a non-empty criterion, in kind order.
func (c Criteria) Active() []model.FieldKind {
	var kinds []model.FieldKind
	for _, k := range model.FieldKinds() {
		if c[k] != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

type rule struct {
	kind      model.FieldKind
	criterion string
	matcher   Matcher
}

// Set evaluates every active criterion against a line.
type Set struct {
	fields *parser.Fields
	rules  []rule
}

// NewSet binds criteria to the compiled field patterns.
func NewSet(fields *parser.Fields, criteria Criteria) *Set {
	s := &Set{fields: fields}
	for _, k := range criteria.Active() {
		s.rules = append(s.rules, rule{
			kind:      k,
			criterion: criteria[k],
			matcher:   MatcherFor(k, fields.DateFormat()),
		})
	}
	return s
}

// Accept reports whether the line passes every active criterion: the field
// must be extractable and its value must match.
func (s *Set) Accept(line string) bool {
	for _, r := range s.rules {
		v, ok := s.fields.Value(r.kind, line)
		if !ok || !r.matcher.Match(v, r.criterion) {
			return false
		}
	}
	return true
}
