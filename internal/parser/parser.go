package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/atikulmunna/logsift/internal/model"
	"github.com/vjeantet/grok"
)

// Extractor pulls the value of one field kind out of a raw log line.
type Extractor interface {
	Kind() model.FieldKind
	// Extract returns the named group's text. A line the pattern does not
	// match yields ok=false and a nil error.
	Extract(line string) (value string, ok bool, err error)
}

// Pattern syntaxes understood by Compile.
const (
	SyntaxRegexp = "regexp"
	SyntaxGrok   = "grok"
)

var (
	// ErrInvalidPattern means a configured expression does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrMissingGroup means an expression compiles but lacks the field's named group.
	ErrMissingGroup = errors.New("pattern lacks required named group")
	// ErrGroupAbsent means a pattern matched a line without capturing its named group.
	ErrGroupAbsent = errors.New("named group absent from match")
)

// PatternError reports a configured pattern that cannot serve its field kind.
type PatternError struct {
	Kind    model.FieldKind
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s pattern %q: %v", e.Kind, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Compile builds the extractor for kind from a pattern source in the given syntax.
// An empty syntax means SyntaxRegexp.
func Compile(kind model.FieldKind, source, syntax string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(syntax)) {
	case "", SyntaxRegexp:
		return NewRegexExtractor(kind, source)
	case SyntaxGrok:
		return NewGrokExtractor(kind, source)
	default:
		return nil, &PatternError{Kind: kind, Pattern: source, Err: fmt.Errorf("%w: unknown syntax %q", ErrInvalidPattern, syntax)}
	}
}

// ---------------------------------------------------------------------------
// Regex Extractor
// ---------------------------------------------------------------------------

// RegexExtractor applies a regular expression with a named capture group
// called after the field kind, e.g. (?<username>\w+).
type RegexExtractor struct {
	kind  model.FieldKind
	re    *regexp.Regexp
	group int
}

func NewRegexExtractor(kind model.FieldKind, pattern string) (*RegexExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Kind: kind, Pattern: pattern, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
	}

	group := re.SubexpIndex(kind.GroupName())
	if group < 0 {
		return nil, &PatternError{Kind: kind, Pattern: pattern, Err: fmt.Errorf("%w %q", ErrMissingGroup, kind.GroupName())}
	}

	return &RegexExtractor{kind: kind, re: re, group: group}, nil
}

func (e *RegexExtractor) Kind() model.FieldKind { return e.kind }

func (e *RegexExtractor) Extract(line string) (string, bool, error) {
	if e.re == nil {
		panic("parser: Extract called on an uncompiled " + e.kind.String() + " pattern")
	}

	loc := e.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", false, nil
	}

	start, end := loc[2*e.group], loc[2*e.group+1]
	if start < 0 {
		return "", false, fmt.Errorf("%s: %w %q", e.kind, ErrGroupAbsent, e.kind.GroupName())
	}
	return line[start:end], true, nil
}

// ---------------------------------------------------------------------------
// Grok Extractor
// ---------------------------------------------------------------------------

// GrokExtractor expands grok macros such as %{WORD:username} before matching.
// An empty capture is reported like an absent group: grok cannot tell the two apart.
type GrokExtractor struct {
	kind model.FieldKind
	g    *grok.Grok
	expr string
}

func NewGrokExtractor(kind model.FieldKind, expr string) (*GrokExtractor, error) {
	// Groups that did not take part in a match come back as "" unless they
	// are removed, which would make them indistinguishable from real values.
	g, err := grok.NewWithConfig(&grok.Config{NamedCapturesOnly: true, RemoveEmptyValues: true})
	if err != nil {
		return nil, fmt.Errorf("grok init: %w", err)
	}

	// Parsing an empty line compiles and caches the expression.
	if _, err := g.Parse(expr, ""); err != nil {
		return nil, &PatternError{Kind: kind, Pattern: expr, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
	}
	if !declaresGroup(expr, kind.GroupName()) {
		return nil, &PatternError{Kind: kind, Pattern: expr, Err: fmt.Errorf("%w %q", ErrMissingGroup, kind.GroupName())}
	}

	return &GrokExtractor{kind: kind, g: g, expr: expr}, nil
}

func (e *GrokExtractor) Kind() model.FieldKind { return e.kind }

func (e *GrokExtractor) Extract(line string) (string, bool, error) {
	if e.g == nil {
		panic("parser: Extract called on an uncompiled " + e.kind.String() + " pattern")
	}

	values, err := e.g.Parse(e.expr, line)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", e.kind, err)
	}
	v, ok := values[e.kind.GroupName()]
	if !ok {
		// Empty captures were removed, so an empty map may still be a match.
		matched, err := e.g.Match(e.expr, line)
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", e.kind, err)
		}
		if !matched {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w %q", e.kind, ErrGroupAbsent, e.kind.GroupName())
	}
	return v, true, nil
}

// declaresGroup reports whether a grok expression binds name, either through a
// semantic macro (%{WORD:name}, %{INT:name:int}) or a plain named group.
func declaresGroup(expr, name string) bool {
	for _, form := range []string{":" + name + "}", ":" + name + ":", "(?P<" + name + ">", "(?<" + name + ">"} {
		if strings.Contains(expr, form) {
			return true
		}
	}
	return false
}
