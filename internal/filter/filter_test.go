package filter

import (
	"testing"

	"github.com/atikulmunna/logsift/internal/model"
	"github.com/atikulmunna/logsift/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const dateFormat = "dd/MM/yyyy"

func testFields(t testing.TB) *parser.Fields {
	t.Helper()
	f, err := parser.NewFields(parser.Patterns{
		Username: `\s\[(?<username>\w+)\]`,
		Date:     `^(?<date>[0-9]{2}/[0-9]{2}/[0-9]{4})\s`,
		Message:  `\[\w+\]:\s(?<message>.*)$`,
	}, dateFormat, nil)
	require.NoError(t, err)
	return f
}

func TestUsernameMatcherExact(t *testing.T) {
	m := UsernameMatcher{}
	assert.True(t, m.Match("alice", "alice"))
	assert.False(t, m.Match("alice", "ali"))
	assert.False(t, m.Match("alice", "Alice"))
}

func TestMessageMatcherSubstring(t *testing.T) {
	m := MessageMatcher{}
	assert.True(t, m.Match("build started", "started"))
	assert.True(t, m.Match("build started", "build started"))
	assert.False(t, m.Match("build started", "finished"))
}

func TestDateMatcherStrictBounds(t *testing.T) {
	m := DateMatcher{Format: dateFormat}
	criterion := DateRange("01/01/2020", "01/03/2020")

	assert.True(t, m.Match("01/02/2020", criterion))
	assert.False(t, m.Match("01/01/2020", criterion), "lower bound is exclusive")
	assert.False(t, m.Match("01/03/2020", criterion), "upper bound is exclusive")
	assert.False(t, m.Match("02/03/2020", criterion))
	assert.False(t, m.Match("31/12/2019", criterion))
}

func TestDateMatcherMalformed(t *testing.T) {
	m := DateMatcher{Format: dateFormat}

	assert.False(t, m.Match("01/02/2020", "01/01/2020"), "single bound")
	assert.False(t, m.Match("01/02/2020", "01/01/2020;"), "empty upper bound")
	assert.False(t, m.Match("01/02/2020", "yesterday;tomorrow"))
	assert.False(t, m.Match("Feb 1st", DateRange("01/01/2020", "01/03/2020")))
}

func TestCriteriaActive(t *testing.T) {
	c := Criteria{model.Message: "x", model.Username: "", model.Date: DateRange("a", "b")}
	assert.Equal(t, []model.FieldKind{model.Date, model.Message}, c.Active())
}

func TestSetAccept(t *testing.T) {
	f := testFields(t)
	line := "01/02/2020 [alice]: build started"

	cases := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"username match", Criteria{model.Username: "alice"}, true},
		{"username mismatch", Criteria{model.Username: "bob"}, false},
		{"empty username is a no-op", Criteria{model.Username: "", model.Message: "build"}, true},
		{"message mismatch", Criteria{model.Message: "deploy"}, false},
		{"date inside", Criteria{model.Date: DateRange("01/01/2020", "01/03/2020")}, true},
		{"date on bound", Criteria{model.Date: DateRange("01/02/2020", "01/03/2020")}, false},
		{"all pass", Criteria{
			model.Username: "alice",
			model.Date:     DateRange("01/01/2020", "01/03/2020"),
			model.Message:  "started",
		}, true},
		{"one fails", Criteria{model.Username: "alice", model.Message: "stopped"}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NewSet(f, c.criteria).Accept(line))
		})
	}
}

func TestSetRejectsLineWithoutField(t *testing.T) {
	f := testFields(t)
	s := NewSet(f, Criteria{model.Username: "alice"})
	assert.False(t, s.Accept("\tat com.example.Main.run(Main.java:42)"))
}

func TestEmptyCriteriaAcceptEverything(t *testing.T) {
	f := testFields(t)

	rapid.Check(t, func(t *rapid.T) {
		line := rapid.String().Draw(t, "line")
		criteria := Criteria{}
		for _, k := range model.FieldKinds() {
			if rapid.Bool().Draw(t, "register-"+k.String()) {
				criteria[k] = ""
			}
		}
		if !NewSet(f, criteria).Accept(line) {
			t.Fatalf("line %q rejected by empty criteria %v", line, criteria)
		}
	})
}
