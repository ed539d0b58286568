package model

import (
	"errors"
	"testing"
)

func TestParseDimensionsCanonicalOrder(t *testing.T) {
	s, err := ParseDimensions("hour, Day ,USERNAME")
	if err != nil {
		t.Fatal(err)
	}

	got := s.Slice()
	want := []Dimension{ByUsername, ByDay, ByHour}
	if len(got) != len(want) {
		t.Fatalf("expected %d dimensions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if s.String() != "USERNAME,DAY,HOUR" {
		t.Errorf("unexpected string form %q", s.String())
	}
}

func TestParseDimensionsRejectsUnknown(t *testing.T) {
	_, err := ParseDimensions("year, week")
	if !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestDimensionSetDuplicates(t *testing.T) {
	s := NewDimensionSet(ByYear, ByYear, ByMonth)
	if s.Len() != 2 {
		t.Errorf("expected 2 members, got %d", s.Len())
	}
	if !s.Has(ByMonth) || s.Has(ByDay) {
		t.Errorf("unexpected membership: %s", s)
	}
}

func TestDimensionSource(t *testing.T) {
	if ByUsername.Source() != Username {
		t.Errorf("expected USERNAME source, got %s", ByUsername.Source())
	}
	for _, d := range []Dimension{ByYear, ByMonth, ByDay, ByHour} {
		if d.Source() != Date {
			t.Errorf("%s: expected DATE source, got %s", d, d.Source())
		}
		if d.Layout() == "" {
			t.Errorf("%s: expected a layout", d)
		}
	}
}

func TestFieldKindGroupName(t *testing.T) {
	want := []string{"username", "date", "message"}
	for i, k := range FieldKinds() {
		if k.GroupName() != want[i] {
			t.Errorf("%s: expected group name %q, got %q", k, want[i], k.GroupName())
		}
	}
}
