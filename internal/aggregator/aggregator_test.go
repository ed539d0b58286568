package aggregator

import (
	"math/big"
	"testing"

	"github.com/atikulmunna/logsift/internal/group"
	"github.com/atikulmunna/logsift/internal/model"
)

func userKey(name string) group.Key {
	return group.Key{}.With(model.ByUsername, name)
}

func TestRecordCounts(t *testing.T) {
	agg := New()

	agg.Record(userKey("alice"))
	agg.Record(userKey("alice"))
	agg.Record(userKey("bob"))

	snap := agg.Snapshot()
	if snap.Total.Int64() != 3 {
		t.Errorf("expected total 3, got %s", snap.Total)
	}
	if got := snap.Count(userKey("alice")).Int64(); got != 2 {
		t.Errorf("expected 2 for alice, got %d", got)
	}
	if got := snap.Count(userKey("bob")).Int64(); got != 1 {
		t.Errorf("expected 1 for bob, got %d", got)
	}
	if got := snap.Count(userKey("carol")).Int64(); got != 0 {
		t.Errorf("expected 0 for unknown key, got %d", got)
	}
}

func TestEmptyKeyCountsTowardTotalOnly(t *testing.T) {
	agg := New()

	agg.Record(group.Key{})
	agg.Record(userKey("alice"))

	snap := agg.Snapshot()
	if snap.Total.Int64() != 2 {
		t.Errorf("expected total 2, got %s", snap.Total)
	}
	if len(snap.Counts) != 1 {
		t.Errorf("expected a single bucket, got %d", len(snap.Counts))
	}
	if snap.Grouped().Cmp(snap.Total) > 0 {
		t.Errorf("grouped %s exceeds total %s", snap.Grouped(), snap.Total)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := New()
	agg.Record(userKey("alice"))

	snap := agg.Snapshot()
	agg.Record(userKey("alice"))

	if snap.Total.Int64() != 1 {
		t.Errorf("snapshot total changed to %s", snap.Total)
	}
	if snap.Count(userKey("alice")).Int64() != 1 {
		t.Errorf("snapshot bucket changed")
	}
}

func TestMergeSumsIdenticalKeys(t *testing.T) {
	a, b := New(), New()
	a.Record(userKey("alice"))
	a.Record(group.Key{})
	b.Record(userKey("alice"))
	b.Record(userKey("bob"))

	a.Merge(b)
	snap := a.Snapshot()

	if snap.Total.Int64() != 4 {
		t.Errorf("expected total 4, got %s", snap.Total)
	}
	if snap.Count(userKey("alice")).Int64() != 2 {
		t.Errorf("expected merged alice bucket of 2")
	}

	// Merging must not alias b's counters.
	b.Record(userKey("bob"))
	if a.Snapshot().Count(userKey("bob")).Int64() != 1 {
		t.Errorf("merge aliased the source bucket")
	}
}

func TestCountsBeyondInt64(t *testing.T) {
	agg := New()
	agg.total.SetUint64(^uint64(0))
	agg.counts[userKey("alice")] = new(big.Int).SetUint64(^uint64(0))

	agg.Record(userKey("alice"))

	want := new(big.Int).Add(new(big.Int).SetUint64(^uint64(0)), big.NewInt(1))
	snap := agg.Snapshot()
	if snap.Total.Cmp(want) != 0 {
		t.Errorf("expected total %s, got %s", want, snap.Total)
	}
	if snap.Count(userKey("alice")).Cmp(want) != 0 {
		t.Errorf("expected bucket %s, got %s", want, snap.Count(userKey("alice")))
	}
}

func TestBucketsOrdered(t *testing.T) {
	agg := New()
	for _, name := range []string{"carol", "alice", "bob", "alice"} {
		agg.Record(userKey(name))
	}

	buckets := agg.Snapshot().Buckets()
	want := []string{"alice", "bob", "carol"}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(buckets))
	}
	for i, name := range want {
		if v, _ := buckets[i].Key.Value(model.ByUsername); v != name {
			t.Errorf("bucket %d: expected %s, got %s", i, name, v)
		}
	}
}
