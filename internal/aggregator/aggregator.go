package aggregator

import (
	"math/big"
	"sort"

	"github.com/atikulmunna/logsift/internal/group"
)

// Aggregator counts matching lines per grouping key. Counts are unbounded
// integers so very large inputs cannot overflow.
//
// An Aggregator belongs to a single parse run and is not safe for concurrent
// use; parallel workers each own one and are combined with Merge.
type Aggregator struct {
	counts map[group.Key]*big.Int
	total  *big.Int
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		counts: make(map[group.Key]*big.Int),
		total:  new(big.Int),
	}
}

var one = big.NewInt(1)

// Record counts one matching line. The total always grows; the key's bucket
// only grows when the key carries at least one dimension.
func (a *Aggregator) Record(key group.Key) {
	a.total.Add(a.total, one)

	if key.IsEmpty() {
		return
	}
	if n, ok := a.counts[key]; ok {
		n.Add(n, one)
		return
	}
	a.counts[key] = big.NewInt(1)
}

// Merge folds other's counts into a by summing identical keys.
func (a *Aggregator) Merge(other *Aggregator) {
	a.total.Add(a.total, other.total)
	for k, v := range other.counts {
		if n, ok := a.counts[k]; ok {
			n.Add(n, v)
			continue
		}
		a.counts[k] = new(big.Int).Set(v)
	}
}

// Snapshot returns a copy of the current statistics.
func (a *Aggregator) Snapshot() Snapshot {
	counts := make(map[group.Key]*big.Int, len(a.counts))
	for k, v := range a.counts {
		counts[k] = new(big.Int).Set(v)
	}
	return Snapshot{
		Counts: counts,
		Total:  new(big.Int).Set(a.total),
	}
}

// Snapshot is a point-in-time copy of aggregated statistics.
type Snapshot struct {
	Counts map[group.Key]*big.Int
	Total  *big.Int // lines that passed the filters, grouped or not
}

// Bucket is a single key and its count.
type Bucket struct {
	Key   group.Key
	Count *big.Int
}

// Buckets lists every bucket ordered by key.
func (s Snapshot) Buckets() []Bucket {
	out := make([]Bucket, 0, len(s.Counts))
	for k, v := range s.Counts {
		out = append(out, Bucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}

// Count returns the count for key, zero when absent.
func (s Snapshot) Count(key group.Key) *big.Int {
	if n, ok := s.Counts[key]; ok {
		return new(big.Int).Set(n)
	}
	return new(big.Int)
}

// Grouped sums every bucket. It never exceeds Total.
func (s Snapshot) Grouped() *big.Int {
	sum := new(big.Int)
	for _, v := range s.Counts {
		sum.Add(sum, v)
	}
	return sum
}

// TotalOrZero returns Total, treating a zero-value Snapshot as empty.
func (s Snapshot) TotalOrZero() *big.Int {
	if s.Total == nil {
		return new(big.Int)
	}
	return s.Total
}
