package apriori

import (
	"github.com/Hafizh1187/apriory/pkg/itemset"
	"github.com/Hafizh1187/apriory/pkg/txset"
)

// Support is the support of an itemset over a transaction set.
type Support struct {
	Count    int
	Fraction float64
}

// Counter computes itemset support over an immutable transaction set.
// It holds no mutable state and is safe for concurrent use.
type Counter struct {
	set *txset.Set
}

// NewCounter returns a Counter over set.
func NewCounter(set *txset.Set) *Counter {
	return &Counter{set: set}
}

// Total returns the number of transactions.
func (c *Counter) Total() int {
	return c.set.Len()
}

// Support returns how many transactions contain items, and that count as a
// fraction of all transactions. The fraction is 0 for an empty set.
func (c *Counter) Support(items itemset.Itemset) Support {
	return c.support(c.set.Count(items))
}

// count is the hot path used by the miner on encoded candidates.
func (c *Counter) count(ids []uint32) int {
	return c.set.CountIDs(ids)
}

func (c *Counter) support(count int) Support {
	return Support{Count: count, Fraction: fraction(count, c.set.Len())}
}

func fraction(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
