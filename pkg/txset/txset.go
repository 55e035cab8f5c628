// Package txset holds an immutable, ordered collection of transactions with
// an inverted index for superset counting.
//
// Items are encoded to dense IDs (see package dict) whose order matches the
// lexical order of the items. For each item the index keeps the sorted list
// of transaction positions containing it; the number of transactions that
// contain an itemset is the size of the intersection of its items' lists.
package txset

import (
	"context"
	"fmt"
	"slices"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/dict"
	"github.com/Hafizh1187/apriory/pkg/itemset"
)

// Set is an immutable transaction collection. It is safe for concurrent use.
type Set struct {
	dict     *dict.Dict
	txs      [][]uint32 // encoded transactions, IDs ascending
	postings [][]uint32 // item ID -> ascending transaction positions
	maxLen   int
	skipped  int
}

// New normalizes raw transactions and builds the index.
//
// Each raw transaction is trimmed, stripped of empty tokens and deduplicated.
// Transactions left empty are discarded with a warning; they never fail
// the build.
func New(ctx context.Context, raw [][]string) (*Set, error) {
	log := logctx.FromContext(ctx)

	normalized := make([]itemset.Itemset, 0, len(raw))
	distinct := make(map[string]struct{})
	skipped := 0
	for i, tx := range raw {
		items := itemset.New(tx...)
		if items.Len() == 0 {
			skipped++
			log.Warn().Int("row", i).Msg("skipping empty transaction")
			continue
		}
		for _, it := range items {
			distinct[it] = struct{}{}
		}
		normalized = append(normalized, items)
	}

	names := make([]string, 0, len(distinct))
	for it := range distinct {
		names = append(names, it)
	}
	d, err := dict.Build(names)
	if err != nil {
		return nil, fmt.Errorf("build item dictionary: %w", err)
	}

	s := &Set{
		dict:     d,
		txs:      make([][]uint32, len(normalized)),
		postings: make([][]uint32, d.Len()),
		skipped:  skipped,
	}
	for pos, items := range normalized {
		ids := make([]uint32, len(items))
		for j, it := range items {
			id, _ := d.ID(it)
			ids[j] = id
			s.postings[id] = append(s.postings[id], uint32(pos))
		}
		// Canonical itemsets are sorted, and IDs follow item order.
		s.txs[pos] = ids
		s.maxLen = max(s.maxLen, len(ids))
	}

	if skipped > 0 {
		log.Warn().
			Int("skipped", skipped).
			Int("kept", len(normalized)).
			Msg("discarded empty transactions")
	}

	return s, nil
}

// Len returns the number of (non-empty) transactions.
func (s *Set) Len() int {
	return len(s.txs)
}

// Skipped returns how many raw transactions were discarded as empty.
func (s *Set) Skipped() int {
	return s.skipped
}

// MaxLen returns the size of the largest transaction.
func (s *Set) MaxLen() int {
	return s.maxLen
}

// NumItems returns the number of distinct items.
func (s *Set) NumItems() int {
	return s.dict.Len()
}

// Item returns the item with the given ID.
func (s *Set) Item(id uint32) string {
	return s.dict.Item(id)
}

// ID returns the ID of item, or ok=false if no transaction contains it.
func (s *Set) ID(item string) (uint32, bool) {
	return s.dict.ID(item)
}

// Decode converts ascending IDs back to a canonical Itemset.
func (s *Set) Decode(ids []uint32) itemset.Itemset {
	out := make(itemset.Itemset, len(ids))
	for i, id := range ids {
		out[i] = s.dict.Item(id)
	}
	return out
}

// Encode converts an Itemset to ascending IDs. ok is false if any item is
// absent from every transaction.
func (s *Set) Encode(items itemset.Itemset) (ids []uint32, ok bool) {
	ids = make([]uint32, len(items))
	for i, it := range items {
		id, found := s.dict.ID(it)
		if !found {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// Transaction returns the i-th transaction.
func (s *Set) Transaction(i int) itemset.Itemset {
	return s.Decode(s.txs[i])
}

// ItemCount returns how many transactions contain the item with the given ID.
func (s *Set) ItemCount(id uint32) int {
	return len(s.postings[id])
}

// Count returns how many transactions are supersets of items.
func (s *Set) Count(items itemset.Itemset) int {
	if items.Len() == 0 {
		return s.Len()
	}
	ids, ok := s.Encode(items)
	if !ok {
		return 0
	}
	return s.CountIDs(ids)
}

// CountIDs returns how many transactions contain every ID in ids.
// An empty ids slice matches every transaction.
func (s *Set) CountIDs(ids []uint32) int {
	switch len(ids) {
	case 0:
		return s.Len()
	case 1:
		return len(s.postings[ids[0]])
	}

	lists := make([][]uint32, len(ids))
	for i, id := range ids {
		lists[i] = s.postings[id]
	}
	slices.SortFunc(lists, func(a, b []uint32) int { return len(a) - len(b) })

	acc := slices.Clone(lists[0])
	for _, l := range lists[1:] {
		acc = intersect(acc, l)
		if len(acc) == 0 {
			return 0
		}
	}
	return len(acc)
}

// intersect keeps in dst the positions also present in other.
// Both inputs are ascending; dst is reused for the result.
func intersect(dst, other []uint32) []uint32 {
	out := dst[:0]
	i, j := 0, 0
	for i < len(dst) && j < len(other) {
		switch {
		case dst[i] == other[j]:
			out = append(out, dst[i])
			i++
			j++
		case dst[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return out
}
