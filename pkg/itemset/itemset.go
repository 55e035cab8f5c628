// Package itemset provides the canonical set-of-items value used throughout
// the mining pipeline.
//
// An Itemset is always sorted and free of duplicates, so two itemsets built
// from the same items in any order compare equal and produce the same Key.
package itemset

import (
	"slices"
	"strings"
)

// Item is an opaque item identifier, typically a product name.
type Item = string

// keySep separates items in Key. It cannot appear in a normalized item.
const keySep = "\x1f"

// Itemset is a canonical (sorted, deduplicated) set of items.
// Itemsets are values: callers must not modify the backing slice.
type Itemset []Item

// New builds a canonical Itemset from items in any order.
// Surrounding whitespace is trimmed and empty tokens are dropped.
func New(items ...Item) Itemset {
	out := make(Itemset, 0, len(items))
	for _, it := range items {
		it = Normalize(it)
		if it == "" {
			continue
		}
		out = append(out, it)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Normalize returns the canonical form of a raw item token.
func Normalize(raw string) Item {
	return strings.TrimSpace(strings.ReplaceAll(raw, keySep, " "))
}

// Len returns the number of items.
func (s Itemset) Len() int {
	return len(s)
}

// Key returns a string that uniquely identifies the set, usable as a map key.
func (s Itemset) Key() string {
	return strings.Join(s, keySep)
}

// String renders the set as "{a, b, c}".
func (s Itemset) String() string {
	return "{" + strings.Join(s, ", ") + "}"
}

// Equal reports whether both sets hold the same items.
func (s Itemset) Equal(o Itemset) bool {
	return slices.Equal(s, o)
}

// Contains reports whether item is a member of s.
func (s Itemset) Contains(item Item) bool {
	_, ok := slices.BinarySearch(s, item)
	return ok
}

// IsSubsetOf reports whether every item of s is in o.
func (s Itemset) IsSubsetOf(o Itemset) bool {
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] == o[j]:
			i++
			j++
		case s[i] > o[j]:
			j++
		default:
			return false
		}
	}
	return i == len(s)
}

// Union returns the items in s or o.
func (s Itemset) Union(o Itemset) Itemset {
	out := make(Itemset, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] == o[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		default:
			out = append(out, o[j])
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, o[j:]...)
}

// Difference returns the items in s that are not in o.
func (s Itemset) Difference(o Itemset) Itemset {
	out := make(Itemset, 0, len(s))
	for _, it := range s {
		if !o.Contains(it) {
			out = append(out, it)
		}
	}
	return out
}

// Compare orders itemsets by size, then lexically item by item.
func Compare(a, b Itemset) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return slices.Compare(a, b)
}
