// Package dict provides a frozen item dictionary that maps item strings to
// dense integer IDs.
//
// IDs are assigned by lexical rank, so comparing IDs orders items the same
// way comparing the strings does. Lookups go through a minimal perfect hash
// built with bbhash and are verified against the stored item string.
package dict

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/relab/bbhash"
)

var (
	// ErrDuplicateItem indicates Build was given the same item twice.
	ErrDuplicateItem = errors.New("duplicate item")
	// ErrHashCollision indicates two distinct items share a 64-bit hash.
	ErrHashCollision = errors.New("item hash collision")
)

// Dict is an immutable item dictionary. It is safe for concurrent use.
type Dict struct {
	mph   *bbhash.BBHash2
	slots []uint32 // MPHF position -> ID
	items []string // ID -> item
}

// Build constructs a dictionary over distinct items.
func Build(items []string) (*Dict, error) {
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, sorted[i])
		}
	}

	d := &Dict{items: sorted}
	if len(sorted) == 0 {
		return d, nil
	}

	keys := make([]uint64, len(sorted))
	seen := make(map[uint64]string, len(sorted))
	for i, it := range sorted {
		keys[i] = hashItem(it)
		if prev, ok := seen[keys[i]]; ok {
			return nil, fmt.Errorf("%w: %q and %q", ErrHashCollision, prev, it)
		}
		seen[keys[i]] = it
	}

	mph, err := bbhash.New(keys, bbhash.Gamma(2.0))
	if err != nil {
		return nil, fmt.Errorf("build MPHF: %w", err)
	}

	// bbhash positions are 1-indexed
	slots := make([]uint32, len(sorted))
	for id, it := range sorted {
		pos := mph.Find(hashItem(it))
		if pos == 0 || pos > uint64(len(slots)) {
			return nil, fmt.Errorf("MPHF lookup failed for %q", it)
		}
		slots[pos-1] = uint32(id)
	}

	d.mph = mph
	d.slots = slots
	return d, nil
}

// ID returns the ID of item, or ok=false if the item is unknown.
func (d *Dict) ID(item string) (id uint32, ok bool) {
	if d.mph == nil {
		return 0, false
	}
	pos := d.mph.Find(hashItem(item))
	if pos == 0 || pos > uint64(len(d.slots)) {
		return 0, false
	}
	id = d.slots[pos-1]
	if d.items[id] != item {
		return 0, false
	}
	return id, true
}

// Item returns the item with the given ID. It panics if id is out of range.
func (d *Dict) Item(id uint32) string {
	return d.items[id]
}

// Len returns the number of items.
func (d *Dict) Len() int {
	return len(d.items)
}

// Items returns all items in ID order. The result must not be modified.
func (d *Dict) Items() []string {
	return d.items
}

func hashItem(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
