package exclude

import (
	"hash/fnv"
	"math/bits"
)

const minCapacity = 16

// Set is an immutable open-addressed hash set of resource paths. Lookups use
// a 64-bit FNV-1 hash and linear probing. The table is sized once, to the
// next power of two at least twice the item count, so probe runs stay short
// and there is always an empty slot to stop on.
type Set struct {
	slots []string
	used  []bool
	mask  uint64
	count int
}

// New builds a Set holding items. Duplicate items are stored once.
func New(items []string) *Set {
	capacity := capacityFor(len(items))
	s := &Set{
		slots: make([]string, capacity),
		used:  make([]bool, capacity),
		mask:  uint64(capacity - 1),
	}

	for _, item := range items {
		s.insert(item)
	}

	return s
}

func capacityFor(items int) int {
	n := items * 2
	if n < minCapacity {
		return minCapacity
	}
	return 1 << bits.Len(uint(n-1))
}

func (s *Set) insert(item string) {
	idx := hash(item) & s.mask
	for s.used[idx] {
		if s.slots[idx] == item {
			return
		}
		idx = (idx + 1) & s.mask
	}
	s.slots[idx] = item
	s.used[idx] = true
	s.count++
}

// Contains reports whether path is in the set.
func (s *Set) Contains(path string) bool {
	idx := hash(path) & s.mask
	for s.used[idx] {
		if s.slots[idx] == path {
			return true
		}
		idx = (idx + 1) & s.mask
	}
	return false
}

// Len returns the number of distinct paths.
func (s *Set) Len() int { return s.count }

// Cap returns the number of slots in the table.
func (s *Set) Cap() int { return len(s.slots) }

func hash(s string) uint64 {
	h := fnv.New64()
	h.Write([]byte(s))
	return h.Sum64()
}
