// Package set wraps github.com/emirpasic/gods' ordered set for the small
// pieces of bookkeeping determinize needs: the worklist of discovered
// subsets during subset construction, and the partition blocks during
// Hopcroft-style state merging. Grounded on npillmayer-gorgo's lr/tables.go,
// which leans on the same library for LR closure/goto-set worklists.
package set

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Strings is an ordered set of strings, used to dedupe canonical subset
// keys as subset construction discovers them.
type Strings struct {
	ts *treeset.Set
}

// NewStrings returns an empty set.
func NewStrings() *Strings {
	return &Strings{ts: treeset.NewWith(utils.StringComparator)}
}

// Add inserts v, returning false if it was already present.
func (s *Strings) Add(v string) bool {
	if s.ts.Contains(v) {
		return false
	}
	s.ts.Add(v)
	return true
}

// Contains reports whether v was previously Add-ed.
func (s *Strings) Contains(v string) bool {
	return s.ts.Contains(v)
}

// Size returns the number of elements.
func (s *Strings) Size() int {
	return s.ts.Size()
}

// Ints is the same thing specialized for small integer ids, used by
// Hopcroft partition refinement to list each block id once, in
// first-seen order.
type Ints struct {
	ts *treeset.Set
}

// NewInts returns an empty set.
func NewInts() *Ints {
	return &Ints{ts: treeset.NewWith(utils.IntComparator)}
}

// Add inserts v, returning false if it was already present.
func (s *Ints) Add(v int) bool {
	if s.ts.Contains(v) {
		return false
	}
	s.ts.Add(v)
	return true
}

// Values returns the sorted contents.
func (s *Ints) Values() []int {
	out := make([]int, 0, s.ts.Size())
	for _, v := range s.ts.Values() {
		out = append(out, v.(int))
	}
	return out
}

// Size returns the number of elements.
func (s *Ints) Size() int {
	return s.ts.Size()
}
