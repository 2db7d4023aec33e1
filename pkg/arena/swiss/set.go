// Package swiss provides an arena-backed swisstable hash set.
//
// Control metadata and key groups are bump-allocated from an arena; rehashes
// allocate fresh storage and leave the superseded storage behind, which is
// the arena's documented cost model. The set header itself is an ordinary Go
// value.
package swiss

import (
	"iter"
	"math/bits"

	"github.com/dolthub/maphash"

	"github.com/lordwindy/samrena/pkg/arena"
)

// Key is any key the set can store: a pointer-free integer type, so that the
// arena-resident groups never hide Go pointers from the garbage collector.
type Key interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~uintptr
}

const (
	groupSize       = 8
	maxAvgGroupLoad = 7

	ctrlEmpty     = 0x80
	ctrlTombstone = 0xFE

	loBits = 0x0101010101010101
	hiBits = 0x8080808080808080

	emptyWord = uint64(ctrlEmpty) * loBits
)

// Set is an open-addressing hash set based on Abseil's flat_hash_set.
//
// Each group holds eight keys and one control word whose bytes carry a 7-bit
// hash suffix for occupied slots, or the empty/tombstone markers.
type Set[K Key] struct {
	arena *arena.Arena

	ctrl   []uint64
	groups [][groupSize]K

	hash     maphash.Hasher[K]
	resident uint32
	dead     uint32
	limit    uint32
}

// NewIn constructs a set on the given arena with room for sz elements before
// the first rehash.
func NewIn[K Key](a *arena.Arena, sz uint32) (*Set[K], error) {
	if a == nil {
		return nil, arena.ErrNilPointer
	}

	s := &Set[K]{arena: a, hash: maphash.NewHasher[K]()}
	if err := s.init(numGroups(sz)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set[K]) init(groups uint32) error {
	ctrl, err := arena.Make[uint64](s.arena, int(groups))
	if err != nil {
		return err
	}
	keys, err := arena.Make[[groupSize]K](s.arena, int(groups))
	if err != nil {
		return err
	}

	for i := range ctrl {
		ctrl[i] = emptyWord
	}

	s.ctrl, s.groups = ctrl, keys
	s.limit = groups * maxAvgGroupLoad
	s.resident, s.dead = 0, 0
	return nil
}

// Has reports whether key is present.
func (s *Set[K]) Has(key K) bool {
	hi, lo := splitHash(s.hash.Hash(key))
	g := probeStart(hi, len(s.ctrl))
	for {
		matches := metaMatchH2(s.ctrl[g], lo)
		for matches != 0 {
			i := nextMatch(&matches)
			if key == s.groups[g][i] {
				return true
			}
		}
		// Stop probing at the first group with an empty slot.
		if metaMatchEmpty(s.ctrl[g]) != 0 {
			return false
		}
		g++
		if g >= uint32(len(s.ctrl)) {
			g = 0
		}
	}
}

// Put inserts key. Inserting a present key is a no-op. The only error is
// arena exhaustion during a rehash.
func (s *Set[K]) Put(key K) error {
	if s.resident >= s.limit {
		if err := s.rehash(s.nextSize()); err != nil {
			return err
		}
	}

	hi, lo := splitHash(s.hash.Hash(key))
	g := probeStart(hi, len(s.ctrl))
	for {
		matches := metaMatchH2(s.ctrl[g], lo)
		for matches != 0 {
			i := nextMatch(&matches)
			if key == s.groups[g][i] {
				return nil
			}
		}
		matches = metaMatchEmpty(s.ctrl[g])
		if matches != 0 {
			i := nextMatch(&matches)
			s.groups[g][i] = key
			s.setCtrl(g, i, byte(lo))
			s.resident++
			return nil
		}
		g++
		if g >= uint32(len(s.ctrl)) {
			g = 0
		}
	}
}

// Delete removes key, reporting whether it was present.
func (s *Set[K]) Delete(key K) bool {
	hi, lo := splitHash(s.hash.Hash(key))
	g := probeStart(hi, len(s.ctrl))
	for {
		matches := metaMatchH2(s.ctrl[g], lo)
		for matches != 0 {
			i := nextMatch(&matches)
			if key == s.groups[g][i] {
				// A group that still has an empty slot already terminates
				// probes, so the slot can be reclaimed outright instead of
				// leaving a tombstone.
				if metaMatchEmpty(s.ctrl[g]) != 0 {
					s.setCtrl(g, i, ctrlEmpty)
					s.resident--
				} else {
					s.setCtrl(g, i, ctrlTombstone)
					s.dead++
				}
				var zero K
				s.groups[g][i] = zero
				return true
			}
		}
		if metaMatchEmpty(s.ctrl[g]) != 0 {
			return false
		}
		g++
		if g >= uint32(len(s.ctrl)) {
			g = 0
		}
	}
}

// Len returns the number of elements.
func (s *Set[K]) Len() int {
	return int(s.resident - s.dead)
}

// Clear removes every element but keeps the current storage.
func (s *Set[K]) Clear() {
	for i := range s.ctrl {
		s.ctrl[i] = emptyWord
	}
	var zero K
	for g := range s.groups {
		for i := range s.groups[g] {
			s.groups[g][i] = zero
		}
	}
	s.resident, s.dead = 0, 0
}

// All returns an iterator over the elements, in table order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for g := range s.ctrl {
			for i := 0; i < groupSize; i++ {
				c := byte(s.ctrl[g] >> (8 * i))
				if c == ctrlEmpty || c == ctrlTombstone {
					continue
				}
				if !yield(s.groups[g][i]) {
					return
				}
			}
		}
	}
}

func (s *Set[K]) setCtrl(g uint32, i uint32, c byte) {
	shift := 8 * i
	s.ctrl[g] = s.ctrl[g]&^(0xFF<<shift) | uint64(c)<<shift
}

func (s *Set[K]) nextSize() uint32 {
	// Mostly-dead tables rehash in place.
	if s.dead >= s.resident/2 {
		return uint32(len(s.ctrl))
	}
	return uint32(len(s.ctrl)) * 2
}

func (s *Set[K]) rehash(groups uint32) error {
	ctrl, keys := s.ctrl, s.groups

	if err := s.init(groups); err != nil {
		return err
	}
	s.hash = maphash.NewSeed(s.hash)

	for g := range ctrl {
		for i := 0; i < groupSize; i++ {
			c := byte(ctrl[g] >> (8 * i))
			if c == ctrlEmpty || c == ctrlTombstone {
				continue
			}
			if err := s.Put(keys[g][i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// numGroups returns the minimum number of groups needed to store n elements.
func numGroups(n uint32) uint32 {
	groups := (n + maxAvgGroupLoad - 1) / maxAvgGroupLoad
	if groups == 0 {
		groups = 1
	}
	return groups
}

// splitHash splits a hash into its 57-bit prefix and 7-bit suffix.
func splitHash(h uint64) (uint64, byte) {
	return h >> 7, byte(h & 0x7F)
}

func probeStart(hi uint64, groups int) uint32 {
	return fastModN(uint32(hi), uint32(groups))
}

// lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
func fastModN(x, n uint32) uint32 {
	return uint32((uint64(x) * uint64(n)) >> 32)
}

// metaMatchH2 returns a mask with the high bit set in every byte of ctrl
// equal to lo. Occupied bytes never have their top bit set, so markers can
// not false-positive.
func metaMatchH2(ctrl uint64, lo byte) uint64 {
	x := ctrl ^ (loBits * uint64(lo))
	return (x - loBits) &^ x & hiBits
}

// metaMatchEmpty returns a mask with the high bit set in every empty byte.
func metaMatchEmpty(ctrl uint64) uint64 {
	x := ctrl ^ emptyWord
	return (x - loBits) &^ x & hiBits
}

// nextMatch consumes the lowest set match and returns its slot index.
func nextMatch(matches *uint64) uint32 {
	s := uint32(bits.TrailingZeros64(*matches)) / 8
	*matches &= *matches - 1
	return s
}
