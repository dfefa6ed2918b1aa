// Package portset is a hash set over netgraph.Port, used by linear
// readback's cycle guard (its seen set) at the scale the
// design notes call out (bitsets or hash sets keyed by the port pair,
// targeting nets of 10^5 nodes or more).
package portset

import (
	"encoding/binary"

	"github.com/dchest/siphash"

	"github.com/vic/readback/pkg/netgraph"
)

const bucketCount = 1024

type entry struct {
	port netgraph.Port
	next *entry
}

// Set is a chained hash set over netgraph.Port, keyed by a SipHash-2-4
// digest of (NodeID, SlotID) rather than Go's built-in map hashing. Every Set
// uses the same fixed key (see New), so two Sets holding the same ports have
// the same bucket layout.
type Set struct {
	k0, k1  uint64
	buckets [bucketCount]*entry
	size    int
}

// New returns an empty Set seeded from a fixed, call-local key pair. The
// key need not be secret or random across runs: it only needs to spread
// ports across buckets, which a fixed SipHash key does perfectly well for a
// single readback invocation's lifetime.
func New() *Set {
	return &Set{k0: 0x7265616462616b, k1: 0x706f727473657}
}

func (s *Set) bucket(p netgraph.Port) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(p.Node))
	buf[8] = byte(p.Slot)
	h := siphash.Hash(s.k0, s.k1, buf[:])
	return h % bucketCount
}

// Insert adds p to the set; inserting an already-present port is a no-op.
func (s *Set) Insert(p netgraph.Port) {
	if s.Contains(p) {
		return
	}
	b := s.bucket(p)
	s.buckets[b] = &entry{port: p, next: s.buckets[b]}
	s.size++
}

// Contains reports whether p has been inserted.
func (s *Set) Contains(p netgraph.Port) bool {
	for e := s.buckets[s.bucket(p)]; e != nil; e = e.next {
		if e.port == p {
			return true
		}
	}
	return false
}

// Len reports the number of distinct ports inserted.
func (s *Set) Len() int {
	return s.size
}
