package entity

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// VoterSet is a set of user IDs. Membership is unique by construction.
type VoterSet map[uuid.UUID]struct{}

// NewVoterSet builds a set from ids, collapsing duplicates.
func NewVoterSet(ids ...uuid.UUID) VoterSet {
	set := make(VoterSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}

// Has reports whether id is a member.
func (s VoterSet) Has(id uuid.UUID) bool {
	_, ok := s[id]

	return ok
}

// Add inserts id and reports whether the set changed.
func (s VoterSet) Add(id uuid.UUID) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}

	return true
}

// Remove deletes id and reports whether the set changed.
func (s VoterSet) Remove(id uuid.UUID) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)

	return true
}

// Len returns the cardinality.
func (s VoterSet) Len() int {
	return len(s)
}

// IDs returns the members in a stable order.
func (s VoterSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	return ids
}

// Clone returns an independent copy.
func (s VoterSet) Clone() VoterSet {
	out := make(VoterSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}

	return out
}
