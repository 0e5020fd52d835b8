package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Vote is a user's stance on a sauce.
type Vote int

const (
	VoteDislike Vote = -1
	VoteNeutral Vote = 0
	VoteLike    Vote = 1
)

// ErrInvalidVote is returned by ParseVote for values outside {-1, 0, 1}.
var ErrInvalidVote = errors.New("vote must be -1, 0 or 1")

// ParseVote validates a raw vote instruction.
func ParseVote(raw int) (Vote, error) {
	switch Vote(raw) {
	case VoteDislike, VoteNeutral, VoteLike:
		return Vote(raw), nil
	default:
		return 0, ErrInvalidVote
	}
}

// SauceDetails holds the descriptive, freely replaceable fields of a sauce.
type SauceDetails struct {
	Name         string
	Manufacturer string
	Description  string
	MainPepper   string
	Heat         int
}

// Sauce is a reviewed product. Likes and Dislikes always equal the
// cardinality of UsersLiked and UsersDisliked, and the two sets are disjoint.
type Sauce struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	SauceDetails
	ImageURL string
	ImageKey string // object key in the image bucket

	Likes         int
	Dislikes      int
	UsersLiked    VoterSet
	UsersDisliked VoterSet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSauce returns a sauce with empty vote sets and zero counters.
func NewSauce(ownerID uuid.UUID, details SauceDetails) *Sauce {
	return &Sauce{
		OwnerID:       ownerID,
		SauceDetails:  details,
		UsersLiked:    VoterSet{},
		UsersDisliked: VoterSet{},
	}
}

// ApplyVote moves userID to the set matching vote, removing it from the other one,
// and refreshes the counters. It reports whether anything changed.
func (s *Sauce) ApplyVote(userID uuid.UUID, vote Vote) bool {
	if s.UsersLiked == nil {
		s.UsersLiked = VoterSet{}
	}
	if s.UsersDisliked == nil {
		s.UsersDisliked = VoterSet{}
	}

	var changed bool
	switch vote {
	case VoteLike:
		changed = s.UsersLiked.Add(userID)
		changed = s.UsersDisliked.Remove(userID) || changed
	case VoteDislike:
		changed = s.UsersDisliked.Add(userID)
		changed = s.UsersLiked.Remove(userID) || changed
	case VoteNeutral:
		changed = s.UsersLiked.Remove(userID)
		changed = s.UsersDisliked.Remove(userID) || changed
	}

	s.syncCounters()

	return changed
}

// VoteOf returns the current stance of userID.
func (s *Sauce) VoteOf(userID uuid.UUID) Vote {
	switch {
	case s.UsersLiked.Has(userID):
		return VoteLike
	case s.UsersDisliked.Has(userID):
		return VoteDislike
	default:
		return VoteNeutral
	}
}

// IsOwnedBy reports whether userID created the sauce.
func (s *Sauce) IsOwnedBy(userID uuid.UUID) bool {
	return s.OwnerID == userID
}

// Clone returns a deep copy so callers cannot alias the vote sets.
func (s *Sauce) Clone() *Sauce {
	out := *s
	out.UsersLiked = s.UsersLiked.Clone()
	out.UsersDisliked = s.UsersDisliked.Clone()

	return &out
}

func (s *Sauce) syncCounters() {
	s.Likes = s.UsersLiked.Len()
	s.Dislikes = s.UsersDisliked.Len()
}
