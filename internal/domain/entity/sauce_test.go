package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVoteInvariants(t *testing.T, s *Sauce) {
	t.Helper()

	assert.Equal(t, s.UsersLiked.Len(), s.Likes, "likes must equal |usersLiked|")
	assert.Equal(t, s.UsersDisliked.Len(), s.Dislikes, "dislikes must equal |usersDisliked|")
	for id := range s.UsersLiked {
		assert.False(t, s.UsersDisliked.Has(id), "user %s is in both sets", id)
	}
}

func TestParseVote(t *testing.T) {
	tests := []struct {
		raw     int
		want    Vote
		wantErr bool
	}{
		{raw: 1, want: VoteLike},
		{raw: 0, want: VoteNeutral},
		{raw: -1, want: VoteDislike},
		{raw: 2, wantErr: true},
		{raw: -2, wantErr: true},
		{raw: 100, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseVote(tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidVote, "raw=%d", tt.raw)

			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSauce_DuplicateLikeIsNoOp(t *testing.T) {
	s := NewSauce(uuid.New(), SauceDetails{Name: "Tabasco"})
	u1 := uuid.New()

	assert.True(t, s.ApplyVote(u1, VoteLike))
	assert.False(t, s.ApplyVote(u1, VoteLike))

	assert.Equal(t, []uuid.UUID{u1}, s.UsersLiked.IDs())
	assert.Equal(t, 1, s.Likes)
	assertVoteInvariants(t, s)
}

func TestSauce_LikeThenDislikeMovesUser(t *testing.T) {
	s := NewSauce(uuid.New(), SauceDetails{})
	u := uuid.New()

	s.ApplyVote(u, VoteLike)
	assert.Equal(t, 1, s.Likes)
	assert.Equal(t, 0, s.Dislikes)

	assert.True(t, s.ApplyVote(u, VoteDislike))

	assert.False(t, s.UsersLiked.Has(u))
	assert.True(t, s.UsersDisliked.Has(u))
	assert.Equal(t, 0, s.Likes)
	assert.Equal(t, 1, s.Dislikes)
	assert.Equal(t, VoteDislike, s.VoteOf(u))
	assertVoteInvariants(t, s)
}

func TestSauce_ClearIsIdempotent(t *testing.T) {
	s := NewSauce(uuid.New(), SauceDetails{})
	u, other := uuid.New(), uuid.New()
	s.ApplyVote(u, VoteDislike)
	s.ApplyVote(other, VoteLike)

	assert.True(t, s.ApplyVote(u, VoteNeutral))
	snapshot := s.Clone()

	for range 3 {
		assert.False(t, s.ApplyVote(u, VoteNeutral))
		assert.Equal(t, snapshot.UsersLiked, s.UsersLiked)
		assert.Equal(t, snapshot.UsersDisliked, s.UsersDisliked)
		assert.Equal(t, snapshot.Likes, s.Likes)
		assert.Equal(t, snapshot.Dislikes, s.Dislikes)
	}
	assertVoteInvariants(t, s)
}

func TestSauce_ClearWithoutVoteIsNoOp(t *testing.T) {
	s := NewSauce(uuid.New(), SauceDetails{})

	assert.False(t, s.ApplyVote(uuid.New(), VoteNeutral))
	assert.Zero(t, s.Likes)
	assert.Zero(t, s.Dislikes)
}

func TestSauce_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	users := make([]uuid.UUID, 6)
	for i := range users {
		users[i] = uuid.New()
	}
	votes := []Vote{VoteDislike, VoteNeutral, VoteLike}

	s := NewSauce(uuid.New(), SauceDetails{})
	expected := map[uuid.UUID]Vote{}

	for range 500 {
		u := users[rng.IntN(len(users))]
		v := votes[rng.IntN(len(votes))]

		s.ApplyVote(u, v)
		expected[u] = v

		assertVoteInvariants(t, s)
		assert.Equal(t, v, s.VoteOf(u))
	}

	likes, dislikes := 0, 0
	for _, v := range expected {
		switch v {
		case VoteLike:
			likes++
		case VoteDislike:
			dislikes++
		}
	}
	assert.Equal(t, likes, s.Likes)
	assert.Equal(t, dislikes, s.Dislikes)
}

func TestSauce_CloneDoesNotAliasSets(t *testing.T) {
	s := NewSauce(uuid.New(), SauceDetails{})
	clone := s.Clone()

	clone.ApplyVote(uuid.New(), VoteLike)

	assert.Zero(t, s.Likes)
	assert.Zero(t, s.UsersLiked.Len())
}

func TestVoterSet(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	set := NewVoterSet(a, a, b)

	assert.Equal(t, 2, set.Len())
	assert.False(t, set.Add(a))
	assert.True(t, set.Remove(a))
	assert.False(t, set.Remove(a))
	assert.Equal(t, []uuid.UUID{b}, set.IDs())
}
