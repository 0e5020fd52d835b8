package usecase

import (
	"context"

	"github.com/google/uuid"

	"piquante/internal/domain/entity"
)

// VoteInput is one like/dislike/clear instruction.
type VoteInput struct {
	SauceID uuid.UUID
	UserID  uuid.UUID
	Like    int
}

// VoteUsecase applies votes to sauces.
type VoteUsecase interface {
	// ApplyVote runs the vote state machine for one (sauce, user) pair and
	// returns the sauce as committed.
	ApplyVote(ctx context.Context, input *VoteInput) (*entity.Sauce, error)
}
