package impl

import (
	"context"
	"log/slog"

	deliverycontext "piquante/internal/delivery/context"
	"piquante/internal/domain/entity"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/repository"
	"piquante/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type voteService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// VoteServiceParams holds dependencies for VoteService, injected by Fx.
type VoteServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewVoteService is the constructor for voteService.
func NewVoteService(params VoteServiceParams) usecase.VoteUsecase {
	return &voteService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *voteService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ApplyVote locks the sauce, applies the transition and persists it in one
// transaction. A no-op transition writes nothing.
func (srv *voteService) ApplyVote(ctx context.Context, input *usecase.VoteInput) (*entity.Sauce, error) {
	vote, err := entity.ParseVote(input.Like)
	if err != nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidVoteValue)
	}

	var result *entity.Sauce
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sauceRepo := repoFactory.SauceRepo()

		sauce, err := sauceRepo.FindByIDForUpdate(ctx, input.SauceID)
		if err != nil {
			return err
		}

		if sauce.ApplyVote(input.UserID, vote) {
			if err := sauceRepo.SaveVote(ctx, sauce, input.UserID); err != nil {
				return err
			}
		}
		result = sauce

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSauceNotFound) {
			return nil, errors.WithStack(domainerrors.ErrSauceNotFound)
		}
		srv.log(ctx).Error("Failed to apply vote",
			slog.String("sauceID", input.SauceID.String()),
			slog.String("userID", input.UserID.String()),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to execute vote transaction")
	}

	srv.log(ctx).Debug("Vote applied",
		slog.String("sauceID", input.SauceID.String()),
		slog.Int("like", input.Like),
		slog.Int("likes", result.Likes),
		slog.Int("dislikes", result.Dislikes),
	)

	return result, nil
}
