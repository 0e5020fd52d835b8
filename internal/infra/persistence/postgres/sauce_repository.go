package postgres

import (
	"context"
	"time"

	"piquante/internal/domain/entity"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/repository"
	"piquante/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const countVotesSQL = "(SELECT count(*) FROM sauce_votes WHERE sauce_votes.sauce_id = sauces.id AND sauce_votes.value = ?)"

// sauceRepository implements the domain.SauceRepository interface using GORM.
type sauceRepository struct {
	db *gorm.DB
}

// NewSauceRepository is the constructor for sauceRepository.
func NewSauceRepository(db *gorm.DB) repository.SauceRepository {
	return &sauceRepository{db: db}
}

// List returns every sauce with its voters, newest first.
func (repo *sauceRepository) List(ctx context.Context) ([]*entity.Sauce, error) {
	var sauceMs []*model.SauceModel
	err := repo.db.WithContext(ctx).
		Preload("Votes").
		Order("created_at DESC").
		Find(&sauceMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list sauces")
	}

	sauces := make([]*entity.Sauce, 0, len(sauceMs))
	for _, sauceM := range sauceMs {
		sauces = append(sauces, toSauceDomain(sauceM))
	}

	return sauces, nil
}

// FindByID retrieves a sauce with its voters.
func (repo *sauceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Sauce, error) {
	var sauceM model.SauceModel
	err := repo.db.WithContext(ctx).
		Preload("Votes").
		Where("id = ?", id).
		First(&sauceM).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to find sauce by id")
	}

	return toSauceDomain(&sauceM), nil
}

// FindByIDForUpdate locks the sauce row with SELECT ... FOR UPDATE, then loads its
// voters. Concurrent voters on the same sauce queue on the row lock.
func (repo *sauceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Sauce, error) {
	var sauceM model.SauceModel
	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&sauceM).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to lock sauce")
	}

	if err := repo.db.WithContext(ctx).
		Where("sauce_id = ?", id).
		Find(&sauceM.Votes).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load sauce votes")
	}

	return toSauceDomain(&sauceM), nil
}

// Create persists a new sauce with empty vote sets.
func (repo *sauceRepository) Create(ctx context.Context, sauce *entity.Sauce) error {
	sauceM := fromSauceDomain(sauce)
	if sauceM.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate sauce id")
		}
		sauceM.ID = id
	}
	sauceM.Likes, sauceM.Dislikes = 0, 0

	if err := repo.db.WithContext(ctx).Omit("Votes").Create(sauceM).Error; err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("sauce violates table constraints")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("unknown sauce owner")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create sauce")
	}

	sauce.ID = sauceM.ID
	sauce.CreatedAt = sauceM.CreatedAt
	sauce.UpdatedAt = sauceM.UpdatedAt

	return nil
}

// UpdateDetails replaces descriptive fields and the image reference only.
func (repo *sauceRepository) UpdateDetails(ctx context.Context, sauce *entity.Sauce) error {
	now := time.Now()
	res := repo.db.WithContext(ctx).
		Model(&model.SauceModel{}).
		Where("id = ?", sauce.ID).
		Updates(map[string]any{
			"name":         sauce.Name,
			"manufacturer": sauce.Manufacturer,
			"description":  sauce.Description,
			"main_pepper":  sauce.MainPepper,
			"heat":         sauce.Heat,
			"image_url":    sauce.ImageURL,
			"image_key":    sauce.ImageKey,
			"updated_at":   now,
		})
	if res.Error != nil {
		if isCheckConstraintViolation(res.Error) {
			return domainerrors.ErrValidationFailed.WrapMessage("sauce violates table constraints")
		}

		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update sauce")
	}
	if res.RowsAffected == 0 {
		return repository.ErrSauceNotFound
	}
	sauce.UpdatedAt = now

	return nil
}

// Delete removes the sauce. Its votes go with it through ON DELETE CASCADE.
func (repo *sauceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SauceModel{})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to delete sauce")
	}
	if res.RowsAffected == 0 {
		return repository.ErrSauceNotFound
	}

	return nil
}

// SaveVote writes userID's single membership row and recomputes both counters from
// the membership table, so the counters never drift from the sets.
func (repo *sauceRepository) SaveVote(ctx context.Context, sauce *entity.Sauce, userID uuid.UUID) error {
	db := repo.db.WithContext(ctx)

	vote := sauce.VoteOf(userID)
	if vote == entity.VoteNeutral {
		if err := db.Where("sauce_id = ? AND user_id = ?", sauce.ID, userID).
			Delete(&model.SauceVoteModel{}).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to clear vote")
		}
	} else {
		voteM := &model.SauceVoteModel{SauceID: sauce.ID, UserID: userID, Value: int(vote)}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sauce_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(voteM).Error
		if err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to save vote")
		}
	}

	now := time.Now()
	res := db.Model(&model.SauceModel{}).
		Where("id = ?", sauce.ID).
		Updates(map[string]any{
			"likes":      gorm.Expr(countVotesSQL, int(entity.VoteLike)),
			"dislikes":   gorm.Expr(countVotesSQL, int(entity.VoteDislike)),
			"updated_at": now,
		})
	if res.Error != nil {
		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update vote counters")
	}
	if res.RowsAffected == 0 {
		return repository.ErrSauceNotFound
	}
	sauce.UpdatedAt = now

	return nil
}

func notFoundOr(err error, details string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrSauceNotFound
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

// --- Mapper Functions ---

func toSauceDomain(data *model.SauceModel) *entity.Sauce {
	if data == nil {
		return nil
	}

	sauce := &entity.Sauce{
		ID:      data.ID,
		OwnerID: data.OwnerID,
		SauceDetails: entity.SauceDetails{
			Name:         data.Name,
			Manufacturer: data.Manufacturer,
			Description:  data.Description,
			MainPepper:   data.MainPepper,
			Heat:         data.Heat,
		},
		ImageURL:      data.ImageURL,
		ImageKey:      data.ImageKey,
		UsersLiked:    entity.VoterSet{},
		UsersDisliked: entity.VoterSet{},
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
	for _, v := range data.Votes {
		switch entity.Vote(v.Value) {
		case entity.VoteLike:
			sauce.UsersLiked.Add(v.UserID)
		case entity.VoteDislike:
			sauce.UsersDisliked.Add(v.UserID)
		}
	}
	// Counters come from the sets, never from the stored columns.
	sauce.Likes = sauce.UsersLiked.Len()
	sauce.Dislikes = sauce.UsersDisliked.Len()

	return sauce
}

func fromSauceDomain(data *entity.Sauce) *model.SauceModel {
	if data == nil {
		return nil
	}

	return &model.SauceModel{
		ID:           data.ID,
		OwnerID:      data.OwnerID,
		Name:         data.Name,
		Manufacturer: data.Manufacturer,
		Description:  data.Description,
		MainPepper:   data.MainPepper,
		Heat:         data.Heat,
		ImageURL:     data.ImageURL,
		ImageKey:     data.ImageKey,
		Likes:        data.Likes,
		Dislikes:     data.Dislikes,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
