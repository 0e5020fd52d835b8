package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"piquante/internal/domain/entity"
	"piquante/internal/domain/repository"
)

type sauceRepository struct {
	store   *Store
	journal *journal
}

// NewSauceRepository returns a sauce repository outside any transaction.
func NewSauceRepository(store *Store) repository.SauceRepository {
	return &sauceRepository{store: store}
}

func (repo *sauceRepository) List(_ context.Context) ([]*entity.Sauce, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	sauces := make([]*entity.Sauce, 0, len(repo.store.sauces))
	for _, sauce := range repo.store.sauces {
		sauces = append(sauces, sauce.Clone())
	}
	slices.SortFunc(sauces, func(a, b *entity.Sauce) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID.String(), a.ID.String())
	})

	return sauces, nil
}

func (repo *sauceRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Sauce, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	sauce, ok := repo.store.sauces[id]
	if !ok {
		return nil, repository.ErrSauceNotFound
	}

	return sauce.Clone(), nil
}

// FindByIDForUpdate relies on the transaction manager holding txMu.
func (repo *sauceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Sauce, error) {
	if repo.journal == nil {
		return nil, errors.New("FindByIDForUpdate requires a transaction")
	}

	return repo.FindByID(ctx, id)
}

func (repo *sauceRepository) Create(_ context.Context, sauce *entity.Sauce) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if sauce.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate sauce id")
		}
		sauce.ID = id
	}
	now := repo.store.now()
	sauce.CreatedAt, sauce.UpdatedAt = now, now
	sauce.UsersLiked, sauce.UsersDisliked = entity.VoterSet{}, entity.VoterSet{}
	sauce.Likes, sauce.Dislikes = 0, 0

	id := sauce.ID
	repo.store.sauces[id] = sauce.Clone()
	repo.journal.record(func() { delete(repo.store.sauces, id) })

	return nil
}

func (repo *sauceRepository) UpdateDetails(_ context.Context, sauce *entity.Sauce) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	current, ok := repo.store.sauces[sauce.ID]
	if !ok {
		return repository.ErrSauceNotFound
	}
	prev := current.Clone()

	updated := current.Clone()
	updated.SauceDetails = sauce.SauceDetails
	updated.ImageURL = sauce.ImageURL
	updated.ImageKey = sauce.ImageKey
	updated.UpdatedAt = repo.store.now()
	repo.store.sauces[sauce.ID] = updated
	sauce.UpdatedAt = updated.UpdatedAt

	repo.journal.record(func() { repo.store.sauces[prev.ID] = prev })

	return nil
}

func (repo *sauceRepository) Delete(_ context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	prev, ok := repo.store.sauces[id]
	if !ok {
		return repository.ErrSauceNotFound
	}
	delete(repo.store.sauces, id)
	repo.journal.record(func() { repo.store.sauces[id] = prev })

	return nil
}

// SaveVote copies userID's membership from sauce into the stored record and
// recomputes its counters.
func (repo *sauceRepository) SaveVote(_ context.Context, sauce *entity.Sauce, userID uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	current, ok := repo.store.sauces[sauce.ID]
	if !ok {
		return repository.ErrSauceNotFound
	}
	prev := current.Clone()

	updated := current.Clone()
	updated.ApplyVote(userID, sauce.VoteOf(userID))
	updated.UpdatedAt = repo.store.now()
	repo.store.sauces[sauce.ID] = updated

	sauce.Likes, sauce.Dislikes = updated.Likes, updated.Dislikes
	sauce.UpdatedAt = updated.UpdatedAt

	repo.journal.record(func() { repo.store.sauces[prev.ID] = prev })

	return nil
}
