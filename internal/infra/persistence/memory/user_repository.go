package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"piquante/internal/domain/entity"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/repository"
)

type userRepository struct {
	store   *Store
	journal *journal
}

// NewUserRepository returns a user repository outside any transaction.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	user, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *user

	return &out, nil
}

func (repo *userRepository) FindByEmailDigest(_ context.Context, digest string) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	id, ok := repo.store.digests[digest]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *repo.store.users[id]

	return &out, nil
}

// Create checks and claims the digest under a single write lock.
func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, taken := repo.store.digests[user.EmailDigest]; taken {
		return domainerrors.ErrDuplicateAccount.WrapMessage("email digest already exists")
	}

	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate user id")
		}
		user.ID = id
	}
	user.CreatedAt = repo.store.now()

	stored := *user
	repo.store.users[stored.ID] = &stored
	repo.store.digests[stored.EmailDigest] = stored.ID
	repo.journal.record(func() {
		delete(repo.store.users, stored.ID)
		delete(repo.store.digests, stored.EmailDigest)
	})

	return nil
}
