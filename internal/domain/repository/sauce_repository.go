package repository

import (
	"context"
	"errors"

	"piquante/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSauceNotFound is returned when a sauce ID does not resolve to a record.
var ErrSauceNotFound = errors.New("sauce not found")

// SauceRepository defines the sauce store.
type SauceRepository interface {
	// List returns every sauce, newest first.
	List(ctx context.Context) ([]*entity.Sauce, error)

	// FindByID retrieves a sauce with its vote sets.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Sauce, error)

	// FindByIDForUpdate retrieves a sauce and holds its write lock until the
	// surrounding transaction ends. It must be called through TransactionManager.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Sauce, error)

	// Create persists a new sauce and assigns its ID.
	Create(ctx context.Context, sauce *entity.Sauce) error

	// UpdateDetails replaces the descriptive fields and image of a sauce.
	// Owner and vote fields are left untouched.
	UpdateDetails(ctx context.Context, sauce *entity.Sauce) error

	// Delete removes a sauce and its votes.
	Delete(ctx context.Context, id uuid.UUID) error

	// SaveVote persists userID's membership as held by sauce, together with
	// counters derived from the set sizes.
	SaveVote(ctx context.Context, sauce *entity.Sauce, userID uuid.UUID) error
}
