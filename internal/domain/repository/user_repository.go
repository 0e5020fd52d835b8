// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"piquante/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the identity store.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmailDigest retrieves a user by the keyed digest of their email.
	FindByEmailDigest(ctx context.Context, digest string) (*entity.User, error)

	// Create persists a new user and assigns its ID. It fails with
	// domainerrors.ErrDuplicateAccount when the digest is already taken,
	// leaving the store untouched.
	Create(ctx context.Context, user *entity.User) error
}
