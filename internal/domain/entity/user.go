// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account able to publish and vote on sauces.
// The plaintext email is never kept: only its keyed digest is stored and compared.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	EmailDigest  string    // base64 HMAC-SHA512 of the normalized email, unique across users.
	PasswordHash string    // bcrypt hash, salt embedded.
	CreatedAt    time.Time // Timestamp of when this account was created.
}
