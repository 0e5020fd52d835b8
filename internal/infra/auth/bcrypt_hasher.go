// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"piquante/config"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/service"
)

// bcryptMaxBytes is the longest input bcrypt consumes.
const bcryptMaxBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost      int
	minLength int
	maxLength int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	h := &bcryptHasher{cost: bcrypt.DefaultCost, maxLength: bcryptMaxBytes}
	if cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		h.cost = cfg.Auth.BcryptCost
	}
	if cfg.PasswordPolicy != nil {
		h.minLength = cfg.PasswordPolicy.MinLength
		if cfg.PasswordPolicy.MaxLength > 0 && cfg.PasswordPolicy.MaxLength < bcryptMaxBytes {
			h.maxLength = cfg.PasswordPolicy.MaxLength
		}
	}

	return h
}

// NewBcryptHasherWithCost creates a hasher with a custom cost and no minimum length.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost, maxLength: bcryptMaxBytes}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if err := h.ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrHashingFailed.WrapMessage(err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength enforces the configured length range. The upper bound is
// counted in bytes since bcrypt silently truncates past 72.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < h.minLength {
		return domainerrors.ErrPasswordPolicy.WithDetails(
			fmt.Sprintf("password must be at least %d characters long", h.minLength))
	}
	if len(password) > h.maxLength {
		return domainerrors.ErrPasswordPolicy.WithDetails(
			fmt.Sprintf("password must be at most %d bytes long", h.maxLength))
	}

	return nil
}
