package auth

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"piquante/config"
	domainerrors "piquante/internal/domain/errors"
)

func testHasherConfig(minLength int) *config.Config {
	return &config.Config{
		Auth:           &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordPolicy: &config.PasswordPolicyConfig{MinLength: minLength, MaxLength: 72},
	}
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher(testHasherConfig(8))

	password := "hunter2hunter2"
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	hasher := NewBcryptHasher(testHasherConfig(0))

	first, err := hasher.Hash("p1")
	require.NoError(t, err)
	second, err := hasher.Hash("p1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("p1", first))
	assert.True(t, hasher.Check("p1", second))
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := NewBcryptHasher(testHasherConfig(0))
	password := "StrongPass123!"

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPassword123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher(testHasherConfig(8))

	testCases := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "too short", password: "1234567", wantErr: "at least 8 characters"},
		{name: "empty", password: "", wantErr: "at least 8 characters"},
		{name: "too long", password: strings.Repeat("a", 73), wantErr: "at most 72 bytes"},
		{name: "multibyte counted by rune", password: "ääääääää"},
		{name: "lower bound", password: "12345678"},
		{name: "upper bound", password: strings.Repeat("a", 72)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := hasher.ValidatePasswordStrength(tc.password)
			if tc.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Details(), tc.wantErr)
		})
	}
}

func TestBcryptHasher_HashRejectsPolicyViolation(t *testing.T) {
	hasher := NewBcryptHasher(testHasherConfig(8))

	_, err := hasher.Hash("short")
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy))
}

func TestBcryptHasher_WithCustomCost(t *testing.T) {
	customCost := 6 // Lower cost for faster testing
	hasher := NewBcryptHasherWithCost(customCost)

	password := "StrongPass123!"
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	// Verify the hash uses the correct cost
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, customCost, cost)
	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_DefaultsWithoutAuthConfig(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{})

	hash, err := hasher.Hash("x")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
