package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"piquante/config"
	"piquante/internal/domain/service"
	"piquante/internal/infra/auth"
	"piquante/internal/infra/persistence/memory"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey: config.SecretKeyConfig{
			Access: "test_access_secret_key_very_long_for_testing",
			Email:  "test_email_secret_key_very_long_for_testing",
		},
		Auth:           &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordPolicy: &config.PasswordPolicyConfig{MinLength: 0, MaxLength: 72},
	}
}

type credentialFixtures struct {
	store  *memory.Store
	hasher service.PasswordHasher
	tokens service.TokenService
	emails service.EmailPseudonymizer
}

func newCredentialFixtures(t *testing.T) credentialFixtures {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	emails, err := auth.NewHMACPseudonymizer(cfg)
	require.NoError(t, err)

	return credentialFixtures{
		store:  memory.NewStore(),
		hasher: auth.NewBcryptHasher(cfg),
		tokens: tokens,
		emails: emails,
	}
}

// mockImageStore is a testify mock of service.ImageStore.
type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, r)

	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockImageStore) URL(key string) string {
	return "/images/" + key
}
