package impl

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/infra/auth"
	"piquante/internal/infra/persistence/memory"
	"piquante/internal/usecase"
)

func createTestUserService(t *testing.T) (usecase.UserUsecase, credentialFixtures) {
	t.Helper()

	fx := newCredentialFixtures(t)
	srv := NewUserService(UserServiceParams{
		UserRepo:     memory.NewUserRepository(fx.store),
		Hasher:       fx.hasher,
		TokenService: fx.tokens,
		Emails:       fx.emails,
		Logger:       newDiscardLogger(),
	})

	return srv, fx
}

func TestUserService_SignupLoginRoundTrip(t *testing.T) {
	srv, fx := createTestUserService(t)
	ctx := context.Background()

	signup, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, signup.UserID)

	login, err := srv.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, login.UserID)

	claims, err := fx.tokens.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.UserID.String(), claims.UserID)
}

func TestUserService_SignupStoresDigestNotEmail(t *testing.T) {
	srv, fx := createTestUserService(t)
	ctx := context.Background()

	out, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	user, err := memory.NewUserRepository(fx.store).FindByID(ctx, out.UserID)
	require.NoError(t, err)
	assert.Equal(t, fx.emails.Digest("a@x.com"), user.EmailDigest)
	assert.NotContains(t, user.EmailDigest, "a@x.com")
	assert.NotEqual(t, "p1", user.PasswordHash)
	assert.True(t, fx.hasher.Check("p1", user.PasswordHash))
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	srv, _ := createTestUserService(t)
	ctx := context.Background()

	_, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	out, err := srv.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p2"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestUserService_LoginUnknownAccountSameError(t *testing.T) {
	srv, _ := createTestUserService(t)
	ctx := context.Background()

	_, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, wrongPassword := srv.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p2"})
	_, unknown := srv.Login(ctx, &usecase.LoginInput{Email: "nobody@x.io", Password: "p1"})

	var a, b domainerrors.AppError
	require.True(t, errors.As(wrongPassword, &a))
	require.True(t, errors.As(unknown, &b))
	assert.Equal(t, a.HTTPCode(), b.HTTPCode())
	assert.Equal(t, a.ErrorCode(), b.ErrorCode())
	assert.Equal(t, a.Message(), b.Message())
}

func TestUserService_LoginNormalizesEmail(t *testing.T) {
	srv, _ := createTestUserService(t)
	ctx := context.Background()

	_, err := srv.Signup(ctx, &usecase.SignupInput{Email: "A@X.io", Password: "p1"})
	require.NoError(t, err)

	_, err = srv.Login(ctx, &usecase.LoginInput{Email: " a@x.com", Password: "p1"})
	assert.NoError(t, err)
}

func TestUserService_DuplicateSignup(t *testing.T) {
	srv, fx := createTestUserService(t)
	ctx := context.Background()

	_, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	out, err := srv.Signup(ctx, &usecase.SignupInput{Email: "a@x.com", Password: "other"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAccount))

	// The original credentials still work.
	_, err = srv.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "p1"})
	assert.NoError(t, err)
	_, err = srv.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "other"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	stored, err := memory.NewUserRepository(fx.store).FindByEmailDigest(ctx, fx.emails.Digest("a@x.com"))
	require.NoError(t, err)
	assert.True(t, fx.hasher.Check("p1", stored.PasswordHash))
}

func TestUserService_ConcurrentDuplicateSignup(t *testing.T) {
	srv, _ := createTestUserService(t)
	ctx := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := srv.Signup(ctx, &usecase.SignupInput{Email: "race@x.io", Password: "p1"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domainerrors.ErrDuplicateAccount) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, duplicates)
}

func TestUserService_SignupPasswordPolicy(t *testing.T) {
	fx := newCredentialFixtures(t)
	cfg := newTestConfig()
	cfg.PasswordPolicy.MinLength = 8

	srv := NewUserService(UserServiceParams{
		UserRepo:     memory.NewUserRepository(fx.store),
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: fx.tokens,
		Emails:       fx.emails,
		Logger:       newDiscardLogger(),
	})

	_, err := srv.Signup(context.Background(), &usecase.SignupInput{Email: "a@x.com", Password: "short"})
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy))
}
