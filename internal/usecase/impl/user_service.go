// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "piquante/internal/delivery/context"
	"piquante/internal/domain/entity"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/repository"
	"piquante/internal/domain/service"
	"piquante/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	emails       service.EmailPseudonymizer
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Emails       service.EmailPseudonymizer
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		emails:       params.Emails,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup stores a new account keyed by the email digest. The plaintext email is
// neither stored nor logged.
func (srv *userService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPasswordPolicy) {
			return nil, errors.WithStack(err)
		}
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, domainerrors.ErrHashingFailed.WrapMessage(err.Error())
	}

	user := &entity.User{
		EmailDigest:  srv.emails.Digest(input.Email),
		PasswordHash: hash,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateAccount) {
			srv.log(ctx).Info("Signup rejected for existing account")

			return nil, errors.WithStack(err)
		}

		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	srv.log(ctx).Info("Account created", slog.String("userID", user.ID.String()))

	return &usecase.SignupOutput{UserID: user.ID}, nil
}

// Login verifies the credentials and issues a session token. An unknown account
// and a wrong password produce the same error after the same amount of bcrypt work.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindByEmailDigest(ctx, srv.emails.Digest(input.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user during login")
		}
		srv.hasher.Check(input.Password, srv.dummyPasswordHash(ctx))
		srv.log(ctx).Info("Login failed")

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login failed", slog.String("userID", user.ID.String()))

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	token, expiresAt, err := srv.tokenService.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session token")
	}

	srv.log(ctx).Info("Login succeeded", slog.String("userID", user.ID.String()))

	return &usecase.LoginOutput{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// dummyPasswordHash is compared against when no account matches, so the
// unknown-account path spends the same bcrypt time as a real mismatch.
func (srv *userService) dummyPasswordHash(ctx context.Context) string {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(uuid.NewString())
		if err != nil {
			srv.log(ctx).Warn("Failed to prepare dummy password hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}
