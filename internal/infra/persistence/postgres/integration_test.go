package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"piquante/internal/domain/entity"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/repository"
)

// openIntegrationDB connects to POSTGRES_TEST_DSN when RUN_POSTGRES_INTEGRATION=1.
func openIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "1" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=1 and POSTGRES_TEST_DSN to run Postgres integration tests")
	}
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	require.NotEmpty(t, dsn, "POSTGRES_TEST_DSN is required")

	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RunMigrations(context.Background(), sqlDB))
	require.NoError(t, db.Exec("TRUNCATE sauce_votes, sauces, users CASCADE").Error)

	return db
}

func createIntegrationUser(t *testing.T, repo repository.UserRepository) *entity.User {
	t.Helper()

	user := &entity.User{EmailDigest: uuid.NewString(), PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	return user
}

func TestIntegration_UserRepository(t *testing.T) {
	db := openIntegrationDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &entity.User{EmailDigest: "digest-a", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.FindByEmailDigest(ctx, "digest-a")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &entity.User{EmailDigest: "digest-a", PasswordHash: "other"})
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAccount))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestIntegration_ConcurrentVotesKeepCounters(t *testing.T) {
	db := openIntegrationDB(t)
	users := NewUserRepository(db)
	txManager := NewTransactionManager(db)
	ctx := context.Background()

	owner := createIntegrationUser(t, users)
	sauce := entity.NewSauce(owner.ID, entity.SauceDetails{
		Name: "Sriracha", Manufacturer: "Huy Fong", Description: "garlic", MainPepper: "red jalapeno", Heat: 5,
	})
	require.NoError(t, NewSauceRepository(db).Create(ctx, sauce))

	voters := make([]*entity.User, 8)
	for i := range voters {
		voters[i] = createIntegrationUser(t, users)
	}

	var wg sync.WaitGroup
	for i, voter := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote := entity.VoteLike
			if i%2 == 1 {
				vote = entity.VoteDislike
			}
			err := txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
				locked, err := f.SauceRepo().FindByIDForUpdate(ctx, sauce.ID)
				if err != nil {
					return err
				}
				locked.ApplyVote(voter.ID, vote)

				return f.SauceRepo().SaveVote(ctx, locked, voter.ID)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := NewSauceRepository(db).FindByID(ctx, sauce.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Likes)
	assert.Equal(t, 4, got.Dislikes)

	var stored struct{ Likes, Dislikes int }
	require.NoError(t, db.Raw("SELECT likes, dislikes FROM sauces WHERE id = ?", sauce.ID).Scan(&stored).Error)
	assert.Equal(t, 4, stored.Likes)
	assert.Equal(t, 4, stored.Dislikes)
}

func TestIntegration_DeleteCascadesVotes(t *testing.T) {
	db := openIntegrationDB(t)
	users := NewUserRepository(db)
	sauces := NewSauceRepository(db)
	ctx := context.Background()

	owner := createIntegrationUser(t, users)
	sauce := entity.NewSauce(owner.ID, entity.SauceDetails{Name: "n", Manufacturer: "m", Description: "d", MainPepper: "p", Heat: 3})
	require.NoError(t, sauces.Create(ctx, sauce))

	sauce.ApplyVote(owner.ID, entity.VoteLike)
	require.NoError(t, sauces.SaveVote(ctx, sauce, owner.ID))

	require.NoError(t, sauces.Delete(ctx, sauce.ID))
	assert.ErrorIs(t, sauces.Delete(ctx, sauce.ID), repository.ErrSauceNotFound)

	var count int64
	require.NoError(t, db.Table("sauce_votes").Where("sauce_id = ?", sauce.ID).Count(&count).Error)
	assert.Zero(t, count)
}
