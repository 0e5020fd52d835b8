package impl

import (
	"context"
	"log/slog"

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

type sauceService struct {
	txManager repository.TransactionManager
	sauceRepo repository.SauceRepository
	images    service.ImageStore
	logger    *slog.Logger
}

// SauceServiceParams holds dependencies for SauceService, injected by Fx.
type SauceServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	SauceRepo repository.SauceRepository
	Images    service.ImageStore
	Logger    *slog.Logger
}

// NewSauceService is the constructor for sauceService.
func NewSauceService(params SauceServiceParams) usecase.SauceUsecase {
	return &sauceService{
		txManager: params.TxManager,
		sauceRepo: params.SauceRepo,
		images:    params.Images,
		logger:    params.Logger,
	}
}

func (srv *sauceService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *sauceService) List(ctx context.Context) ([]*entity.Sauce, error) {
	sauces, err := srv.sauceRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sauces")
	}

	return sauces, nil
}

func (srv *sauceService) Get(ctx context.Context, id uuid.UUID) (*entity.Sauce, error) {
	sauce, err := srv.sauceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapSauceError(err, "failed to get sauce")
	}

	return sauce, nil
}

// Create stores the image first, then the record. A failed insert removes the image again.
func (srv *sauceService) Create(ctx context.Context, input *usecase.CreateSauceInput) (*entity.Sauce, error) {
	if input.Image == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("image is required")
	}

	key, err := srv.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	sauce := entity.NewSauce(input.OwnerID, input.Sauce.Details())
	sauce.ImageKey = key
	sauce.ImageURL = srv.images.URL(key)

	if err := srv.sauceRepo.Create(ctx, sauce); err != nil {
		srv.discardImage(ctx, key)

		return nil, errors.Wrap(err, "failed to create sauce")
	}

	srv.log(ctx).Info("Sauce created",
		slog.String("sauceID", sauce.ID.String()),
		slog.String("ownerID", sauce.OwnerID.String()),
	)

	return sauce, nil
}

// Update replaces the descriptive fields, and the image when one is supplied.
// The previous image is removed only after the record points at the new one.
func (srv *sauceService) Update(ctx context.Context, input *usecase.UpdateSauceInput) (*entity.Sauce, error) {
	// Check ownership before accepting an upload.
	current, err := srv.sauceRepo.FindByID(ctx, input.SauceID)
	if err != nil {
		return nil, mapSauceError(err, "failed to load sauce for update")
	}
	if !current.IsOwnedBy(input.UserID) {
		return nil, errors.WithStack(domainerrors.ErrForbidden)
	}

	var newKey string
	if input.Image != nil {
		if newKey, err = srv.saveImage(ctx, input.Image); err != nil {
			return nil, err
		}
	}

	var (
		updated *entity.Sauce
		oldKey  string
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sauceRepo := repoFactory.SauceRepo()

		sauce, err := sauceRepo.FindByIDForUpdate(ctx, input.SauceID)
		if err != nil {
			return err
		}
		if !sauce.IsOwnedBy(input.UserID) {
			return errors.WithStack(domainerrors.ErrForbidden)
		}

		sauce.SauceDetails = input.Sauce.Details()
		if newKey != "" {
			oldKey = sauce.ImageKey
			sauce.ImageKey = newKey
			sauce.ImageURL = srv.images.URL(newKey)
		}
		if err := sauceRepo.UpdateDetails(ctx, sauce); err != nil {
			return err
		}
		updated = sauce

		return nil
	})
	if err != nil {
		if newKey != "" {
			srv.discardImage(ctx, newKey)
		}

		return nil, mapSauceError(err, "failed to execute sauce update transaction")
	}

	if oldKey != "" {
		srv.discardImage(ctx, oldKey)
	}

	srv.log(ctx).Info("Sauce updated", slog.String("sauceID", updated.ID.String()))

	return updated, nil
}

// Delete removes the record, then its image. A leftover image is logged, not returned.
func (srv *sauceService) Delete(ctx context.Context, input *usecase.DeleteSauceInput) error {
	var imageKey string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sauceRepo := repoFactory.SauceRepo()

		sauce, err := sauceRepo.FindByIDForUpdate(ctx, input.SauceID)
		if err != nil {
			return err
		}
		if !sauce.IsOwnedBy(input.UserID) {
			return errors.WithStack(domainerrors.ErrForbidden)
		}
		if err := sauceRepo.Delete(ctx, sauce.ID); err != nil {
			return err
		}
		imageKey = sauce.ImageKey

		return nil
	})
	if err != nil {
		return mapSauceError(err, "failed to execute sauce delete transaction")
	}

	srv.discardImage(ctx, imageKey)
	srv.log(ctx).Info("Sauce deleted", slog.String("sauceID", input.SauceID.String()))

	return nil
}

func (srv *sauceService) saveImage(ctx context.Context, image *usecase.ImageUpload) (string, error) {
	key, err := srv.images.Save(ctx, image.Filename, image.ContentType, image.Body)
	if err != nil {
		srv.log(ctx).Error("Failed to store sauce image", slog.Any("error", err))

		return "", domainerrors.ErrImageStorageFailed.WrapMessage(err.Error())
	}

	return key, nil
}

// discardImage deletes an image that is no longer referenced. It outlives
// request cancellation so a client disconnect does not leak the object.
func (srv *sauceService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := srv.images.Delete(context.WithoutCancel(ctx), key); err != nil {
		srv.log(ctx).Warn("Failed to delete sauce image", slog.String("key", key), slog.Any("error", err))
	}
}

func mapSauceError(err error, message string) error {
	if errors.Is(err, repository.ErrSauceNotFound) {
		return errors.WithStack(domainerrors.ErrSauceNotFound)
	}
	if errors.Is(err, domainerrors.ErrForbidden) {
		return err
	}

	return errors.Wrap(err, message)
}
