package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	"piquante/internal/domain/entity"
)

// SauceInput carries the descriptive fields a client may set.
type SauceInput struct {
	UserID       string `json:"userId,omitempty" validate:"omitempty,uuid"`
	Name         string `json:"name" validate:"required,max=100"`
	Manufacturer string `json:"manufacturer" validate:"required,max=100"`
	Description  string `json:"description" validate:"required,max=2000"`
	MainPepper   string `json:"mainPepper" validate:"required,max=100"`
	Heat         int    `json:"heat" validate:"required,min=1,max=10"`
}

// Details converts the input into the entity's descriptive fields.
func (in *SauceInput) Details() entity.SauceDetails {
	return entity.SauceDetails{
		Name:         in.Name,
		Manufacturer: in.Manufacturer,
		Description:  in.Description,
		MainPepper:   in.MainPepper,
		Heat:         in.Heat,
	}
}

// ImageUpload is an image file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateSauceInput defines the data required to publish a sauce.
type CreateSauceInput struct {
	OwnerID uuid.UUID
	Sauce   SauceInput
	Image   *ImageUpload
}

// UpdateSauceInput replaces the descriptive fields and, when Image is set, the image.
type UpdateSauceInput struct {
	SauceID uuid.UUID
	UserID  uuid.UUID
	Sauce   SauceInput
	Image   *ImageUpload
}

// DeleteSauceInput identifies a sauce to remove and the user asking for it.
type DeleteSauceInput struct {
	SauceID uuid.UUID
	UserID  uuid.UUID
}

// SauceUsecase defines the sauce catalogue operations.
type SauceUsecase interface {
	List(ctx context.Context) ([]*entity.Sauce, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Sauce, error)
	Create(ctx context.Context, input *CreateSauceInput) (*entity.Sauce, error)
	Update(ctx context.Context, input *UpdateSauceInput) (*entity.Sauce, error)
	Delete(ctx context.Context, input *DeleteSauceInput) error
}
