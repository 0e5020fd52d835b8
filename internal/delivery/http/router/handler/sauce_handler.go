package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"piquante/config"
	deliverycontext "piquante/internal/delivery/context"
	"piquante/internal/delivery/http/response"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/usecase"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const defaultMaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SauceHandler serves the sauce catalogue and votes.
type SauceHandler struct {
	sauces       usecase.SauceUsecase
	votes        usecase.VoteUsecase
	maxImageSize int64
	logger       *slog.Logger
}

// NewSauceHandler is the constructor for SauceHandler, injected by Fx.
func NewSauceHandler(sauces usecase.SauceUsecase, votes usecase.VoteUsecase, cfg *config.Config, logger *slog.Logger) *SauceHandler {
	maxImageSize := int64(defaultMaxImageSize)
	if cfg.Images != nil && cfg.Images.MaxSize > 0 {
		maxImageSize = cfg.Images.MaxSize
	}

	return &SauceHandler{
		sauces:       sauces,
		votes:        votes,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// List returns every sauce.
func (h *SauceHandler) List(c echo.Context) error {
	sauces, err := h.sauces.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*SauceResponse, 0, len(sauces))
	for _, s := range sauces {
		out = append(out, toSauceResponse(s))
	}

	return response.Success(c, http.StatusOK, out, "")
}

// Get returns a single sauce.
func (h *SauceHandler) Get(c echo.Context) error {
	id, err := sauceIDParam(c)
	if err != nil {
		return err
	}

	sauce, err := h.sauces.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSauceResponse(sauce), "")
}

// Create publishes a sauce from a multipart form holding a "sauce" JSON field and an "image" file.
func (h *SauceHandler) Create(c echo.Context) error {
	userID, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	input, err := h.bindSauceForm(c, userID)
	if err != nil {
		return err
	}
	image, closeImage, err := h.openImage(c, true)
	if err != nil {
		return err
	}
	defer closeImage()

	sauce, err := h.sauces.Create(c.Request().Context(), &usecase.CreateSauceInput{
		OwnerID: userID,
		Sauce:   *input,
		Image:   image,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, toSauceResponse(sauce), "Sauce saved")
}

// Update replaces a sauce's fields. A multipart body may also carry a new image;
// a JSON body updates the fields only.
func (h *SauceHandler) Update(c echo.Context) error {
	userID, err := authenticatedUser(c)
	if err != nil {
		return err
	}
	id, err := sauceIDParam(c)
	if err != nil {
		return err
	}

	var (
		input *usecase.SauceInput
		image *usecase.ImageUpload
	)
	if isMultipart(c) {
		if input, err = h.bindSauceForm(c, userID); err != nil {
			return err
		}
		var closeImage func()
		if image, closeImage, err = h.openImage(c, false); err != nil {
			return err
		}
		defer closeImage()
	} else {
		input = &usecase.SauceInput{}
		if err := c.Bind(input); err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("invalid sauce input")
		}
		if err := validateSauceInput(c, input, userID); err != nil {
			return err
		}
	}

	sauce, err := h.sauces.Update(c.Request().Context(), &usecase.UpdateSauceInput{
		SauceID: id,
		UserID:  userID,
		Sauce:   *input,
		Image:   image,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSauceResponse(sauce), "Sauce updated")
}

// Delete removes a sauce owned by the caller.
func (h *SauceHandler) Delete(c echo.Context) error {
	userID, err := authenticatedUser(c)
	if err != nil {
		return err
	}
	id, err := sauceIDParam(c)
	if err != nil {
		return err
	}

	if err := h.sauces.Delete(c.Request().Context(), &usecase.DeleteSauceInput{SauceID: id, UserID: userID}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Sauce deleted")
}

// Like applies a like (1), dislike (-1) or clear (0) from the caller.
func (h *SauceHandler) Like(c echo.Context) error {
	userID, err := authenticatedUser(c)
	if err != nil {
		return err
	}
	id, err := sauceIDParam(c)
	if err != nil {
		return err
	}

	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrInvalidVoteValue.WithDetails("like must be an integer")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := checkBodyUser(req.UserID, userID); err != nil {
		return err
	}

	sauce, err := h.votes.ApplyVote(c.Request().Context(), &usecase.VoteInput{
		SauceID: id,
		UserID:  userID,
		Like:    *req.Like,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSauceResponse(sauce), "Vote recorded")
}

func (h *SauceHandler) bindSauceForm(c echo.Context, userID uuid.UUID) (*usecase.SauceInput, error) {
	raw := c.FormValue("sauce")
	if raw == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("sauce field is required")
	}

	var input usecase.SauceInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("sauce field must be a JSON object")
	}
	if err := validateSauceInput(c, &input, userID); err != nil {
		return nil, err
	}

	return &input, nil
}

// openImage returns the uploaded "image" file. When required is false a missing
// file yields a nil upload.
func (h *SauceHandler) openImage(c echo.Context, required bool) (*usecase.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile("image")
	if err != nil {
		if !required && errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}

		return nil, noop, domainerrors.ErrValidationFailed.WithDetails("image file is required")
	}
	if fh.Size > h.maxImageSize {
		return nil, noop, domainerrors.ErrValidationFailed.WithDetails("image is too large")
	}

	file, err := fh.Open()
	if err != nil {
		return nil, noop, errors.Wrap(err, "open uploaded image")
	}
	closeFn := func() {
		if err := file.Close(); err != nil {
			h.logger.Warn("Failed to close uploaded image", slog.Any("error", err))
		}
	}

	// The declared part Content-Type is ignored; the stored type comes from the bytes.
	contentType, err := sniffImageType(file)
	if err != nil {
		closeFn()

		return nil, noop, err
	}

	return &usecase.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        file,
	}, closeFn, nil
}

func validateSauceInput(c echo.Context, input *usecase.SauceInput, userID uuid.UUID) error {
	if err := c.Validate(input); err != nil {
		return err
	}

	return checkBodyUser(input.UserID, userID)
}

// checkBodyUser rejects a body that names a different user than the token.
func checkBodyUser(bodyUserID string, userID uuid.UUID) error {
	if bodyUserID == "" {
		return nil
	}
	if id, err := uuid.Parse(bodyUserID); err != nil || id != userID {
		return domainerrors.ErrForbidden.WithDetails("userId does not match the authenticated user")
	}

	return nil
}

func authenticatedUser(c echo.Context) (uuid.UUID, error) {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return uuid.Nil, domainerrors.ErrTokenInvalid
	}

	return userID, nil
}

func sauceIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrSauceNotFound
	}

	return id, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// sniffImageType detects the type from the file's leading bytes and rewinds it.
func sniffImageType(file multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", errors.Wrap(err, "read uploaded image")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind uploaded image")
	}

	contentType, _, _ := strings.Cut(mtype.String(), ";")
	if !allowedImageTypes[contentType] {
		return "", domainerrors.ErrValidationFailed.WithDetails("image must be a JPEG, PNG or WebP file")
	}

	return contentType, nil
}
