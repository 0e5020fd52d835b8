package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	domainerrors "piquante/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ImageOpener reads stored images.
type ImageOpener interface {
	Open(ctx context.Context, key string) (*blob.Reader, error)
}

// ImageHandler streams stored sauce images.
type ImageHandler struct {
	images ImageOpener
}

// NewImageHandler is the constructor for ImageHandler, injected by Fx.
func NewImageHandler(images ImageOpener) *ImageHandler {
	return &ImageHandler{images: images}
}

// Serve writes the image named by the :key path parameter.
func (h *ImageHandler) Serve(c echo.Context) error {
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.HasPrefix(key, ".") {
		return echo.ErrNotFound
	}

	r, err := h.images.Open(c.Request().Context(), key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return echo.ErrNotFound
		}

		return domainerrors.ErrImageStorageFailed.WrapMessage(err.Error())
	}
	defer r.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400, immutable")

	return c.Stream(http.StatusOK, r.ContentType(), io.Reader(r))
}
