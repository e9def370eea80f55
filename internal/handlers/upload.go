package handlers

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const MaxImageSize = 10 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type UploadHTTP struct {
	Store ImageStore
}

// UploadImage stores the multipart "file" field and answers with the URLs
// to put on the item.
func (h *UploadHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload_image")

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "missing file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size <= 0 || fh.Size > MaxImageSize {
		l.Warn("upload_error", "status", 413, "reason", "bad size", "size", fh.Size)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image must be at most 10MB")
	}

	f, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "reason", "cannot open file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read file")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageTypes[contentType]
	if !ok {
		l.Warn("upload_error", "status", 415, "reason", "not an image", "content_type", contentType)
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "only jpeg, png, gif and webp images are accepted")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read file")
	}

	userID := session.FromContext(ctx).UserID
	key := path.Join("items", userID, uuid.NewString()+ext)
	url, err := h.Store.Put(ctx, key, f, fh.Size, contentType)
	if err != nil {
		l.Error("upload_error", "status", 502, "reason", "cannot store image", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot store image")
	}

	l.Info("upload_successful", "key", key, "size", fh.Size, "name", strings.TrimSpace(fh.Filename))
	return c.JSON(http.StatusCreated, echo.Map{
		"image":      url,
		"largeImage": url,
	})
}
