package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/logging"
)

const maxPhotoBytes = 5 << 20

var photoExtensions = []string{"png", "jpg", "jpeg", "gif"}

func photoAllowed(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return slices.Contains(photoExtensions, ext)
}

type ProfileBackend interface {
	Profile(ctx context.Context) (backend.Profile, error)
	UpdateProfile(ctx context.Context, u backend.ProfileUpdate) (backend.Profile, error)
}

type ProfileHTTP struct {
	Backend ProfileBackend
}

func (h *ProfileHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "profile.get"))

	p, err := h.Backend.Profile(ctx)
	if err != nil {
		return fail(c, l, "get_profile", err)
	}
	return ok(c, http.StatusOK, p)
}

// Update accepts a form, optionally multipart with a "photo" file.
func (h *ProfileHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "profile.update"))

	u := backend.ProfileUpdate{
		FullName: c.FormValue("full_name"),
		Email:    c.FormValue("email"),
		Phone:    c.FormValue("phone"),
	}

	fh, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return badBody(c, l, "update_profile", err)
	default:
		if !photoAllowed(fh.Filename) {
			return fail(c, l, "update_profile",
				domain.FormatError("photo", "Formato no permitido. Use: "+strings.Join(photoExtensions, ", ")))
		}
		if fh.Size > maxPhotoBytes {
			return fail(c, l, "update_profile", domain.FormatError("photo", "La imagen no puede superar 5 MB"))
		}
		f, err := fh.Open()
		if err != nil {
			return badBody(c, l, "update_profile", err)
		}
		defer f.Close()
		if u.Photo, err = io.ReadAll(io.LimitReader(f, maxPhotoBytes+1)); err != nil {
			return badBody(c, l, "update_profile", err)
		}
		if len(u.Photo) > maxPhotoBytes {
			return fail(c, l, "update_profile", domain.FormatError("photo", "La imagen no puede superar 5 MB"))
		}
		u.PhotoName = fh.Filename
	}

	p, err := h.Backend.UpdateProfile(ctx, u)
	if err != nil {
		return fail(c, l, "update_profile", err)
	}
	l.Info("update_profile_success", zap.Bool("photo", u.Photo != nil))
	return ok(c, http.StatusOK, p)
}
