package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"filevault/internal/auth"
	"filevault/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Upload stores the raw request body under the filename path param.
func (h *Handler) Upload(c echo.Context) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	// The router has already unescaped the path param.
	filename := c.Param("filename")

	if _, err := h.svc.Upload(c.Request().Context(), identity, filename, c.Request().Body); err != nil {
		return mapServiceError(err, msgFileFailed)
	}
	return status(c, http.StatusOK, msgFileSaved)
}

// Download streams a file of the caller as an attachment.
func (h *Handler) Download(c echo.Context) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	filename := c.Param("filename")

	d, err := h.svc.Download(c.Request().Context(), identity, filename)
	if err != nil {
		return mapServiceError(err, msgInternal)
	}
	defer d.Body.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", d.Filename))
	header.Set(echo.HeaderContentLength, strconv.FormatInt(d.Size, 10))
	if err := c.Stream(http.StatusOK, echo.MIMEOctetStream, d.Body); err != nil {
		h.logger.Warn("download stream interrupted",
			zap.String("username", identity.Username),
			zap.String("filename", filename),
			zap.Error(err))
		return err
	}
	return nil
}

// ListFiles returns the caller's stored filenames.
func (h *Handler) ListFiles(c echo.Context) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	files, err := h.svc.ListFiles(c.Request().Context(), identity)
	if err != nil {
		return mapServiceError(err, msgInternal)
	}
	if files == nil {
		files = []service.FileEntry{}
	}
	return c.JSON(http.StatusOK, map[string]any{"files": files})
}
