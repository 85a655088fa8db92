package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"filevault/internal/auth"

	"github.com/labstack/echo/v4"
)

// SetConfig updates the upload size limit. Admin only.
func (h *Handler) SetConfig(c echo.Context) error {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	// An unparsable value becomes 0 so the admin check still runs first.
	size, err := strconv.ParseInt(strings.TrimSpace(c.QueryParam("max_file_size")), 10, 64)
	if err != nil {
		size = 0
	}
	if err := h.svc.SetMaxFileSize(c.Request().Context(), identity, size); err != nil {
		return mapServiceError(err, msgInternal)
	}
	return status(c, http.StatusOK, msgConfigSet)
}
