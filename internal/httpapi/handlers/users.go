package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Register creates an account from the username and password query params.
func (h *Handler) Register(c echo.Context) error {
	username := c.QueryParam("username")
	password := c.QueryParam("password")

	if err := h.svc.Register(c.Request().Context(), username, password); err != nil {
		return mapServiceError(err, msgUserFailed)
	}
	return status(c, http.StatusCreated, msgUserCreated)
}
