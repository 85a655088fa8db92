package handlers

import (
	"errors"
	"net/http"

	"filevault/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	msgMissingFields   = "Username and Password information not passed for new user."
	msgDuplicateUser   = "Existing user. Please select other username."
	msgUserCreated     = "New user created successfully"
	msgUserFailed      = "Error occurred during user creation"
	msgConfigSet       = "New maximum file size limit set"
	msgConfigForbidden = "You are not authorized to set configs."
	msgFileSaved       = "File saved successfully"
	msgFileFailed      = "Error occurred while saving file"
	msgFileTooLarge    = "File exceeded allowed size limit"
	msgAccessDenied    = "File does not exist or you are not authorized to access this file."
	msgInternal        = "Internal server error"
)

type statusBody struct {
	Status string `json:"status"`
}

func status(c echo.Context, code int, msg string) error {
	return c.JSON(code, statusBody{Status: msg})
}

// mapServiceError translates service errors into fixed statuses and messages.
// storageMsg is the operation specific message for ErrStorageFailure.
func mapServiceError(err error, storageMsg string) error {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, msgAccessDenied)
	case errors.Is(err, service.ErrMissingFields):
		return echo.NewHTTPError(http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, service.ErrDuplicateUser):
		return echo.NewHTTPError(http.StatusBadRequest, msgDuplicateUser)
	case errors.Is(err, service.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, msgFileTooLarge)
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msgConfigForbidden)
	case errors.Is(err, service.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		return echo.NewHTTPError(http.StatusInternalServerError, storageMsg).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
}

// ErrorHandler renders every error as {"status": message}. Internal
// details never reach the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = status(c, code, msg)
}
