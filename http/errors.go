package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shijia/entity"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// mapServiceError translates domain errors to HTTP errors with a stable
// machine-readable code. Unknown errors pass through and surface as 500s.
func mapServiceError(err error, notFoundCode string) error {
	var validationErr entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{
			Error:  validationErr.Code,
			Detail: validationErr.Detail,
		})
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errorBody{Error: notFoundCode})
	case errors.Is(err, entity.ErrOrderNotPayable):
		return echo.NewHTTPError(http.StatusConflict, errorBody{Error: "order_not_payable"})
	case errors.Is(err, entity.ErrSessionMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "session_mismatch"})
	default:
		return err
	}
}

func badRequest(code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: code})
}
