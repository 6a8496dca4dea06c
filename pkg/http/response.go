package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorResponse writes an error envelope with the given status code.
func errorResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// BadRequestResponse writes a 400 with validation details.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return errorResponse(c, http.StatusBadRequest, data)
}

// InternalServerErrorResponse writes a generic 500.
func InternalServerErrorResponse(c echo.Context) error {
	return errorResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse maps an AppError to its HTTP status, or falls back to 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return errorResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
