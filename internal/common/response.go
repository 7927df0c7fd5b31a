package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const GenericErrorMessage = "Internal server error"

// SuccessResponse is the envelope of every successful API call.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func SendSuccess(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

func SendError(c echo.Context, status int, message, detail string) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: message, Error: detail})
}

// SendServerError sends a 500. The cause is only written to the body when
// expose is set; otherwise clients see GenericErrorMessage.
func SendServerError(c echo.Context, message string, err error, expose bool) error {
	detail := GenericErrorMessage
	if expose && err != nil {
		detail = err.Error()
	}
	return SendError(c, http.StatusInternalServerError, message, detail)
}

func SendValidationError(c echo.Context, detail string) error {
	return SendError(c, http.StatusBadRequest, "Validation failed", detail)
}

func SendNotFoundError(c echo.Context, resource string) error {
	return SendError(c, http.StatusNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("%s not found", strings.ToLower(resource)))
}

// ParseID reads a positive integer path parameter.
func ParseID(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// ValidatePaginationParams applies the default limit and rejects values
// outside the accepted range.
func ValidatePaginationParams(limit, offset, defaultLimit, maxLimit int) (int, int, error) {
	if limit < 0 {
		return 0, 0, fmt.Errorf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if offset < 0 {
		return 0, 0, fmt.Errorf("offset must not be negative")
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}
	return limit, offset, nil
}
