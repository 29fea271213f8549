package models

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors.
//
// Status mapping policy: 400 is reserved for malformed or invalid input,
// 404 for resources that do not exist, 401 for failed authentication or
// ownership checks, 500 for everything unexpected.

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// logger receives the causes of wrapped errors. The middleware package
// replaces it at startup with the context-aware application logger; models
// cannot import middleware directly without a cycle.
var logger = slog.Default()

// SetLogger replaces the logger used for server-side error causes.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// RespondWithError writes a standardized error response. Wrapped causes are
// logged server-side only; clients never see internal error text.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			logger.ErrorContext(c.UserContext(), "request error",
				slog.Int("status", status),
				slog.String("code", appErr.Code),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("error", appErr.Err.Error()),
			)
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
